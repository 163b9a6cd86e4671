package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsLetter(t *testing.T) {
	assert.True(t, ContainsLetter("abc"))
	assert.True(t, ContainsLetter("12 é"))
	assert.True(t, ContainsLetter("剑侠"))
	assert.False(t, ContainsLetter("42 %d ..."))
	assert.False(t, ContainsLetter(""))
}

func TestHash(t *testing.T) {
	assert.Equal(t, Hash("Hello"), Hash("Hello"))
	assert.NotEqual(t, Hash("Hello"), Hash("hello"))
	assert.Len(t, Hash(""), 64)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "Bonj...", Truncate("Bonjour", 4))
	assert.Equal(t, "été...", Truncate("étéhiver", 3))
}
