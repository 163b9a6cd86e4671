package interpolation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"no variables", nil},
		{"Level %d reached", []string{"%d"}},
		{"{0} killed {1}", []string{"{0}", "{1}"}},
		{"Hello ${name}, 100%% done in %.2f s", []string{"${name}", "%%", "%.2f"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Extract(tt.text), tt.text)
	}
}

func TestCompare(t *testing.T) {
	assert.True(t, Compare("{0} killed {1}", "{1} a tué {0}").Empty())

	m := Compare("Level %d of %d", "Niveau %d")
	assert.Equal(t, []string{"%d"}, m.Missing)
	assert.Empty(t, m.Extra)

	m = Compare("Score", "Score %s")
	assert.Empty(t, m.Missing)
	assert.Equal(t, []string{"%s"}, m.Extra)
}
