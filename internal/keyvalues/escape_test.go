package keyvalues

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, "plain"},
		{`say \"hi\"`, `say "hi"`},
		{`a\tb`, "a\tb"},
		{`line\nbreak`, "line\nbreak"},
		{`cr\r`, "cr\r"},
		// a doubled backslash is not an escape of its own
		{`back\\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Decode(tt.in), tt.in)
	}
}

func TestEncode(t *testing.T) {
	assert.Equal(t, `say \"hi\"\n\tnext\r`, Encode("say \"hi\"\n\tnext\r"))
}

func TestEscapeRoundTrip(t *testing.T) {
	values := []string{
		"",
		"Hello",
		"Multi\nline\ttext",
		`Quote "inside"`,
		"Windows\r\nending",
		"100% été",
	}
	for _, v := range values {
		assert.Equal(t, v, Decode(Encode(v)), v)
	}

	onDisk := []string{`a\"b`, `x\ny\tz\r`}
	for _, v := range onDisk {
		assert.Equal(t, v, Encode(Decode(v)), v)
	}
}
