package keyvalues

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect returns the events of a scan rendered as short strings.
func collect(t *testing.T, src string) ([]string, error) {
	t.Helper()
	var out []string
	err := Tokenize("test.txt", []rune(src), func(pos Position, ev Event) Directive {
		switch e := ev.(type) {
		case Text:
			out = append(out, "t:"+e.Content)
		case RecordBreak:
			out = append(out, "b")
		case SectionEnter:
			out = append(out, "s+")
		case SectionExit:
			out = append(out, "s-")
		case CharSeen:
		}
		return Resume
	})
	return out, err
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "single record",
			src:  "K1\t\t\"Hello\";",
			want: []string{"t:K1", "t:Hello", "b"},
		},
		{
			name: "two records in order",
			src:  "K1\t\t\"Hello\";\nK2\t\t\"World\";\n",
			want: []string{"t:K1", "t:Hello", "b", "t:K2", "t:World", "b"},
		},
		{
			name: "line comment",
			src:  "// K1 \"ignored\";\nK2 \"kept\";",
			want: []string{"t:K2", "t:kept", "b"},
		},
		{
			name: "block comment hides line comment",
			src:  "/* a // b \n c */K \"v\";",
			want: []string{"t:K", "t:v", "b"},
		},
		{
			name: "line comment hides block start",
			src:  "// /* not a block\nK \"v\";",
			want: []string{"t:K", "t:v", "b"},
		},
		{
			name: "escapes decoded",
			src:  `K "a\"b\tc\nd";`,
			want: []string{"t:K", "t:a\"b\tc\nd", "b"},
		},
		{
			name: "unquoted token closed by break",
			src:  "K;",
			want: []string{"t:K", "b"},
		},
		{
			name: "unquoted token closed by comment",
			src:  "K// tail\n\"v\";",
			want: []string{"t:K", "t:v", "b"},
		},
		{
			name: "sections",
			src:  "{ K \"v\"; }",
			want: []string{"s+", "t:K", "t:v", "b", "s-"},
		},
		{
			name: "empty quoted string",
			src:  `K "";`,
			want: []string{"t:K", "t:", "b"},
		},
		{
			name: "trailing bare token closed by EOF",
			src:  "K",
			want: []string{"t:K"},
		},
		{
			name: "trailing line comment",
			src:  "K \"v\"; // end",
			want: []string{"t:K", "t:v", "b"},
		},
		{
			name: "nul ends the buffer",
			src:  "K \"v\";\x00J \"w\";",
			want: []string{"t:K", "t:v", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := collect(t, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenizeUnterminated(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		missing string
		line    int
	}{
		{name: "quoted string", src: "K1 \"oops;", missing: `"`, line: 1},
		{name: "block comment", src: "K \"v\";\n/* never closed\n", missing: "*/", line: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := collect(t, tt.src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnterminated))

			var se *SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.missing, se.Missing)
			assert.Equal(t, tt.line, se.Line)
		})
	}
}

func TestTokenizeUnbalancedSection(t *testing.T) {
	_, err := collect(t, "K \"v\";\n}")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedChar))

	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 2, se.Line)
	assert.Equal(t, '}', se.Char)
	assert.Equal(t, "'test.txt' (2): unexpected '}' while parsing", se.Error())
}

func TestTokenizeDirectives(t *testing.T) {
	t.Run("abort reports line and char", func(t *testing.T) {
		err := Tokenize("f.txt", []rune("A \"x\";\nB \"y\";\n#"), func(pos Position, ev Event) Directive {
			if c, ok := ev.(CharSeen); ok && c.Char == '#' {
				return Abort
			}
			return Resume
		})
		var se *SyntaxError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, 3, se.Line)
		assert.Equal(t, '#', se.Char)
	})

	t.Run("abort stops further events", func(t *testing.T) {
		var texts []string
		err := Tokenize("f.txt", []rune("A \"x\"; ! B \"y\";"), func(pos Position, ev Event) Directive {
			switch e := ev.(type) {
			case CharSeen:
				if e.Char == '!' {
					return Abort
				}
			case Text:
				texts = append(texts, e.Content)
			}
			return Resume
		})
		require.Error(t, err)
		assert.Equal(t, []string{"A", "x"}, texts)
	})

	t.Run("skip drops characters", func(t *testing.T) {
		var texts []string
		err := Tokenize("f.txt", []rune("#K \"v\";"), func(pos Position, ev Event) Directive {
			switch e := ev.(type) {
			case CharSeen:
				if pos.Mode == ModeDefault && e.Char == '#' {
					return Skip
				}
			case Text:
				texts = append(texts, e.Content)
			}
			return Resume
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"K", "v"}, texts)
	})

	t.Run("break splits an open string", func(t *testing.T) {
		var texts []string
		err := Tokenize("f.txt", []rune("abc123;"), func(pos Position, ev Event) Directive {
			switch e := ev.(type) {
			case CharSeen:
				if pos.Mode == ModeOpenString && e.Char == '1' {
					return BreakToken
				}
			case Text:
				texts = append(texts, e.Content)
			}
			return Resume
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"abc", "123"}, texts)
	})
}

func TestTokenizeLineCounting(t *testing.T) {
	var lines []int
	err := Tokenize("f.txt", []rune("A\n\"x\";\n\nB\n\"y\";"), func(pos Position, ev Event) Directive {
		if _, ok := ev.(Text); ok {
			lines = append(lines, pos.Line)
		}
		return Resume
	})
	require.NoError(t, err)
	// the newline that closes A is rescanned in default mode but counted once
	assert.Equal(t, []int{2, 2, 5, 5}, lines)
}
