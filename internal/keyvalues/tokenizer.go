package keyvalues

import (
	"errors"
	"fmt"
	"unicode"
)

const (
	sectionBegin   = '{'
	sectionEnd     = '}'
	stringDelim    = '"'
	commentSymbol  = '/'
	rangeComment   = '*'
	recordBreak    = ';'
	escapeSymbol   = '\\'
	newline        = '\n'
	carriageReturn = '\r'
)

// Mode is the tokenizer state at a scan position.
type Mode int

const (
	ModeDefault Mode = iota
	ModeSkipLineComment
	ModeSkipBlockComment
	ModeOpenString
	ModeQuotedString
	ModeErrorBreak
)

func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeSkipLineComment:
		return "line-comment"
	case ModeSkipBlockComment:
		return "block-comment"
	case ModeOpenString:
		return "open-string"
	case ModeQuotedString:
		return "quoted-string"
	case ModeErrorBreak:
		return "error"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Directive is returned by a Handler to steer the scan.
type Directive int

const (
	// Resume continues normally.
	Resume Directive = iota
	// Skip drops the current character without classifying it.
	Skip
	// BreakToken closes an open (unquoted) string before the current character.
	BreakToken
	// Abort stops the scan with an unexpected-character error.
	Abort
)

// Event is one of CharSeen, SectionEnter, SectionExit, RecordBreak or Text.
type Event interface {
	event()
}

// CharSeen is issued for every character scanned in default mode and for
// every character that extends an open string.
type CharSeen struct {
	Char rune
}

// SectionEnter is issued on '{' with the depth after entering.
type SectionEnter struct {
	Depth int
}

// SectionExit is issued on '}' with the depth after leaving.
type SectionExit struct {
	Depth int
}

// RecordBreak is issued on ';'.
type RecordBreak struct{}

// Text carries a completed string token. Quoted content is already decoded.
type Text struct {
	Content string
}

func (CharSeen) event()     {}
func (SectionEnter) event() {}
func (SectionExit) event()  {}
func (RecordBreak) event()  {}
func (Text) event()         {}

// Position locates an event in the source buffer.
type Position struct {
	// Line is 1-based.
	Line int
	// Offset is the index of the current character in the buffer.
	Offset int
	// Mode is the tokenizer mode when the event was issued.
	Mode Mode
}

// Handler receives tokenizer events in source order.
type Handler func(pos Position, ev Event) Directive

var (
	ErrUnexpectedChar = errors.New("unexpected character")
	ErrUnterminated   = errors.New("unexpected end of file")
)

// SyntaxError describes why a scan did not finish cleanly.
type SyntaxError struct {
	File string
	Line int
	// Char is the offending character, zero for unterminated constructs.
	Char rune
	// Missing names the delimiter that was expected before EOF.
	Missing string
	Err     error
}

func (e *SyntaxError) Error() string {
	if errors.Is(e.Err, ErrUnterminated) {
		return fmt.Sprintf("'%s' (%d): EOF unexpected (missing '%s')", e.File, e.Line, e.Missing)
	}
	return fmt.Sprintf("'%s' (%d): unexpected '%c' while parsing", e.File, e.Line, e.Char)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// IsWhitespace reports whether c separates tokens.
func IsWhitespace(c rune) bool {
	return unicode.IsSpace(c) || c == newline || c == carriageReturn
}

// Tokenize scans src left to right and reports events to fn. It returns nil
// when the scan ended in default mode, or a *SyntaxError otherwise. name is
// used for diagnostics only.
func Tokenize(name string, src []rune, fn Handler) error {
	s := &scanner{
		name:    name,
		src:     src,
		fn:      fn,
		line:    1,
		counted: -1,
	}
	return s.run()
}

type scanner struct {
	name string
	src  []rune
	fn   Handler

	mode      Mode
	line      int
	counted   int // offset of the last newline already counted
	modeLine  int
	depth     int
	tokenFrom int
	err       error
}

func (s *scanner) run() error {
	for i := 0; i < len(s.src); i++ {
		c := s.src[i]
		if c == newline && i > s.counted {
			s.line++
			s.counted = i
		}
		if c == 0 {
			break
		}

		switch s.mode {
		case ModeDefault:
			i = s.scanDefault(i, c)
		case ModeSkipLineComment:
			if c == newline {
				s.mode = ModeDefault
			}
		case ModeSkipBlockComment:
			if c == rangeComment && s.peek(i) == commentSymbol {
				s.mode = ModeDefault
				i++
			}
		case ModeOpenString:
			i = s.scanOpenString(i, c)
		case ModeQuotedString:
			if c == stringDelim && s.src[i-1] != escapeSymbol {
				s.mode = ModeDefault
				content := Decode(string(s.src[s.tokenFrom:i]))
				if s.emit(i, Text{Content: content}) == Abort {
					s.fail(c)
				}
			}
		}

		if s.mode == ModeErrorBreak {
			return s.err
		}
	}
	return s.finish()
}

func (s *scanner) scanDefault(i int, c rune) int {
	d := s.emit(i, CharSeen{Char: c})
	if d == Abort {
		s.fail(c)
		return i
	}
	if d == Skip || IsWhitespace(c) {
		return i
	}

	switch c {
	case commentSymbol:
		// a lone '/' is dropped
		switch s.peek(i) {
		case commentSymbol:
			s.enter(ModeSkipLineComment)
		case rangeComment:
			s.enter(ModeSkipBlockComment)
			i++
		}
	case sectionBegin:
		s.depth++
		if s.emit(i, SectionEnter{Depth: s.depth}) == Abort {
			s.fail(c)
		}
	case sectionEnd:
		if s.depth <= 0 {
			s.fail(c)
			return i
		}
		s.depth--
		if s.emit(i, SectionExit{Depth: s.depth}) == Abort {
			s.fail(c)
		}
	case stringDelim:
		s.enter(ModeQuotedString)
		s.tokenFrom = i + 1
	case recordBreak:
		if s.emit(i, RecordBreak{}) == Abort {
			s.fail(c)
		}
	default:
		s.enter(ModeOpenString)
		s.tokenFrom = i
	}
	return i
}

func (s *scanner) scanOpenString(i int, c rune) int {
	d := s.emit(i, CharSeen{Char: c})
	if d == Abort {
		s.fail(c)
		return i
	}
	if d != BreakToken && !IsWhitespace(c) && c != recordBreak && c != commentSymbol && c != sectionBegin {
		return i
	}

	s.mode = ModeDefault
	if s.emit(i, Text{Content: string(s.src[s.tokenFrom:i])}) == Abort {
		s.fail(c)
		return i
	}
	// the closing character belongs to whatever follows the token
	return i - 1
}

// finish reports constructs left open at end of input. A trailing bare token
// or line comment is closed by EOF.
func (s *scanner) finish() error {
	switch s.mode {
	case ModeOpenString:
		s.mode = ModeDefault
		if s.emit(len(s.src), Text{Content: string(s.src[s.tokenFrom:])}) == Abort {
			s.fail(0)
			return s.err
		}
	case ModeSkipLineComment:
		s.mode = ModeDefault
	case ModeSkipBlockComment:
		return &SyntaxError{File: s.name, Line: s.modeLine, Missing: "*/", Err: ErrUnterminated}
	case ModeQuotedString:
		return &SyntaxError{File: s.name, Line: s.modeLine, Missing: `"`, Err: ErrUnterminated}
	}
	return nil
}

func (s *scanner) enter(m Mode) {
	s.mode = m
	s.modeLine = s.line
}

func (s *scanner) fail(c rune) {
	s.modeLine = s.line
	s.mode = ModeErrorBreak
	s.err = &SyntaxError{File: s.name, Line: s.line, Char: c, Err: ErrUnexpectedChar}
}

func (s *scanner) emit(i int, ev Event) Directive {
	return s.fn(Position{Line: s.line, Offset: i, Mode: s.mode}, ev)
}

func (s *scanner) peek(i int) rune {
	if i+1 < len(s.src) {
		return s.src[i+1]
	}
	return 0
}
