package table

import (
	"kvloc/internal/keyvalues"

	"github.com/rs/zerolog/log"
)

// builder assembles entries from tokenizer events for a single file.
// The first string after a break is the ID, the second its value.
type builder struct {
	file    string
	entries []Entry
	pending *Entry
}

func (b *builder) handle(pos keyvalues.Position, ev keyvalues.Event) keyvalues.Directive {
	switch e := ev.(type) {
	case keyvalues.Text:
		switch {
		case b.pending == nil:
			b.pending = &Entry{ID: e.Content}
		case b.pending.Value == nil:
			v := e.Content
			b.pending.Value = &v
		default:
			log.Debug().
				Str("file", b.file).
				Int("line", pos.Line).
				Str("id", b.pending.ID).
				Msg("Ignoring extra token in record")
		}
	case keyvalues.RecordBreak:
		if b.pending != nil {
			b.entries = append(b.entries, *b.pending)
			b.pending = nil
		}
	case keyvalues.CharSeen, keyvalues.SectionEnter, keyvalues.SectionExit:
		// nested sections carry no record semantics
	}
	return keyvalues.Resume
}

// ParseEntries tokenizes src and returns its entries in file order. On a
// syntax error the entries completed before it are returned with the error.
func ParseEntries(name string, src []rune) ([]Entry, error) {
	b := &builder{file: name}
	err := keyvalues.Tokenize(name, src, b.handle)
	if b.pending != nil {
		log.Debug().Str("file", name).Str("id", b.pending.ID).Msg("Dropping record without terminating ';'")
	}
	return b.entries, err
}
