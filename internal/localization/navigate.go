package localization

import (
	"fmt"
	"strings"

	"kvloc/internal/table"

	"golang.org/x/text/cases"
)

// Field selects which column FindNext searches.
type Field int

const (
	FieldID Field = iota
	FieldEnglish
	FieldLocalized
)

// ParseField maps a column name to a Field.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(s) {
	case "id":
		return FieldID, nil
	case "english":
		return FieldEnglish, nil
	case "localized":
		return FieldLocalized, nil
	}
	return 0, fmt.Errorf("unknown field %q (want id, english or localized)", s)
}

func (f Field) String() string {
	switch f {
	case FieldID:
		return "id"
	case FieldEnglish:
		return "english"
	case FieldLocalized:
		return "localized"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

func (f Field) value(r table.Record) string {
	switch f {
	case FieldEnglish:
		return r.English
	case FieldLocalized:
		return r.Localized
	}
	return r.ID
}

// FindNext returns the first record after current whose field contains needle,
// ignoring case. The search does not wrap: on a miss it returns the last index
// with ok false, where an editor cursor parks. An empty needle leaves the
// cursor at current.
func FindNext(records []table.Record, current int, field Field, needle string) (int, bool) {
	if needle == "" || len(records) == 0 {
		return current, false
	}
	fold := cases.Fold()
	want := fold.String(needle)
	for i := max(current+1, 0); i < len(records); i++ {
		if strings.Contains(fold.String(field.value(records[i])), want) {
			return i, true
		}
	}
	return len(records) - 1, false
}

// NextUnlocalized returns the first record after current that Classify
// rejects. On a miss it returns the last index with ok false.
func NextUnlocalized(records []table.Record, current int) (int, bool) {
	if len(records) == 0 {
		return current, false
	}
	for i := max(current+1, 0); i < len(records); i++ {
		if records[i].ID != "" && !Classify(records[i]) {
			return i, true
		}
	}
	return len(records) - 1, false
}
