package localization

import (
	"unicode/utf8"

	"kvloc/internal/table"
	"kvloc/internal/textutil"
)

// IsLocalized reports whether localized counts as a translation of english.
// Lengths are compared in characters.
func IsLocalized(english string, localized *string) bool {
	if localized == nil {
		return false
	}
	enLen := utf8.RuneCountInString(english)
	if enLen <= 2 {
		return true
	}
	if enLen != utf8.RuneCountInString(*localized) {
		return true
	}
	if english != *localized {
		return true
	}
	// an unchanged copy only passes when there is nothing to translate
	return !textutil.ContainsLetter(english)
}

// Classify applies IsLocalized to a merged record.
func Classify(r table.Record) bool {
	return IsLocalized(r.English, &r.Localized)
}
