package localization

import "kvloc/internal/table"

// Lookup returns a remembered translation for a source string.
type Lookup func(english string) (string, bool)

// Fill replaces the localized text of every untranslated record that lookup
// knows a different translation for. It returns the number of records changed.
func Fill(records []table.Record, lookup Lookup) int {
	filled := 0
	for i := range records {
		if Classify(records[i]) {
			continue
		}
		translated, ok := lookup(records[i].English)
		if !ok || translated == records[i].English {
			continue
		}
		records[i].Localized = translated
		filled++
	}
	return filled
}
