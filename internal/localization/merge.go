package localization

import "kvloc/internal/table"

// Merge joins the source table with a target table by ID. The source table
// fixes order and membership; IDs only present in the target are dropped.
// Records without a target value show the source text.
func Merge(english, localized []table.Entry) []table.Record {
	byID := make(map[string]table.Entry, len(localized))
	for _, e := range localized {
		// first occurrence wins
		if _, seen := byID[e.ID]; !seen {
			byID[e.ID] = e
		}
	}

	out := make([]table.Record, 0, len(english))
	for _, en := range english {
		rec := table.Record{ID: en.ID}
		if en.Value != nil {
			rec.English = *en.Value
		}
		rec.Localized = rec.English
		if lc, ok := byID[en.ID]; ok && lc.Value != nil {
			rec.Localized = *lc.Value
		}
		out = append(out, rec)
	}
	return out
}
