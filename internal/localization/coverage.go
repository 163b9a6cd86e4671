package localization

import "kvloc/internal/table"

// Coverage summarizes how much of a merged table is localized.
type Coverage struct {
	Localized int
	Total     int
}

// Percent is the share of localized records; an empty table reports 0.
func (c Coverage) Percent() float64 {
	total := c.Total
	if total == 0 {
		total = 1
	}
	return float64(c.Localized) / float64(total) * 100
}

// Measure counts the localized records of a merged table.
func Measure(records []table.Record) Coverage {
	c := Coverage{Total: len(records)}
	for _, r := range records {
		if Classify(r) {
			c.Localized++
		}
	}
	return c
}
