package interpolation

import (
	"regexp"
	"sort"
)

// varMatch stores a detected interpolation variable position.
type varMatch struct {
	start, end int
	value      string
}

// patterns to detect interpolation variables in game strings.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\{[a-zA-Z_][a-zA-Z0-9_]*\}`),         // ${value}
	regexp.MustCompile(`\{[0-9]+\}`),                           // {0}, {1}
	regexp.MustCompile(`%[-+0-9]*\.?[0-9]*[dsfieEgGxXoubcpq]`), // %d, %s, %f, %2d, etc.
	regexp.MustCompile(`%%`),                                   // escaped percent literal
}

// Extract returns the interpolation variables of text in order of appearance.
func Extract(text string) []string {
	var all []varMatch
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			all = append(all, varMatch{start: loc[0], end: loc[1], value: text[loc[0]:loc[1]]})
		}
	}
	if len(all) == 0 {
		return nil
	}

	// By position, longest first for shared starts.
	sort.Slice(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].end-all[i].start > all[j].end-all[j].start
	})

	var vars []string
	lastEnd := -1
	for _, m := range all {
		if m.start >= lastEnd {
			vars = append(vars, m.value)
			lastEnd = m.end
		}
	}
	return vars
}

// Mismatch lists variables present on one side of a translation only.
type Mismatch struct {
	Missing []string // in the source, not in the translation
	Extra   []string // in the translation, not in the source
}

// Empty reports whether both sides carry the same variables.
func (m Mismatch) Empty() bool {
	return len(m.Missing) == 0 && len(m.Extra) == 0
}

// Compare checks that a translation keeps every variable of its source, with
// multiplicity. Order is not checked since translations may reorder them.
func Compare(source, translated string) Mismatch {
	counts := make(map[string]int)
	for _, v := range Extract(source) {
		counts[v]++
	}
	var m Mismatch
	for _, v := range Extract(translated) {
		if counts[v] > 0 {
			counts[v]--
			continue
		}
		m.Extra = append(m.Extra, v)
	}
	for _, v := range Extract(source) {
		if counts[v] > 0 {
			m.Missing = append(m.Missing, v)
			counts[v]--
		}
	}
	return m
}
