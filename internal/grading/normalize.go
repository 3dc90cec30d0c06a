package grading

import "strings"

// Normalize trims surrounding whitespace and lower-cases. Gap, dropdown, hint
// and option comparisons are exact after this.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// highlightPunctuation is stripped from highlight comparisons only. Manual
// text selection drags in punctuation at span edges; gap typing does not.
const highlightPunctuation = ".,/#!$%^&*;:{}=-_`~()[]\""

// NormalizeHighlight strips punctuation and collapses whitespace runs before
// the trim+lowercase step, so a highlighted span matches its stored answer
// despite selection noise.
func NormalizeHighlight(s string) string {
	stripped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(highlightPunctuation, r) {
			return -1
		}
		return r
	}, s)
	return Normalize(strings.Join(strings.Fields(stripped), " "))
}
