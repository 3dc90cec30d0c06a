package grading

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// SubUnit is one independently scored piece of a question (a gap, a dropdown
// slot, a hint word, a correct checkbox option, a highlight target). The
// comparators produce sub-units and the review projection renders them, so
// the key derivation can never drift between scoring and review.
type SubUnit struct {
	Key       string
	Label     string
	Correct   string
	Submitted string
	Matched   bool
}

// compositeUnits grades the gap/dropdown/hint collections of a composite
// question against a key→value answer map. The three collections are
// addressed by independent zero-based keys.
func compositeUnits(q Question, answers map[string]string) []SubUnit {
	units := make([]SubUnit, 0, len(q.Gaps)+len(q.Dropdowns)+len(q.HintWords))

	for i, gap := range q.Gaps {
		key := fmt.Sprintf("gap_%d", i)
		submitted := answers[key]
		matched := false
		for _, accepted := range gap.CorrectAnswers {
			if Normalize(submitted) == Normalize(accepted) && strings.TrimSpace(accepted) != "" {
				matched = true
				break
			}
		}
		units = append(units, SubUnit{
			Key:       key,
			Label:     fmt.Sprintf("Gap %d", i+1),
			Correct:   strings.Join(gap.CorrectAnswers, " / "),
			Submitted: submitted,
			Matched:   matched,
		})
	}

	for i, dd := range q.Dropdowns {
		key := fmt.Sprintf("dropdown_%d", i)
		submitted := answers[key]
		units = append(units, SubUnit{
			Key:       key,
			Label:     fmt.Sprintf("Dropdown %d", i+1),
			Correct:   dd.CorrectAnswer,
			Submitted: submitted,
			Matched:   strings.TrimSpace(dd.CorrectAnswer) != "" && Normalize(submitted) == Normalize(dd.CorrectAnswer),
		})
	}

	for i, hint := range q.HintWords {
		key := fmt.Sprintf("hint_%d", i)
		submitted := answers[key]
		units = append(units, SubUnit{
			Key:       key,
			Label:     fmt.Sprintf("Hint %d", i+1),
			Correct:   hint.Word,
			Submitted: submitted,
			Matched:   strings.TrimSpace(hint.Word) != "" && Normalize(submitted) == Normalize(hint.Word),
		})
	}

	return units
}

// choiceUnits grades a multiple-choice question: one sub-unit, full points on
// exact normalized match with the single correct option.
func choiceUnits(q Question, submitted string) []SubUnit {
	correct := ""
	found := false
	for _, opt := range q.Options {
		if opt.IsCorrect {
			correct = opt.Text
			found = true
			break
		}
	}
	if len(q.Options) == 0 {
		return nil
	}
	return []SubUnit{{
		Key:       "choice_0",
		Label:     "Choice",
		Correct:   correct,
		Submitted: submitted,
		Matched:   found && Normalize(submitted) == Normalize(correct),
	}}
}

// checkboxUnits grades a checkboxes question: one sub-unit per correct
// option. Extra wrong selections never subtract points; they are returned
// separately so the correctness flag can account for them.
func checkboxUnits(q Question, selected map[int]bool) (units []SubUnit, extras []int) {
	for i, opt := range q.Options {
		if !opt.IsCorrect {
			if selected[i] {
				extras = append(extras, i)
			}
			continue
		}
		units = append(units, SubUnit{
			Key:       fmt.Sprintf("option_%d", i),
			Label:     fmt.Sprintf("Option %d", i+1),
			Correct:   opt.Text,
			Submitted: submittedCheckboxText(q, selected, i),
			Matched:   selected[i],
		})
	}
	return units, extras
}

func submittedCheckboxText(q Question, selected map[int]bool, idx int) string {
	if selected[idx] {
		return q.Options[idx].Text
	}
	return ""
}

// highlightUnits grades a find-highlight question: each gap's primary correct
// answer is matched against the submitted highlights greedily, one-to-one. A
// highlight consumed for one gap cannot satisfy another.
func highlightUnits(q Question, highlights []string) []SubUnit {
	consumed := make([]bool, len(highlights))
	units := make([]SubUnit, 0, len(q.Gaps))

	for i, gap := range q.Gaps {
		want := ""
		if len(gap.CorrectAnswers) > 0 {
			want = gap.CorrectAnswers[0]
		}
		unit := SubUnit{
			Key:     fmt.Sprintf("gap_%d", i),
			Label:   fmt.Sprintf("Highlight %d", i+1),
			Correct: want,
		}
		if NormalizeHighlight(want) != "" {
			for j, h := range highlights {
				if consumed[j] {
					continue
				}
				if NormalizeHighlight(h) == NormalizeHighlight(want) {
					consumed[j] = true
					unit.Submitted = h
					unit.Matched = true
					break
				}
			}
		}
		units = append(units, unit)
	}
	return units
}

// fallbackMatch is the default comparator for unrecognized type tags:
// structural equality between the submitted payload and the stored correct
// answer, both decoded from their serialized form.
func fallbackMatch(q Question, payload json.RawMessage) bool {
	if len(q.CorrectAnswer) == 0 || len(payload) == 0 {
		return false
	}
	var want, got any
	if err := json.Unmarshal(q.CorrectAnswer, &want); err != nil {
		return false
	}
	if err := json.Unmarshal(payload, &got); err != nil {
		return false
	}
	return reflect.DeepEqual(want, got)
}

// ===== DEFENSIVE PAYLOAD DECODING =====
//
// A malformed payload for a given type is treated as absent, never as an
// error: the answer simply grades as not correct.

// decodeKeyedAnswers decodes a {"gap_0": "...", ...} map, coercing non-string
// values to their string form.
func decodeKeyedAnswers(payload json.RawMessage) map[string]string {
	out := map[string]string{}
	if len(payload) == 0 {
		return out
	}
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return out
	}
	for k, v := range raw {
		if s, ok := coerceString(v); ok {
			out[k] = s
		}
	}
	return out
}

// decodeChoice decodes a single submitted option text. A one-element array is
// tolerated for compatibility with list-shaped client payloads.
func decodeChoice(payload json.RawMessage) string {
	if len(payload) == 0 {
		return ""
	}
	var raw any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return v
	case []any:
		if len(v) == 1 {
			if s, ok := coerceString(v[0]); ok {
				return s
			}
		}
	}
	return ""
}

// decodeIndexSet decodes the submitted checkbox indices into a de-duplicated
// set. Numeric strings are coerced; anything else is ignored.
func decodeIndexSet(payload json.RawMessage) map[int]bool {
	out := map[int]bool{}
	if len(payload) == 0 {
		return out
	}
	var raw []any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return out
	}
	for _, v := range raw {
		switch n := v.(type) {
		case float64:
			out[int(n)] = true
		case string:
			if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
				out[i] = true
			}
		}
	}
	return out
}

// decodeHighlights decodes the submitted highlight spans. Both {"text": s}
// objects and bare strings are accepted.
func decodeHighlights(payload json.RawMessage) []string {
	if len(payload) == 0 {
		return nil
	}
	var raw []any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		switch h := v.(type) {
		case string:
			out = append(out, h)
		case map[string]any:
			if s, ok := coerceString(h["text"]); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func coerceString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(s), true
	default:
		return "", false
	}
}
