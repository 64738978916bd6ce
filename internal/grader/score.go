package grader

import (
	"math"
	"strconv"
	"strings"

	"github.com/pavelanni/grader/internal/model"
)

// Numeric answers closer than this relative error earn half credit.
const relErrTolerance = 0.05

// MatchPolicy decides whether a low-confidence student answer plausibly
// contains the correct answer. Both inputs are normalized (trimmed,
// lowercased). Swappable so the heuristic can be characterized on its own.
type MatchPolicy func(correct, student string) bool

// PrefixMatchPolicy accepts when the first three characters of the correct
// answer occur anywhere in the student's text. A coarse proxy for fuzzy
// matching of conversational answers like "the probability is prob 0.4".
func PrefixMatchPolicy(correct, student string) bool {
	prefix := correct
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return strings.Contains(student, prefix)
}

// ParsePoints turns a point token such as "1pt" or "2 pts" into its
// numeric value. Unparsable tokens are worth zero.
func ParsePoints(s string) float64 {
	s = strings.ReplaceAll(s, "pt", "")
	s = strings.ReplaceAll(s, "s", "")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// Score computes the awarded points and wrong flag for one key item and
// its paired submission item. The decision procedure, in order:
//
//  1. If both answers parse as numbers: full points when equal after
//     rounding to 2 decimals, half points when the relative error is
//     under 5%, otherwise zero and wrong.
//  2. Full points on an exact match of the normalized strings.
//  3. Half points when confidence is low and the match policy accepts.
//  4. Otherwise zero and wrong.
func Score(key, student model.ExtractedItem, policy MatchPolicy) (awarded float64, wrong bool) {
	if policy == nil {
		policy = PrefixMatchPolicy
	}
	pts := ParsePoints(key.Points)
	correct := normalizeAnswer(key.Answer)
	answer := normalizeAnswer(student.Answer)
	conf := strings.ToLower(strings.TrimSpace(student.Confidence))

	sv, sOK := parseNumber(answer)
	cv, cOK := parseNumber(correct)
	switch {
	case sOK && cOK:
		if round2(sv) == round2(cv) {
			return pts, false
		}
		denom := math.Abs(cv)
		if denom == 0 {
			denom = 1e-9
		}
		relErr := math.Abs(sv-cv) / denom
		if relErr < relErrTolerance {
			return pts / 2, false
		}
		return 0, true
	case answer == correct:
		return pts, false
	case conf == string(model.ConfidenceLow) && correct != "" && policy(correct, answer):
		return pts / 2, false
	default:
		return 0, true
	}
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v, err == nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
