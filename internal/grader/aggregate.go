package grader

import (
	"sort"
	"strings"

	"github.com/pavelanni/grader/internal/model"
)

// blankAnswer stands in for empty student answers in the summary lists.
const blankAnswer = "(blank)"

// Pair is one key item matched with its submission item.
type Pair struct {
	Key     model.ExtractedItem
	Student model.ExtractedItem
}

// MatchItems pairs key and submission items by positional index: index k
// of the key matches index k of the submission. Key indexes past the end
// of the submission get a synthesized missing answer; extra submission
// items beyond the key length are ignored.
func MatchItems(keyItems, studentItems []model.ExtractedItem) []Pair {
	pairs := make([]Pair, 0, len(keyItems))
	for k, key := range keyItems {
		student := model.ExtractedItem{
			Answer:     "",
			Confidence: string(model.ConfidenceMissing),
			Reason:     model.NoReason,
		}
		if k < len(studentItems) {
			student = studentItems[k]
		}
		pairs = append(pairs, Pair{Key: key, Student: student})
	}
	return pairs
}

// GradeSubmission scores every matched item of one submission and
// aggregates the per-submission result: the exact point total, the
// low-confidence flag and answer list, wrong answers, distinct reasons,
// and one detailed row per key item plus a trailing total row.
func GradeSubmission(keyItems, studentItems []model.ExtractedItem, filename string, policy MatchPolicy) model.SubmissionResult {
	res := model.SubmissionResult{
		Filename:         filename,
		KeyItemCount:     len(keyItems),
		StudentItemCount: len(studentItems),
	}
	reasons := make(map[string]struct{})

	for _, pair := range MatchItems(keyItems, studentItems) {
		awarded, wrong := Score(pair.Key, pair.Student, policy)
		pts := ParsePoints(pair.Key.Points)

		correct := normalizeAnswer(pair.Key.Answer)
		answer := normalizeAnswer(pair.Student.Answer)
		conf := pair.Student.Confidence
		if conf == "" {
			conf = string(model.ConfidenceUnknown)
		}
		reason := pair.Student.Reason
		if reason == "" {
			reason = model.NoReason
		}

		res.Total += awarded

		if strings.ToLower(conf) == string(model.ConfidenceLow) {
			res.LowConfidence = true
			res.LowConfidenceAnswers = append(res.LowConfidenceAnswers, orBlank(answer))
		}
		if wrong {
			res.WrongAnswers = append(res.WrongAnswers, orBlank(answer))
		}
		if reason != model.NoReason {
			reasons[reason] = struct{}{}
		}

		res.Rows = append(res.Rows, model.DetailRow{
			Filename:      filename,
			Question:      pair.Key.Question,
			CorrectAnswer: correct,
			StudentAnswer: answer,
			Confidence:    conf,
			Reason:        reason,
			Awarded:       awarded,
			Class:         classify(awarded, pts),
		})
	}

	res.Rows = append(res.Rows, model.DetailRow{
		Filename: filename,
		Question: "TOTAL",
		Total:    res.Total,
		Class:    model.RowTotal,
	})

	for r := range reasons {
		res.Reasons = append(res.Reasons, r)
	}
	sort.Strings(res.Reasons)

	return res
}

func classify(awarded, pts float64) model.RowClass {
	switch {
	case awarded == pts:
		return model.RowFull
	case awarded > 0:
		return model.RowPartial
	default:
		return model.RowWrong
	}
}

func orBlank(s string) string {
	if s == "" {
		return blankAnswer
	}
	return s
}
