package grader

import (
	"strings"

	"github.com/pavelanni/grader/internal/model"
)

// BuildReport assembles the two report projections from per-submission
// results: the detailed per-question rows and the condensed one-row-per-
// submission summary. Totals are rounded to two decimals here and nowhere
// earlier.
func BuildReport(results []model.SubmissionResult) model.Report {
	var rep model.Report
	for _, res := range results {
		rep.Detail = append(rep.Detail, res.Rows...)
		rep.Summary = append(rep.Summary, model.SummaryRow{
			Filename:             res.Filename,
			LowConfidence:        res.LowConfidence,
			LowConfidenceAnswers: joinOrNA(res.LowConfidenceAnswers, ", "),
			WrongAnswers:         joinOrNA(res.WrongAnswers, ", "),
			ReasonSummary:        joinOrNA(res.Reasons, "; "),
			Total:                round2(res.Total),
		})
	}
	return rep
}

func joinOrNA(items []string, sep string) string {
	if len(items) == 0 {
		return model.NoReason
	}
	return strings.Join(items, sep)
}
