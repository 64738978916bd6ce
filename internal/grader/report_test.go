package grader

import (
	"testing"

	"github.com/pavelanni/grader/internal/model"
)

func TestBuildReport(t *testing.T) {
	results := []model.SubmissionResult{
		{
			Filename:             "alice.xlsx",
			Total:                2.456,
			LowConfidence:        true,
			LowConfidenceAnswers: []string{"maybe 0.4", "(blank)"},
			WrongAnswers:         []string{"london"},
			Reasons:              []string{"answer refers to another sheet", "student might be asking a question"},
			Rows: []model.DetailRow{
				{Filename: "alice.xlsx", Question: "Q1", Class: model.RowFull, Awarded: 1},
				{Filename: "alice.xlsx", Question: "TOTAL", Class: model.RowTotal, Total: 2.456},
			},
		},
		{
			Filename: "bob.docx",
			Total:    3,
			Rows: []model.DetailRow{
				{Filename: "bob.docx", Question: "Q1", Class: model.RowWrong},
				{Filename: "bob.docx", Question: "TOTAL", Class: model.RowTotal, Total: 3},
			},
		},
	}

	rep := BuildReport(results)

	if len(rep.Detail) != 4 {
		t.Fatalf("expected 4 detail rows, got %d", len(rep.Detail))
	}
	if rep.Detail[1].Class != model.RowTotal || rep.Detail[2].Filename != "bob.docx" {
		t.Error("detail rows must keep per-submission order")
	}

	if len(rep.Summary) != 2 {
		t.Fatalf("expected 2 summary rows, got %d", len(rep.Summary))
	}
	alice := rep.Summary[0]
	if alice.LowConfidenceAnswers != "maybe 0.4, (blank)" {
		t.Errorf("unexpected low confidence join: %q", alice.LowConfidenceAnswers)
	}
	if alice.WrongAnswers != "london" {
		t.Errorf("unexpected wrong answers: %q", alice.WrongAnswers)
	}
	if alice.ReasonSummary != "answer refers to another sheet; student might be asking a question" {
		t.Errorf("unexpected reason summary: %q", alice.ReasonSummary)
	}
	if alice.Total != 2.46 {
		t.Errorf("expected total rounded to 2.46, got %v", alice.Total)
	}
	if !alice.LowConfidence {
		t.Error("expected low confidence flag carried through")
	}

	bob := rep.Summary[1]
	if bob.LowConfidenceAnswers != model.NoReason || bob.WrongAnswers != model.NoReason || bob.ReasonSummary != model.NoReason {
		t.Errorf("empty lists must render as N/A, got %+v", bob)
	}
	if bob.Total != 3 {
		t.Errorf("expected total 3, got %v", bob.Total)
	}
}

func TestBuildReportEmpty(t *testing.T) {
	rep := BuildReport(nil)
	if len(rep.Detail) != 0 || len(rep.Summary) != 0 {
		t.Errorf("expected empty report, got %+v", rep)
	}
}

func TestBuildReportIdempotent(t *testing.T) {
	results := []model.SubmissionResult{{Filename: "a.xlsx", Total: 1.005}}
	first := BuildReport(results)
	second := BuildReport(results)
	if first.Summary[0].Total != second.Summary[0].Total {
		t.Errorf("rebuilding must not re-round: %v vs %v", first.Summary[0].Total, second.Summary[0].Total)
	}
	// Rounding happens on the stored exact total, not on a prior rounded
	// value, so the input stays untouched.
	if results[0].Total != 1.005 {
		t.Errorf("input mutated to %v", results[0].Total)
	}
}
