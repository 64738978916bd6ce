package grader

import (
	"errors"
	"testing"

	"github.com/pavelanni/grader/internal/model"
)

const validPayload = `{
  "total_points_cell": "2pts",
  "sanity_check_passed": true,
  "items": [
    {"points": "1pt", "question": "Q1", "answer": "0.43", "confidence": "high", "reason": "N/A"},
    {"points": "1pt", "question": "Q2", "answer": "maybe 0.4?", "confidence": "low"}
  ]
}`

func TestParseExtraction(t *testing.T) {
	t.Run("plain JSON", func(t *testing.T) {
		result, err := ParseExtraction(validPayload)
		if err != nil {
			t.Fatalf("ParseExtraction: %v", err)
		}
		if len(result.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(result.Items))
		}
		if result.TotalPointsCell != "2pts" {
			t.Errorf("expected total cell '2pts', got %q", result.TotalPointsCell)
		}
	})

	t.Run("json code fence", func(t *testing.T) {
		result, err := ParseExtraction("```json\n" + validPayload + "\n```")
		if err != nil {
			t.Fatalf("ParseExtraction: %v", err)
		}
		if len(result.Items) != 2 {
			t.Errorf("expected 2 items, got %d", len(result.Items))
		}
	})

	t.Run("bare code fence", func(t *testing.T) {
		result, err := ParseExtraction("```\n" + validPayload + "\n```")
		if err != nil {
			t.Fatalf("ParseExtraction: %v", err)
		}
		if len(result.Items) != 2 {
			t.Errorf("expected 2 items, got %d", len(result.Items))
		}
	})

	t.Run("prose around the object", func(t *testing.T) {
		result, err := ParseExtraction("Here is the result:\n" + validPayload + "\nLet me know!")
		if err != nil {
			t.Fatalf("ParseExtraction: %v", err)
		}
		if len(result.Items) != 2 {
			t.Errorf("expected 2 items, got %d", len(result.Items))
		}
	})

	t.Run("missing reason backfilled", func(t *testing.T) {
		result, err := ParseExtraction(validPayload)
		if err != nil {
			t.Fatalf("ParseExtraction: %v", err)
		}
		if result.Items[0].Reason != "N/A" {
			t.Errorf("expected reason 'N/A', got %q", result.Items[0].Reason)
		}
		if result.Items[1].Reason != "N/A" {
			t.Errorf("expected backfilled reason 'N/A', got %q", result.Items[1].Reason)
		}
		// Other fields pass through untouched.
		if result.Items[1].Confidence != "low" {
			t.Errorf("expected confidence 'low', got %q", result.Items[1].Confidence)
		}
		if result.Items[1].Answer != "maybe 0.4?" {
			t.Errorf("answer changed: %q", result.Items[1].Answer)
		}
	})

	t.Run("missing confidence passes through empty", func(t *testing.T) {
		result, err := ParseExtraction(`{"items": [{"points": "1pt", "question": "Q", "answer": "a"}]}`)
		if err != nil {
			t.Fatalf("ParseExtraction: %v", err)
		}
		if result.Items[0].Confidence != "" {
			t.Errorf("expected empty confidence, got %q", result.Items[0].Confidence)
		}
		if result.Items[0].Reason != "N/A" {
			t.Errorf("expected backfilled reason, got %q", result.Items[0].Reason)
		}
	})

	t.Run("sanity check recomputed", func(t *testing.T) {
		// The model claims the check failed, but the points add up.
		payload := `{
		  "total_points_cell": "2pts",
		  "sanity_check_passed": false,
		  "items": [
		    {"points": "1pt", "question": "Q1", "answer": "a", "reason": "N/A"},
		    {"points": "1pt", "question": "Q2", "answer": "b", "reason": "N/A"}
		  ]
		}`
		result, err := ParseExtraction(payload)
		if err != nil {
			t.Fatalf("ParseExtraction: %v", err)
		}
		if !result.SanityCheckPassed {
			t.Error("expected sanity check to pass: points add up")
		}
	})

	t.Run("sanity check mismatch", func(t *testing.T) {
		payload := `{
		  "total_points_cell": "4pts",
		  "sanity_check_passed": true,
		  "items": [{"points": "1pt", "question": "Q1", "answer": "a", "reason": "N/A"}]
		}`
		result, err := ParseExtraction(payload)
		if err != nil {
			t.Fatalf("ParseExtraction: %v", err)
		}
		if result.SanityCheckPassed {
			t.Error("expected sanity check to fail: 1pt != 4pts")
		}
	})
}

func TestParseExtractionMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace only", "   \n  "},
		{"not JSON", "I could not process this document."},
		{"truncated object", `{"items": [{"points": "1pt",`},
		{"fence without object", "```\nnothing here\n```"},
		{"object without items", `{"total_points_cell": "2pts"}`},
		{"items not a list", `{"items": {"points": "1pt"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExtraction(tt.raw)
			if !errors.Is(err, model.ErrMalformedExtraction) {
				t.Errorf("expected ErrMalformedExtraction, got %v", err)
			}
		})
	}
}
