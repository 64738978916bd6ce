package grader

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/pavelanni/grader/internal/model"
)

// ParseExtraction repairs and decodes the raw text returned by the
// extraction service into a well-formed ExtractionResult. It strips code
// fences, trims to the outermost JSON object if the model added prose
// around it, and backfills a missing reason with "N/A" on every item.
// Missing confidence, answer, and points pass through as-is; the scorer
// and aggregator default them downstream.
//
// The sanity check flag is recomputed from the parsed point values; it is
// informational only and never blocks grading.
func ParseExtraction(raw string) (*model.ExtractionResult, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, fmt.Errorf("empty extraction output: %w", model.ErrMalformedExtraction)
	}

	if strings.Contains(text, "```") {
		if _, after, ok := strings.Cut(text, "```json"); ok {
			text = after
		} else {
			_, text, _ = strings.Cut(text, "```")
		}
		if before, _, ok := strings.Cut(text, "```"); ok {
			text = before
		}
		text = strings.TrimSpace(text)
	}

	if !strings.HasPrefix(text, "{") || !strings.HasSuffix(text, "}") {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start != -1 && end > start {
			text = text[start : end+1]
		}
	}

	var result model.ExtractionResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("decode extraction output: %v: %w", err, model.ErrMalformedExtraction)
	}
	if result.Items == nil {
		return nil, fmt.Errorf("extraction output has no items list: %w", model.ErrMalformedExtraction)
	}

	for i := range result.Items {
		if result.Items[i].Reason == "" {
			result.Items[i].Reason = model.NoReason
		}
	}

	result.SanityCheckPassed = pointsAddUp(&result)
	return &result, nil
}

// pointsAddUp reports whether the sum of all item point values matches
// the total encoded in the top-left cell.
func pointsAddUp(r *model.ExtractionResult) bool {
	var sum float64
	for _, item := range r.Items {
		sum += ParsePoints(item.Points)
	}
	return math.Abs(sum-ParsePoints(r.TotalPointsCell)) < 1e-9
}
