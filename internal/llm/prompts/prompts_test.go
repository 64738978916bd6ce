package prompts

import (
	"errors"
	"strings"
	"testing"

	"github.com/pavelanni/grader/internal/model"
)

func TestBuildSpreadsheetPrompt(t *testing.T) {
	prompt, err := BuildSpreadsheetPrompt("4pts\n1pt\tWhat is the capital?\nParis")
	if err != nil {
		t.Fatalf("build prompt: %v", err)
	}
	for _, want := range []string{
		"data extraction and verification assistant",
		"sanity_check_passed",
		SpreadsheetMarker,
		"1pt\tWhat is the capital?",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	head, data, ok := strings.Cut(prompt, SpreadsheetMarker)
	if !ok {
		t.Fatal("prompt has no data marker")
	}
	if strings.Contains(head, "Paris") {
		t.Error("document text leaked into the instruction head")
	}
	if !strings.Contains(data, "Paris") {
		t.Error("document text missing from the data section")
	}
}

func TestBuildDocumentPrompt(t *testing.T) {
	prompt, err := BuildDocumentPrompt("(2 pts) What is the mean?\nAnswer: 10")
	if err != nil {
		t.Fatalf("build prompt: %v", err)
	}
	for _, want := range []string{
		"math grading extraction assistant",
		"student might be asking a question",
		DocumentMarker,
		"Answer: 10",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		path   string
		marker string
	}{
		{"key.xlsx", SpreadsheetMarker},
		{"key.XLS", SpreadsheetMarker},
		{"quiz.docx", DocumentMarker},
		{"quiz.doc", DocumentMarker},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			prompt, err := ForFile(tt.path, "data")
			if err != nil {
				t.Fatalf("for file: %v", err)
			}
			if !strings.Contains(prompt, tt.marker) {
				t.Errorf("expected marker %q in prompt", tt.marker)
			}
		})
	}

	if _, err := ForFile("slides.pdf", "data"); !errors.Is(err, model.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSwapData(t *testing.T) {
	prompt, err := BuildSpreadsheetPrompt("old key data")
	if err != nil {
		t.Fatalf("build prompt: %v", err)
	}

	swapped := SwapData(prompt, "alice answer data")
	if strings.Contains(swapped, "old key data") {
		t.Error("old data section survived the swap")
	}
	if !strings.Contains(swapped, "alice answer data") {
		t.Error("new data section missing")
	}
	head, _, _ := strings.Cut(prompt, SpreadsheetMarker)
	if !strings.HasPrefix(swapped, head) {
		t.Error("instruction head changed during swap")
	}
}

func TestSwapDataDocumentMarker(t *testing.T) {
	prompt, err := BuildDocumentPrompt("old doc data")
	if err != nil {
		t.Fatalf("build prompt: %v", err)
	}
	swapped := SwapData(prompt, "new doc data")
	if !strings.Contains(swapped, DocumentMarker) || !strings.Contains(swapped, "new doc data") {
		t.Errorf("swap failed: %q", swapped)
	}
}

func TestSwapDataNoMarker(t *testing.T) {
	swapped := SwapData("bare instructions", "the data")
	if !strings.Contains(swapped, SpreadsheetMarker) || !strings.Contains(swapped, "the data") {
		t.Errorf("expected appended marker and data, got %q", swapped)
	}
}
