// Package prompts builds the extraction prompts sent to the LLM. One
// template per source kind: spreadsheet data (tab-joined cells) and
// word-processor text.
package prompts

import (
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/pavelanni/grader/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Data-section markers. Everything after the marker is the source
// document text; everything before it is the reusable instruction head.
const (
	SpreadsheetMarker = "### Spreadsheet Data:"
	DocumentMarker    = "### Document Text:"
)

var tmpl = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

type promptData struct {
	Data string
}

// BuildSpreadsheetPrompt returns the extraction prompt for tab-joined
// spreadsheet text.
func BuildSpreadsheetPrompt(tableText string) (string, error) {
	return execute("spreadsheet.tmpl", tableText)
}

// BuildDocumentPrompt returns the extraction prompt for word-processor
// document text.
func BuildDocumentPrompt(docText string) (string, error) {
	return execute("document.tmpl", docText)
}

// ForFile picks the prompt builder by file extension.
func ForFile(path, text string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return BuildSpreadsheetPrompt(text)
	case ".docx", ".doc":
		return BuildDocumentPrompt(text)
	default:
		return "", fmt.Errorf("no extraction prompt for %s: %w", path, model.ErrUnsupportedFormat)
	}
}

// SwapData replaces the data section of an existing prompt with new
// document text, keeping the instruction head. Submissions reuse their
// template's prompt this way so both sides are extracted under the same
// rules.
func SwapData(prompt, text string) string {
	for _, marker := range []string{SpreadsheetMarker, DocumentMarker} {
		if head, _, ok := strings.Cut(prompt, marker); ok {
			return head + marker + "\n" + text
		}
	}
	return prompt + "\n" + SpreadsheetMarker + "\n" + text
}

func execute(name, text string) (string, error) {
	var sb strings.Builder
	if err := tmpl.ExecuteTemplate(&sb, name, promptData{Data: text}); err != nil {
		return "", fmt.Errorf("execute prompt template %s: %w", name, err)
	}
	return sb.String(), nil
}
