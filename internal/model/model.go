package model

import "time"

// Confidence classifies how clean an extracted answer looked to the
// extraction model.
type Confidence string

const (
	// ConfidenceHigh marks a single, clear, objective answer.
	ConfidenceHigh Confidence = "high"
	// ConfidenceLow marks an ambiguous or conversational answer,
	// e.g. a student asking the instructor for help.
	ConfidenceLow Confidence = "low"
	// ConfidenceUnknown is the default when the extraction omitted the field.
	ConfidenceUnknown Confidence = "unknown"
	// ConfidenceMissing marks an answer synthesized for a key item the
	// submission did not cover at all.
	ConfidenceMissing Confidence = "missing"
)

// NoReason is the sentinel for an item without an extraction remark.
const NoReason = "N/A"

// ExtractedItem is one question/answer unit produced by the extraction step.
type ExtractedItem struct {
	Points     string `json:"points"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Confidence string `json:"confidence"`
	Reason     string `json:"reason"`
}

// ExtractionResult is the structured output of one extraction call.
type ExtractionResult struct {
	TotalPointsCell   string          `json:"total_points_cell"`
	SanityCheckPassed bool            `json:"sanity_check_passed"`
	Items             []ExtractedItem `json:"items"`
}

// TemplateStatus represents a template's lifecycle stage.
type TemplateStatus string

const (
	TemplateCreated  TemplateStatus = "created"
	TemplateSaved    TemplateStatus = "template_saved"
	TemplateAnalyzed TemplateStatus = "structure_analyzed"
)

// SubmissionStatus represents a submission's lifecycle stage.
type SubmissionStatus string

const (
	SubmissionCreated   SubmissionStatus = "created"
	SubmissionPending   SubmissionStatus = "pending_extraction"
	SubmissionExtracted SubmissionStatus = "extracted"
	SubmissionGraded    SubmissionStatus = "graded"
)

// Template is an instructor's answer key. Structure is nil until the
// template has been analyzed.
type Template struct {
	ID               string            `json:"template_id"`
	FilePath         string            `json:"file_path"`
	Filename         string            `json:"filename"`
	ExtractionPrompt string            `json:"-"`
	Structure        *ExtractionResult `json:"structure,omitempty"`
	Status           TemplateStatus    `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Submission is a student's assignment tied to exactly one template.
type Submission struct {
	ID               string            `json:"submission_id"`
	TemplateID       string            `json:"template_id"`
	FilePath         string            `json:"file_path"`
	Filename         string            `json:"filename"`
	ExtractionPrompt string            `json:"-"`
	Extracted        *ExtractionResult `json:"extracted,omitempty"`
	Grade            *Grade            `json:"grade,omitempty"`
	Status           SubmissionStatus  `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Grade is the persisted outcome of grading one submission.
type Grade struct {
	Total float64 `json:"total"`
}

// ExtractionSummary is the short view of an extraction returned to callers.
type ExtractionSummary struct {
	TotalPointsCell   string `json:"total_points_cell"`
	ItemCount         int    `json:"items_count"`
	SanityCheckPassed bool   `json:"sanity_check_passed"`
}

// Summarize builds the short view of an extraction result.
func (r *ExtractionResult) Summarize() ExtractionSummary {
	return ExtractionSummary{
		TotalPointsCell:   r.TotalPointsCell,
		ItemCount:         len(r.Items),
		SanityCheckPassed: r.SanityCheckPassed,
	}
}
