package model

// RowClass classifies one detailed report row by how much credit the
// answer earned.
type RowClass string

const (
	RowFull    RowClass = "full"    // awarded == points
	RowPartial RowClass = "partial" // 0 < awarded < points
	RowWrong   RowClass = "wrong"   // awarded == 0
	RowTotal   RowClass = "total"   // trailing per-submission total row
)

// DetailRow is one line of the detailed report: either one graded item or
// a submission's trailing total row.
type DetailRow struct {
	Filename      string   `json:"filename"`
	Question      string   `json:"question"`
	CorrectAnswer string   `json:"correct_answer"`
	StudentAnswer string   `json:"student_answer"`
	Confidence    string   `json:"confidence"`
	Reason        string   `json:"reason"`
	Awarded       float64  `json:"points_awarded"`
	Total         float64  `json:"total_points,omitempty"`
	Class         RowClass `json:"class"`
}

// SummaryRow is one line of the condensed report, one per submission.
// The list fields hold the literal "N/A" when empty; Total is rounded to
// two decimals at build time.
type SummaryRow struct {
	Filename             string  `json:"filename"`
	LowConfidence        bool    `json:"low_confidence_flag"`
	LowConfidenceAnswers string  `json:"low_confidence_answers"`
	WrongAnswers         string  `json:"wrong_answers"`
	ReasonSummary        string  `json:"reason_summary"`
	Total                float64 `json:"total_points"`
}

// SubmissionResult is the outcome of grading one submission against a key.
// Total carries the exact sum of awarded points; rounding happens only in
// the condensed summary.
type SubmissionResult struct {
	Filename             string
	Total                float64
	LowConfidence        bool
	LowConfidenceAnswers []string
	WrongAnswers         []string
	Reasons              []string // distinct, sorted
	Rows                 []DetailRow
	KeyItemCount         int
	StudentItemCount     int
}

// Report holds both projections emitted by a grading run.
type Report struct {
	Detail  []DetailRow
	Summary []SummaryRow
}

// SubmissionSummary is the list-submissions view of one stored record.
type SubmissionSummary struct {
	ID             string           `json:"submission_id"`
	TemplateID     string           `json:"template_id"`
	FilePath       string           `json:"file_path"`
	Filename       string           `json:"filename"`
	Status         SubmissionStatus `json:"status"`
	Grade          *Grade           `json:"grade,omitempty"`
	ItemsExtracted int              `json:"items_extracted"`
}

// SubmissionCounts aggregates list-submissions statuses.
type SubmissionCounts struct {
	Total     int `json:"total_submissions"`
	Graded    int `json:"graded"`
	Extracted int `json:"extracted"`
	Pending   int `json:"pending"`
}

// BatchFileResult is the per-file outcome of a batch-process run.
type BatchFileResult struct {
	File         string `json:"file"`
	SubmissionID string `json:"submission_id,omitempty"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	ItemCount    int    `json:"items_count,omitempty"`
}

// BatchResult summarizes a whole batch-process run.
type BatchResult struct {
	TotalFiles    int               `json:"total_files"`
	Processed     int               `json:"successfully_processed"`
	Results       []BatchFileResult `json:"results"`
	SubmissionIDs []string          `json:"submission_ids"`
}
