package model

import "errors"

// Failure taxonomy surfaced at the operation boundary. Callers classify
// with errors.Is; wrapped messages carry the human-readable detail.
var (
	// ErrNotFound means an unknown template or submission id.
	ErrNotFound = errors.New("not found")
	// ErrMalformedExtraction means the extraction output could not be
	// parsed into the expected shape.
	ErrMalformedExtraction = errors.New("malformed extraction output")
	// ErrUnsupportedFormat means the file extension is not recognized.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoStructure means the template has not been analyzed yet.
	ErrNoStructure = errors.New("template has no analyzed structure")
	// ErrNoSubmissions means grading found no extracted submissions.
	ErrNoSubmissions = errors.New("no extracted submissions")
	// ErrStoreUnavailable means the persistence collaborator is not
	// initialized or reachable.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrExtractionService means the LLM collaborator is unreachable or
	// returned empty content.
	ErrExtractionService = errors.New("extraction service unavailable")
)
