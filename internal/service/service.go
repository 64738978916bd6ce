// Package service implements the grading operations and drives each
// template and submission through its lifecycle:
// template saved -> structure analyzed, and
// pending extraction -> extracted -> graded.
// Every transition persists the full record; last write wins.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/grader/internal/extract"
	"github.com/pavelanni/grader/internal/grader"
	"github.com/pavelanni/grader/internal/llm/prompts"
	"github.com/pavelanni/grader/internal/model"
	"github.com/pavelanni/grader/internal/report"
	"github.com/pavelanni/grader/internal/store"
)

// LLM is the extraction collaborator: prompt in, raw model text out.
type LLM interface {
	Extract(ctx context.Context, prompt string) (string, error)
}

// Config holds runtime service parameters.
type Config struct {
	ReportDir   string             // directory for grading reports
	BatchDelay  time.Duration      // pause between batch files (rate limiting)
	MatchPolicy grader.MatchPolicy // low-confidence heuristic, nil = default
}

// Service executes grading operations against injected collaborators.
// A nil store or LLM leaves the corresponding operations failing with
// ErrStoreUnavailable / ErrExtractionService instead of crashing.
type Service struct {
	store *store.Store
	llm   LLM
	cfg   Config
}

func New(st *store.Store, llm LLM, cfg Config) *Service {
	if cfg.BatchDelay == 0 {
		cfg.BatchDelay = 1500 * time.Millisecond
	}
	if cfg.MatchPolicy == nil {
		cfg.MatchPolicy = grader.PrefixMatchPolicy
	}
	return &Service{store: st, llm: llm, cfg: cfg}
}

// SaveTemplate reads an answer key file, builds its extraction prompt,
// and persists the template. Returns the new template id.
func (s *Service) SaveTemplate(ctx context.Context, filePath string) (string, error) {
	if s.store == nil {
		return "", model.ErrStoreUnavailable
	}
	text, err := extract.ReadToText(filePath)
	if err != nil {
		return "", err
	}
	prompt, err := prompts.ForFile(filePath, text)
	if err != nil {
		return "", err
	}

	now := time.Now()
	t := model.Template{
		ID:               uuid.NewString(),
		FilePath:         filePath,
		Filename:         filepath.Base(filePath),
		ExtractionPrompt: prompt,
		Status:           model.TemplateSaved,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.PutTemplate(t); err != nil {
		return "", fmt.Errorf("save template: %w", err)
	}
	slog.Info("template saved", "template_id", t.ID, "file", t.Filename)
	return t.ID, nil
}

// AnalyzeTemplate runs the extraction on a saved template's prompt and
// stores the normalized structure, advancing the template to analyzed.
func (s *Service) AnalyzeTemplate(ctx context.Context, templateID string) (model.ExtractionSummary, error) {
	var summary model.ExtractionSummary
	if s.store == nil {
		return summary, model.ErrStoreUnavailable
	}
	if s.llm == nil {
		return summary, model.ErrExtractionService
	}

	t, err := s.store.GetTemplate(templateID)
	if err != nil {
		return summary, err
	}
	result, err := s.runExtraction(ctx, t.ExtractionPrompt)
	if err != nil {
		return summary, err
	}

	t.Structure = result
	t.Status = model.TemplateAnalyzed
	t.UpdatedAt = time.Now()
	if err := s.store.PutTemplate(t); err != nil {
		return summary, fmt.Errorf("store analyzed template: %w", err)
	}

	summary = result.Summarize()
	slog.Info("template analyzed",
		"template_id", t.ID, "items", summary.ItemCount, "sanity_check", summary.SanityCheckPassed)
	return summary, nil
}

// UploadSubmission registers a student file against an analyzed or saved
// template. The submission's extraction prompt reuses the template's
// prompt with the data section swapped for the student's document text.
func (s *Service) UploadSubmission(ctx context.Context, templateID, filePath string) (string, error) {
	if s.store == nil {
		return "", model.ErrStoreUnavailable
	}
	t, err := s.store.GetTemplate(templateID)
	if err != nil {
		return "", err
	}
	if t.ExtractionPrompt == "" {
		return "", fmt.Errorf("template %s has no extraction prompt", templateID)
	}

	text, err := extract.ReadToText(filePath)
	if err != nil {
		return "", err
	}

	now := time.Now()
	sub := model.Submission{
		ID:               uuid.NewString(),
		TemplateID:       templateID,
		FilePath:         filePath,
		Filename:         filepath.Base(filePath),
		ExtractionPrompt: prompts.SwapData(t.ExtractionPrompt, text),
		Status:           model.SubmissionPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.PutSubmission(sub); err != nil {
		return "", fmt.Errorf("save submission: %w", err)
	}
	slog.Info("submission uploaded", "submission_id", sub.ID, "template_id", templateID, "file", sub.Filename)
	return sub.ID, nil
}

// ExtractSubmission runs the extraction on an uploaded submission and
// stores the normalized items, advancing the submission to extracted.
func (s *Service) ExtractSubmission(ctx context.Context, submissionID string) (model.ExtractionSummary, error) {
	var summary model.ExtractionSummary
	if s.store == nil {
		return summary, model.ErrStoreUnavailable
	}
	if s.llm == nil {
		return summary, model.ErrExtractionService
	}

	sub, err := s.store.GetSubmission(submissionID)
	if err != nil {
		return summary, err
	}
	result, err := s.runExtraction(ctx, sub.ExtractionPrompt)
	if err != nil {
		return summary, err
	}

	sub.Extracted = result
	sub.Status = model.SubmissionExtracted
	sub.UpdatedAt = time.Now()
	if err := s.store.PutSubmission(sub); err != nil {
		return summary, fmt.Errorf("store extracted submission: %w", err)
	}

	summary = result.Summarize()
	slog.Info("submission extracted", "submission_id", sub.ID, "items", summary.ItemCount)
	return summary, nil
}

// GradeAll grades every extracted submission of a template against its
// analyzed structure, persists each grade, and writes the report
// workbook. Returns the report path. Grading the same data twice
// overwrites grades with identical values.
func (s *Service) GradeAll(ctx context.Context, templateID string) (string, error) {
	if s.store == nil {
		return "", model.ErrStoreUnavailable
	}
	t, err := s.store.GetTemplate(templateID)
	if err != nil {
		return "", err
	}
	if t.Structure == nil || len(t.Structure.Items) == 0 {
		return "", fmt.Errorf("template %s: %w", templateID, model.ErrNoStructure)
	}
	keyItems := t.Structure.Items

	subs, err := s.store.AllSubmissions()
	if err != nil {
		return "", fmt.Errorf("scan submissions: %w", err)
	}
	var extracted []model.Submission
	for _, sub := range subs {
		if sub.TemplateID != templateID {
			continue
		}
		// Graded submissions stay eligible so a rerun overwrites each
		// grade with the same value.
		if sub.Status == model.SubmissionExtracted || sub.Status == model.SubmissionGraded {
			extracted = append(extracted, sub)
		}
	}
	if len(extracted) == 0 {
		return "", fmt.Errorf("template %s: %w", templateID, model.ErrNoSubmissions)
	}

	var results []model.SubmissionResult
	for _, sub := range extracted {
		if sub.Extracted == nil || len(sub.Extracted.Items) == 0 {
			slog.Warn("skipping submission with no extracted items", "submission_id", sub.ID)
			continue
		}
		res := grader.GradeSubmission(keyItems, sub.Extracted.Items, sub.Filename, s.cfg.MatchPolicy)
		if res.KeyItemCount != res.StudentItemCount {
			slog.Warn("item count mismatch",
				"submission_id", sub.ID, "key_items", res.KeyItemCount, "student_items", res.StudentItemCount)
		}
		results = append(results, res)

		sub.Grade = &model.Grade{Total: res.Total}
		sub.Status = model.SubmissionGraded
		sub.UpdatedAt = time.Now()
		if err := s.store.PutSubmission(sub); err != nil {
			return "", fmt.Errorf("store grade for %s: %w", sub.ID, err)
		}
	}

	rep := grader.BuildReport(results)
	path := filepath.Join(s.cfg.ReportDir, fmt.Sprintf("grading_results_%s.xlsx", templateID))
	if err := report.Write(path, rep); err != nil {
		return "", err
	}
	slog.Info("grading complete", "template_id", templateID, "submissions", len(results), "report", path)
	return path, nil
}

// ListSubmissions returns one summary per stored submission plus
// aggregate status counts.
func (s *Service) ListSubmissions(ctx context.Context) ([]model.SubmissionSummary, model.SubmissionCounts, error) {
	var counts model.SubmissionCounts
	if s.store == nil {
		return nil, counts, model.ErrStoreUnavailable
	}
	subs, err := s.store.AllSubmissions()
	if err != nil {
		return nil, counts, fmt.Errorf("scan submissions: %w", err)
	}

	summaries := make([]model.SubmissionSummary, 0, len(subs))
	for _, sub := range subs {
		itemCount := 0
		if sub.Extracted != nil {
			itemCount = len(sub.Extracted.Items)
		}
		summaries = append(summaries, model.SubmissionSummary{
			ID:             sub.ID,
			TemplateID:     sub.TemplateID,
			FilePath:       sub.FilePath,
			Filename:       sub.Filename,
			Status:         sub.Status,
			Grade:          sub.Grade,
			ItemsExtracted: itemCount,
		})
		counts.Total++
		switch sub.Status {
		case model.SubmissionGraded:
			counts.Graded++
		case model.SubmissionExtracted:
			counts.Extracted++
		case model.SubmissionPending:
			counts.Pending++
		}
	}
	return summaries, counts, nil
}

func (s *Service) runExtraction(ctx context.Context, prompt string) (*model.ExtractionResult, error) {
	raw, err := s.llm.Extract(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return grader.ParseExtraction(raw)
}
