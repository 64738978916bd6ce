package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pavelanni/grader/internal/model"
)

var batchPatterns = []string{"*.xlsx", "*.xls", "*.doc", "*.docx"}

// BatchProcess uploads and extracts every assignment file in a folder,
// one file at a time, pausing between files to respect the extraction
// service's rate limits. A failure on one file is recorded in that
// file's result entry and does not abort the rest of the batch.
func (s *Service) BatchProcess(ctx context.Context, templateID, folder string) (model.BatchResult, error) {
	var batch model.BatchResult
	if s.store == nil {
		return batch, model.ErrStoreUnavailable
	}
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return batch, fmt.Errorf("folder not found: %s", folder)
	}

	var files []string
	for _, pattern := range batchPatterns {
		matches, err := filepath.Glob(filepath.Join(folder, pattern))
		if err != nil {
			return batch, fmt.Errorf("list folder %s: %w", folder, err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	if len(files) == 0 {
		return batch, fmt.Errorf("no assignment files found in %s", folder)
	}
	batch.TotalFiles = len(files)

	for i, file := range files {
		if i > 0 {
			time.Sleep(s.cfg.BatchDelay)
		}
		name := filepath.Base(file)

		subID, err := s.UploadSubmission(ctx, templateID, file)
		if err != nil {
			slog.Warn("batch upload failed", "file", name, "error", err)
			batch.Results = append(batch.Results, model.BatchFileResult{
				File:    name,
				Status:  "upload_failed",
				Message: err.Error(),
			})
			continue
		}

		summary, err := s.ExtractSubmission(ctx, subID)
		if err != nil {
			slog.Warn("batch extraction failed", "file", name, "submission_id", subID, "error", err)
			batch.Results = append(batch.Results, model.BatchFileResult{
				File:         name,
				SubmissionID: subID,
				Status:       "error",
				Message:      err.Error(),
			})
			batch.SubmissionIDs = append(batch.SubmissionIDs, subID)
			continue
		}

		batch.Processed++
		batch.Results = append(batch.Results, model.BatchFileResult{
			File:         name,
			SubmissionID: subID,
			Status:       "success",
			ItemCount:    summary.ItemCount,
		})
		batch.SubmissionIDs = append(batch.SubmissionIDs, subID)
	}

	slog.Info("batch complete", "template_id", templateID,
		"total_files", batch.TotalFiles, "processed", batch.Processed)
	return batch, nil
}
