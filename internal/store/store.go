package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pavelanni/grader/internal/model"

	_ "modernc.org/sqlite"
)

// Store persists templates and submissions. Writes are full-record
// overwrites: last write wins.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS templates (
		id TEXT PRIMARY KEY,
		file_path TEXT NOT NULL,
		filename TEXT NOT NULL,
		extraction_prompt TEXT NOT NULL DEFAULT '',
		structure TEXT,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		template_id TEXT NOT NULL,
		file_path TEXT NOT NULL,
		filename TEXT NOT NULL,
		extraction_prompt TEXT NOT NULL DEFAULT '',
		extracted TEXT,
		grade TEXT,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// PutTemplate writes the full template record, overwriting any previous
// version under the same id.
func (s *Store) PutTemplate(t model.Template) error {
	structure, err := marshalNullable(t.Structure)
	if err != nil {
		return fmt.Errorf("encode structure: %w", err)
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = time.Now()
	}
	_, err = s.db.Exec(
		`INSERT INTO templates (id, file_path, filename, extraction_prompt, structure, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			file_path = excluded.file_path,
			filename = excluded.filename,
			extraction_prompt = excluded.extraction_prompt,
			structure = excluded.structure,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		t.ID, t.FilePath, t.Filename, t.ExtractionPrompt, structure, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// GetTemplate returns a template by id, or ErrNotFound.
func (s *Store) GetTemplate(id string) (model.Template, error) {
	var t model.Template
	var structure sql.NullString
	err := s.db.QueryRow(
		`SELECT id, file_path, filename, extraction_prompt, structure, status, created_at, updated_at
		 FROM templates WHERE id = ?`, id,
	).Scan(&t.ID, &t.FilePath, &t.Filename, &t.ExtractionPrompt, &structure, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return t, fmt.Errorf("template %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return t, err
	}
	if err := unmarshalNullable(structure, &t.Structure); err != nil {
		return t, fmt.Errorf("decode structure: %w", err)
	}
	return t, nil
}

// PutSubmission writes the full submission record, overwriting any
// previous version under the same id.
func (s *Store) PutSubmission(sub model.Submission) error {
	extracted, err := marshalNullable(sub.Extracted)
	if err != nil {
		return fmt.Errorf("encode extracted data: %w", err)
	}
	grade, err := marshalNullable(sub.Grade)
	if err != nil {
		return fmt.Errorf("encode grade: %w", err)
	}
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = time.Now()
	}
	_, err = s.db.Exec(
		`INSERT INTO submissions (id, template_id, file_path, filename, extraction_prompt, extracted, grade, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			template_id = excluded.template_id,
			file_path = excluded.file_path,
			filename = excluded.filename,
			extraction_prompt = excluded.extraction_prompt,
			extracted = excluded.extracted,
			grade = excluded.grade,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		sub.ID, sub.TemplateID, sub.FilePath, sub.Filename, sub.ExtractionPrompt,
		extracted, grade, sub.Status, sub.CreatedAt, sub.UpdatedAt,
	)
	return err
}

// GetSubmission returns a submission by id, or ErrNotFound.
func (s *Store) GetSubmission(id string) (model.Submission, error) {
	row := s.db.QueryRow(
		`SELECT id, template_id, file_path, filename, extraction_prompt, extracted, grade, status, created_at, updated_at
		 FROM submissions WHERE id = ?`, id,
	)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return sub, fmt.Errorf("submission %s: %w", id, model.ErrNotFound)
	}
	return sub, err
}

// ScanSubmissions returns one page of submissions in insertion order.
// The returned token continues the scan; an empty token means the scan
// is complete.
func (s *Store) ScanSubmissions(token string, limit int) ([]model.Submission, string, error) {
	after := int64(0)
	if token != "" {
		var err error
		after, err = strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, "", fmt.Errorf("bad scan token %q: %w", token, err)
		}
	}
	rows, err := s.db.Query(
		`SELECT rowid, id, template_id, file_path, filename, extraction_prompt, extracted, grade, status, created_at, updated_at
		 FROM submissions WHERE rowid > ? ORDER BY rowid LIMIT ?`, after, limit,
	)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var subs []model.Submission
	var lastRow int64
	for rows.Next() {
		sub, rowid, err := scanSubmissionWithRowid(rows)
		if err != nil {
			return nil, "", err
		}
		subs = append(subs, sub)
		lastRow = rowid
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	if len(subs) < limit {
		return subs, "", nil
	}
	return subs, strconv.FormatInt(lastRow, 10), nil
}

// AllSubmissions drains the paginated scan.
func (s *Store) AllSubmissions() ([]model.Submission, error) {
	var all []model.Submission
	token := ""
	for {
		page, next, err := s.ScanSubmissions(token, 100)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == "" {
			return all, nil
		}
		token = next
	}
}

// SubmissionCount returns the number of stored submissions.
func (s *Store) SubmissionCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM submissions`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (model.Submission, error) {
	var sub model.Submission
	var extracted, grade sql.NullString
	err := row.Scan(&sub.ID, &sub.TemplateID, &sub.FilePath, &sub.Filename, &sub.ExtractionPrompt,
		&extracted, &grade, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return sub, err
	}
	if err := unmarshalNullable(extracted, &sub.Extracted); err != nil {
		return sub, fmt.Errorf("decode extracted data: %w", err)
	}
	if err := unmarshalNullable(grade, &sub.Grade); err != nil {
		return sub, fmt.Errorf("decode grade: %w", err)
	}
	return sub, nil
}

func scanSubmissionWithRowid(row rowScanner) (model.Submission, int64, error) {
	var sub model.Submission
	var rowid int64
	var extracted, grade sql.NullString
	err := row.Scan(&rowid, &sub.ID, &sub.TemplateID, &sub.FilePath, &sub.Filename, &sub.ExtractionPrompt,
		&extracted, &grade, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return sub, 0, err
	}
	if err := unmarshalNullable(extracted, &sub.Extracted); err != nil {
		return sub, 0, fmt.Errorf("decode extracted data: %w", err)
	}
	if err := unmarshalNullable(grade, &sub.Grade); err != nil {
		return sub, 0, fmt.Errorf("decode grade: %w", err)
	}
	return sub, rowid, nil
}

func marshalNullable[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalNullable[T any](col sql.NullString, dst **T) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	var v T
	if err := json.Unmarshal([]byte(col.String), &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}
