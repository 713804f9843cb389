package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/classkit/assessgen/internal/model"

	_ "modernc.org/sqlite"
)

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
	CREATE TABLE IF NOT EXISTS assessments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		curriculum_standard TEXT NOT NULL,
		num_questions INTEGER NOT NULL,
		total_marks INTEGER NOT NULL,
		result_json TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// InsertAssessment appends a generated assessment to the history. History is
// append-only; there is no update or delete.
func (s *Store) InsertAssessment(result model.AssessmentResult) (int64, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("marshal result: %w", err)
	}
	res, err := s.db.Exec(
		`INSERT INTO assessments (title, curriculum_standard, num_questions, total_marks, result_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		result.Title, result.CurriculumStandard, len(result.Questions),
		result.Metadata.TotalMarks, string(data), result.GeneratedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetAssessment returns one stored assessment by ID.
func (s *Store) GetAssessment(id int64) (model.HistoryEntry, error) {
	var entry model.HistoryEntry
	var resultJSON string
	err := s.db.QueryRow(
		`SELECT id, title, curriculum_standard, num_questions, total_marks, result_json, created_at
		 FROM assessments WHERE id = ?`, id,
	).Scan(&entry.ID, &entry.Title, &entry.Standard, &entry.Questions, &entry.Marks, &resultJSON, &entry.CreatedAt)
	if err != nil {
		return entry, err
	}
	if err := json.Unmarshal([]byte(resultJSON), &entry.Result); err != nil {
		return entry, fmt.Errorf("decode stored result %d: %w", id, err)
	}
	return entry, nil
}

// ListAssessments returns all stored assessments, newest first.
func (s *Store) ListAssessments() ([]model.HistoryEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, title, curriculum_standard, num_questions, total_marks, result_json, created_at
		 FROM assessments ORDER BY id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		var entry model.HistoryEntry
		var resultJSON string
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.Standard, &entry.Questions,
			&entry.Marks, &resultJSON, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(resultJSON), &entry.Result); err != nil {
			return nil, fmt.Errorf("decode stored result %d: %w", entry.ID, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// AssessmentCount returns the number of stored assessments.
func (s *Store) AssessmentCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM assessments`).Scan(&count)
	return count, err
}

// ExportHistory builds the full history export document.
func (s *Store) ExportHistory() (model.HistoryExport, error) {
	entries, err := s.ListAssessments()
	if err != nil {
		return model.HistoryExport{}, fmt.Errorf("list assessments: %w", err)
	}
	return model.HistoryExport{
		ExportedAt:  time.Now().UTC().Truncate(time.Second),
		Count:       len(entries),
		Assessments: entries,
	}, nil
}
