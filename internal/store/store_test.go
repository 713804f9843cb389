package store

import (
	"database/sql"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/classkit/assessgen/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testResult(title string) model.AssessmentResult {
	return model.AssessmentResult{
		Title:              title,
		CurriculumStandard: "CBSE Class 10",
		LearningObjectives: "Quadratic equations",
		TargetBloomLevel:   model.BloomApply,
		Questions: []model.Question{
			{
				Type:       model.ShortAnswer,
				Text:       "Solve x^2 - 4 = 0.",
				Marks:      3,
				BloomLevel: model.BloomApply,
				Difficulty: model.DifficultyMedium,
				AnswerKey:  model.AnswerKey{CorrectAnswer: "x = ±2"},
			},
		},
		Metadata: model.AssessmentMetadata{
			TotalQuestions:           1,
			TotalMarks:               3,
			DifficultyDistribution:   map[string]int{"medium": 1},
			QuestionTypeDistribution: map[string]int{"short_answer": 1},
			BloomLevelCoverage:       map[string]int{"apply": 1},
		},
		StudentInstructions: "Answer all questions.",
		GeneratedAt:         time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestInsertAndGetAssessment(t *testing.T) {
	s := newTestStore(t)

	count, err := s.AssessmentCount()
	if err != nil {
		t.Fatalf("AssessmentCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty store, got %d entries", count)
	}

	want := testResult("Algebra Test")
	id, err := s.InsertAssessment(want)
	if err != nil {
		t.Fatalf("InsertAssessment: %v", err)
	}

	entry, err := s.GetAssessment(id)
	if err != nil {
		t.Fatalf("GetAssessment: %v", err)
	}
	if entry.Title != "Algebra Test" || entry.Questions != 1 || entry.Marks != 3 {
		t.Errorf("unexpected summary %q/%d/%d", entry.Title, entry.Questions, entry.Marks)
	}
	if !reflect.DeepEqual(entry.Result, want) {
		t.Errorf("stored result differs:\ngot  %+v\nwant %+v", entry.Result, want)
	}

	_, err = s.GetAssessment(9999)
	if err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}

func TestListAssessmentsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	for i := 1; i <= 3; i++ {
		if _, err := s.InsertAssessment(testResult(fmt.Sprintf("Test %d", i))); err != nil {
			t.Fatalf("InsertAssessment: %v", err)
		}
	}

	entries, err := s.ListAssessments()
	if err != nil {
		t.Fatalf("ListAssessments: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"Test 3", "Test 2", "Test 1"} {
		if entries[i].Title != want {
			t.Errorf("entry %d = %q, want %q", i, entries[i].Title, want)
		}
	}
}

func TestExportHistory(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.InsertAssessment(testResult("Exported")); err != nil {
		t.Fatalf("InsertAssessment: %v", err)
	}

	export, err := s.ExportHistory()
	if err != nil {
		t.Fatalf("ExportHistory: %v", err)
	}
	if export.Count != 1 || len(export.Assessments) != 1 {
		t.Fatalf("expected 1 assessment in export, got %d", export.Count)
	}
	if export.Assessments[0].Title != "Exported" {
		t.Errorf("unexpected title %q", export.Assessments[0].Title)
	}
	if export.ExportedAt.IsZero() {
		t.Error("export timestamp not set")
	}
}

func TestAuthSessions(t *testing.T) {
	s := newTestStore(t)

	token, err := s.CreateAuthSession()
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if token == "" {
		t.Fatal("empty session token")
	}

	ok, err := s.ValidAuthSession(token)
	if err != nil {
		t.Fatalf("ValidAuthSession: %v", err)
	}
	if !ok {
		t.Error("fresh session should be valid")
	}

	ok, err = s.ValidAuthSession("no-such-token")
	if err != nil {
		t.Fatalf("ValidAuthSession: %v", err)
	}
	if ok {
		t.Error("unknown token should be invalid")
	}

	if err := s.DeleteAuthSession(token); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	ok, err = s.ValidAuthSession(token)
	if err != nil {
		t.Fatalf("ValidAuthSession: %v", err)
	}
	if ok {
		t.Error("deleted session should be invalid")
	}
}
