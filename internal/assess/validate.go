package assess

import (
	"fmt"
	"time"

	"github.com/classkit/assessgen/internal/model"
)

// countTolerance is the allowed deviation, per question type, between the
// generated count and the count implied by the requested distribution.
const countTolerance = 1

// Validate checks a decoded result against the request it was generated for.
// A mismatch is reported, never silently fixed.
func Validate(result *model.AssessmentResult, req model.AssessmentRequest) error {
	if len(result.Questions) == 0 {
		return &ValidationError{
			Constraint: ConstraintStructure,
			Message:    "result contains no questions",
		}
	}

	marksTotal := 0
	counts := make(map[model.QuestionType]int)
	for i, q := range result.Questions {
		n := i + 1
		if err := validateQuestion(n, q); err != nil {
			return err
		}
		marksTotal += q.Marks
		counts[q.Type]++
	}

	if marksTotal != req.TotalMarks {
		return &ValidationError{
			Constraint: ConstraintMarksTotal,
			Message: fmt.Sprintf("question marks sum to %d but the request asked for %d",
				marksTotal, req.TotalMarks),
		}
	}

	expected := req.ExpectedCounts()
	for _, t := range model.QuestionTypes {
		diff := counts[t] - expected[t]
		if diff < -countTolerance || diff > countTolerance {
			return &ValidationError{
				Constraint: ConstraintTypeDistribution,
				Message: fmt.Sprintf("got %d %s questions, expected %d (±%d)",
					counts[t], t, expected[t], countTolerance),
			}
		}
	}

	return nil
}

func validateQuestion(n int, q model.Question) error {
	switch q.Type {
	case model.MultipleChoice, model.ShortAnswer, model.LongAnswer:
	default:
		return &ValidationError{
			Constraint: ConstraintStructure,
			Message:    fmt.Sprintf("question %d has unknown type %q", n, q.Type),
		}
	}

	if q.Text == "" {
		return &ValidationError{
			Constraint: ConstraintStructure,
			Message:    fmt.Sprintf("question %d has no text", n),
		}
	}

	if q.Marks < q.Type.MinMarks() {
		return &ValidationError{
			Constraint: ConstraintQuestionMarks,
			Message: fmt.Sprintf("question %d (%s) carries %d marks, minimum is %d",
				n, q.Type, q.Marks, q.Type.MinMarks()),
		}
	}
	if max := q.Type.MaxMarks(); max > 0 && q.Marks > max {
		return &ValidationError{
			Constraint: ConstraintQuestionMarks,
			Message: fmt.Sprintf("question %d (%s) carries %d marks, maximum is %d",
				n, q.Type, q.Marks, max),
		}
	}

	if q.Type == model.MultipleChoice {
		if len(q.Options) != 4 {
			return &ValidationError{
				Constraint: ConstraintMCQOptions,
				Message: fmt.Sprintf("question %d has %d options, multiple choice requires exactly 4",
					n, len(q.Options)),
			}
		}
		correct := 0
		for _, opt := range q.Options {
			if opt.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return &ValidationError{
				Constraint: ConstraintMCQOptions,
				Message: fmt.Sprintf("question %d has %d options marked correct, multiple choice requires exactly 1",
					n, correct),
			}
		}
	}

	return nil
}

// Normalize recomputes the metadata aggregates from the validated questions
// and stamps the generation time. It never changes questions or marks.
func Normalize(result *model.AssessmentResult, now time.Time) {
	meta := model.AssessmentMetadata{
		TotalQuestions:           len(result.Questions),
		DifficultyDistribution:   make(map[string]int),
		QuestionTypeDistribution: make(map[string]int),
		BloomLevelCoverage:       make(map[string]int),
	}

	duration := 0
	for _, q := range result.Questions {
		meta.TotalMarks += q.Marks
		meta.QuestionTypeDistribution[string(q.Type)]++
		meta.DifficultyDistribution[string(q.Difficulty)]++
		meta.BloomLevelCoverage[string(q.BloomLevel)]++
		duration += q.EstimatedTimeMinutes
	}
	if duration > 0 {
		meta.EstimatedDurationMinutes = duration
	} else {
		meta.EstimatedDurationMinutes = result.Metadata.EstimatedDurationMinutes
	}

	result.Metadata = meta
	result.GeneratedAt = now.UTC().Truncate(time.Second)
}
