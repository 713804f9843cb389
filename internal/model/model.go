package model

import (
	"fmt"
	"math"
	"time"
)

// BloomLevel is a Bloom's taxonomy cognitive level.
type BloomLevel string

const (
	BloomRemember   BloomLevel = "remember"
	BloomUnderstand BloomLevel = "understand"
	BloomApply      BloomLevel = "apply"
	BloomAnalyze    BloomLevel = "analyze"
	BloomEvaluate   BloomLevel = "evaluate"
	BloomCreate     BloomLevel = "create"
)

// BloomLevels lists all levels in taxonomy order, for form rendering and validation.
var BloomLevels = []BloomLevel{
	BloomRemember, BloomUnderstand, BloomApply, BloomAnalyze, BloomEvaluate, BloomCreate,
}

// Valid reports whether the level is a known taxonomy level.
func (b BloomLevel) Valid() bool {
	for _, l := range BloomLevels {
		if b == l {
			return true
		}
	}
	return false
}

// Difficulty represents the overall assessment difficulty.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyVeryHard Difficulty = "very_hard"
)

// Difficulties lists all difficulty levels in ascending order.
var Difficulties = []Difficulty{
	DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyVeryHard,
}

// Valid reports whether the difficulty is known.
func (d Difficulty) Valid() bool {
	for _, v := range Difficulties {
		if d == v {
			return true
		}
	}
	return false
}

// QuestionType represents the format of an assessment question.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	ShortAnswer    QuestionType = "short_answer"
	LongAnswer     QuestionType = "long_answer"
)

// QuestionTypes lists all question types in display order.
var QuestionTypes = []QuestionType{MultipleChoice, ShortAnswer, LongAnswer}

// MinMarks returns the minimum marks a question of this type may carry.
func (t QuestionType) MinMarks() int {
	switch t {
	case ShortAnswer:
		return 2
	case LongAnswer:
		return 5
	default:
		return 1
	}
}

// MaxMarks returns the maximum marks a question of this type may carry,
// or 0 if unbounded.
func (t QuestionType) MaxMarks() int {
	if t == ShortAnswer {
		return 5
	}
	return 0
}

// distributionTolerance is the allowed deviation when checking that the
// question-type fractions sum to 1.0.
const distributionTolerance = 0.01

// AssessmentRequest holds the parameters for generating an assessment.
type AssessmentRequest struct {
	CurriculumStandard string                   `json:"curriculum_standard"`
	LearningObjectives string                   `json:"learning_objectives"`
	BloomLevel         BloomLevel               `json:"blooms_taxonomy_level"`
	Difficulty         Difficulty               `json:"toughness_level"`
	TotalMarks         int                      `json:"total_marks"`
	NumQuestions       int                      `json:"number_of_questions"`
	Distribution       map[QuestionType]float64 `json:"question_type_distribution"`
	AdditionalPrompts  string                   `json:"additional_prompts,omitempty"`
}

// ExpectedCounts converts the fractional distribution into per-type question
// counts for NumQuestions questions. Rounding remainders go to the type with
// the largest fraction so the counts always sum to NumQuestions.
func (r AssessmentRequest) ExpectedCounts() map[QuestionType]int {
	counts := make(map[QuestionType]int, len(QuestionTypes))
	assigned := 0
	largest := QuestionTypes[0]
	for _, t := range QuestionTypes {
		n := int(math.Round(r.Distribution[t] * float64(r.NumQuestions)))
		counts[t] = n
		assigned += n
		if r.Distribution[t] > r.Distribution[largest] {
			largest = t
		}
	}
	counts[largest] += r.NumQuestions - assigned
	return counts
}

// minimalMarks returns the smallest total the per-question minimums allow
// for the expected per-type counts.
func (r AssessmentRequest) minimalMarks() int {
	total := 0
	for t, n := range r.ExpectedCounts() {
		total += n * t.MinMarks()
	}
	return total
}

// Validate checks the request invariants before any prompt is built.
func (r AssessmentRequest) Validate() error {
	if r.CurriculumStandard == "" {
		return fmt.Errorf("curriculum standard is required")
	}
	if r.LearningObjectives == "" {
		return fmt.Errorf("learning objectives are required")
	}
	if !r.BloomLevel.Valid() {
		return fmt.Errorf("unknown Bloom's taxonomy level %q", r.BloomLevel)
	}
	if !r.Difficulty.Valid() {
		return fmt.Errorf("unknown difficulty level %q", r.Difficulty)
	}
	if r.TotalMarks < 1 {
		return fmt.Errorf("total marks must be positive, got %d", r.TotalMarks)
	}
	if r.NumQuestions < 1 {
		return fmt.Errorf("number of questions must be positive, got %d", r.NumQuestions)
	}

	sum := 0.0
	for _, t := range QuestionTypes {
		f := r.Distribution[t]
		if f < 0 {
			return fmt.Errorf("%s fraction must be non-negative, got %.2f", t, f)
		}
		sum += f
	}
	// The small epsilon keeps exact-boundary sums like 0.33*3 inside the
	// tolerance despite float accumulation error.
	if math.Abs(sum-1.0) > distributionTolerance+1e-9 {
		return fmt.Errorf("question type fractions must sum to 1.0, got %.2f", sum)
	}

	if min := r.minimalMarks(); r.TotalMarks < min {
		return fmt.Errorf("total marks %d is below the minimum %d required by the question mix",
			r.TotalMarks, min)
	}
	return nil
}

// MCQOption is one choice in a multiple-choice question.
type MCQOption struct {
	OptionID  string `json:"option_id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// AnswerKey holds the marking guide for a question.
type AnswerKey struct {
	CorrectAnswer   string   `json:"correct_answer,omitempty"`
	Explanation     string   `json:"explanation,omitempty"`
	MarkingCriteria string   `json:"marking_criteria,omitempty"`
	KeyPoints       []string `json:"key_points,omitempty"`
}

// Question is a single generated assessment question.
type Question struct {
	Type       QuestionType `json:"question_type"`
	Text       string       `json:"question_text"`
	Marks      int          `json:"marks"`
	BloomLevel BloomLevel   `json:"blooms_level"`
	Difficulty Difficulty   `json:"difficulty"`
	Options    []MCQOption  `json:"options,omitempty"`
	AnswerKey  AnswerKey    `json:"answer_key"`

	LearningObjectiveCovered string `json:"learning_objective_covered,omitempty"`
	EstimatedTimeMinutes     int    `json:"estimated_time_minutes,omitempty"`
}

// AssessmentMetadata holds aggregate statistics about a generated assessment.
type AssessmentMetadata struct {
	TotalQuestions           int            `json:"total_questions"`
	TotalMarks               int            `json:"total_marks"`
	EstimatedDurationMinutes int            `json:"estimated_duration_minutes,omitempty"`
	DifficultyDistribution   map[string]int `json:"difficulty_distribution"`
	QuestionTypeDistribution map[string]int `json:"question_type_distribution"`
	BloomLevelCoverage       map[string]int `json:"blooms_level_coverage"`
}

// AssessmentResult is a complete generated assessment. Once validated and
// stored it is never mutated.
type AssessmentResult struct {
	Title               string             `json:"title"`
	Description         string             `json:"description,omitempty"`
	CurriculumStandard  string             `json:"curriculum_standard"`
	LearningObjectives  string             `json:"learning_objectives"`
	TargetBloomLevel    BloomLevel         `json:"target_blooms_level"`
	Questions           []Question         `json:"questions"`
	Metadata            AssessmentMetadata `json:"metadata"`
	StudentInstructions string             `json:"student_instructions"`
	TeacherNotes        string             `json:"teacher_notes,omitempty"`
	GeneratedAt         time.Time          `json:"generated_at"`
}

// HistoryEntry is a stored assessment with its database identity.
type HistoryEntry struct {
	ID        int64            `json:"id"`
	Title     string           `json:"title"`
	Standard  string           `json:"curriculum_standard"`
	Questions int              `json:"questions"`
	Marks     int              `json:"marks"`
	CreatedAt time.Time        `json:"created_at"`
	Result    AssessmentResult `json:"result"`
}

// AppConfig holds runtime parameters set via CLI flags. Built once at startup
// and read-only afterwards, so it may be shared across sessions without locking.
type AppConfig struct {
	Addr          string
	DBPath        string
	LLMURL        string
	LLMKey        string
	LLMModel      string
	LLMTimeout    time.Duration
	LLMRetries    int
	UIPassword    string // empty disables login
	SecureCookies bool
	Lang          string
}
