package model

import "testing"

func validRequest() AssessmentRequest {
	return AssessmentRequest{
		CurriculumStandard: "CBSE Class 10",
		LearningObjectives: "Understanding quadratic equations and their applications",
		BloomLevel:         BloomUnderstand,
		Difficulty:         DifficultyMedium,
		TotalMarks:         50,
		NumQuestions:       10,
		Distribution: map[QuestionType]float64{
			MultipleChoice: 0.5,
			ShortAnswer:    0.3,
			LongAnswer:     0.2,
		},
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AssessmentRequest)
		wantErr bool
	}{
		{"valid", func(r *AssessmentRequest) {}, false},
		{"missing standard", func(r *AssessmentRequest) { r.CurriculumStandard = "" }, true},
		{"missing objectives", func(r *AssessmentRequest) { r.LearningObjectives = "" }, true},
		{"bad bloom level", func(r *AssessmentRequest) { r.BloomLevel = "memorize" }, true},
		{"bad difficulty", func(r *AssessmentRequest) { r.Difficulty = "impossible" }, true},
		{"zero marks", func(r *AssessmentRequest) { r.TotalMarks = 0 }, true},
		{"zero questions", func(r *AssessmentRequest) { r.NumQuestions = 0 }, true},
		{"negative fraction", func(r *AssessmentRequest) {
			r.Distribution[MultipleChoice] = -0.1
			r.Distribution[ShortAnswer] = 1.1
		}, true},
		{"fractions sum below one", func(r *AssessmentRequest) {
			r.Distribution[LongAnswer] = 0.0
		}, true},
		{"fractions sum above one", func(r *AssessmentRequest) {
			r.Distribution[LongAnswer] = 0.4
		}, true},
		{"sum within tolerance", func(r *AssessmentRequest) {
			r.Distribution[MultipleChoice] = 0.33
			r.Distribution[ShortAnswer] = 0.33
			r.Distribution[LongAnswer] = 0.33
		}, false},
		{"sum at upper tolerance boundary", func(r *AssessmentRequest) {
			r.Distribution[MultipleChoice] = 0.34
			r.Distribution[ShortAnswer] = 0.33
			r.Distribution[LongAnswer] = 0.34
		}, false},
		{"marks below type minimums", func(r *AssessmentRequest) {
			// 5 MCQ + 3 short + 2 long needs at least 5*1 + 3*2 + 2*5 = 21 marks.
			r.TotalMarks = 20
		}, true},
		{"marks exactly at minimum", func(r *AssessmentRequest) {
			r.TotalMarks = 21
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestExpectedCounts(t *testing.T) {
	r := validRequest()
	counts := r.ExpectedCounts()
	if counts[MultipleChoice] != 5 || counts[ShortAnswer] != 3 || counts[LongAnswer] != 2 {
		t.Errorf("expected 5/3/2, got %d/%d/%d",
			counts[MultipleChoice], counts[ShortAnswer], counts[LongAnswer])
	}
}

func TestExpectedCountsSumToTotal(t *testing.T) {
	// Thirds of 10 round to 3+3+3; the remainder must land somewhere.
	r := validRequest()
	r.Distribution = map[QuestionType]float64{
		MultipleChoice: 0.34,
		ShortAnswer:    0.33,
		LongAnswer:     0.33,
	}
	counts := r.ExpectedCounts()
	total := 0
	for _, n := range counts {
		total += n
	}
	if total != r.NumQuestions {
		t.Errorf("counts sum to %d, want %d", total, r.NumQuestions)
	}
}

func TestMinMarksPerType(t *testing.T) {
	if MultipleChoice.MinMarks() != 1 {
		t.Errorf("MCQ minimum should be 1, got %d", MultipleChoice.MinMarks())
	}
	if ShortAnswer.MinMarks() != 2 || ShortAnswer.MaxMarks() != 5 {
		t.Errorf("short answer range should be 2-5, got %d-%d",
			ShortAnswer.MinMarks(), ShortAnswer.MaxMarks())
	}
	if LongAnswer.MinMarks() != 5 {
		t.Errorf("long answer minimum should be 5, got %d", LongAnswer.MinMarks())
	}
}
