package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"

	"github.com/classkit/assessgen/internal/model"
)

//go:embed templates/*.txt
var templateFS embed.FS

var instructionTagRegex = regexp.MustCompile(`(?i)</?\s*(system|assistant|instructions?)\b[^>]*>`)

// maxFreeTextRunes caps teacher-supplied free text before it enters the prompt.
const maxFreeTextRunes = 4000

var (
	loadOnce       sync.Once
	loadErr        error
	assessmentTmpl *template.Template
)

// TemplateError reports that the prompt could not be built.
type TemplateError struct {
	Name string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("prompt template %s: %v", e.Name, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// promptData is the flattened view of an AssessmentRequest handed to the template.
type promptData struct {
	CurriculumStandard string
	LearningObjectives string
	BloomLevel         string
	Difficulty         string
	TotalMarks         int
	NumQuestions       int
	MCQCount           int
	ShortCount         int
	LongCount          int
	MCQPercent         int
	ShortPercent       int
	LongPercent        int
	AdditionalPrompts  string
}

func load() error {
	loadOnce.Do(func() {
		content, err := templateFS.ReadFile("templates/assessment.txt")
		if err != nil {
			loadErr = fmt.Errorf("read prompt template: %w", err)
			return
		}
		assessmentTmpl, loadErr = template.New("assessment").Parse(string(content))
	})
	return loadErr
}

// Build renders the generation prompt for a validated request. It is a pure
// function: the same request always yields the same prompt.
func Build(req model.AssessmentRequest) (string, error) {
	if err := load(); err != nil {
		return "", &TemplateError{Name: "assessment", Err: err}
	}

	counts := req.ExpectedCounts()
	data := promptData{
		CurriculumStandard: sanitize(req.CurriculumStandard),
		LearningObjectives: sanitize(req.LearningObjectives),
		BloomLevel:         string(req.BloomLevel),
		Difficulty:         string(req.Difficulty),
		TotalMarks:         req.TotalMarks,
		NumQuestions:       req.NumQuestions,
		MCQCount:           counts[model.MultipleChoice],
		ShortCount:         counts[model.ShortAnswer],
		LongCount:          counts[model.LongAnswer],
		MCQPercent:         percent(req.Distribution[model.MultipleChoice]),
		ShortPercent:       percent(req.Distribution[model.ShortAnswer]),
		LongPercent:        percent(req.Distribution[model.LongAnswer]),
		AdditionalPrompts:  sanitize(req.AdditionalPrompts),
	}

	var buf bytes.Buffer
	if err := assessmentTmpl.Execute(&buf, data); err != nil {
		return "", &TemplateError{Name: "assessment", Err: err}
	}
	return buf.String(), nil
}

func percent(fraction float64) int {
	return int(math.Round(fraction * 100))
}

// sanitize strips prompt-injection style tags from teacher-supplied free text
// and caps its length.
func sanitize(text string) string {
	text = instructionTagRegex.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > maxFreeTextRunes {
		runes := []rune(text)
		text = string(runes[:maxFreeTextRunes])
	}
	return text
}
