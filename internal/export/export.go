// Package export renders a validated assessment for download. Both renderers
// are pure and deterministic; the JSON form round-trips back to an equivalent
// result.
package export

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/classkit/assessgen/internal/model"
)

// ToJSON renders the assessment as an indented JSON document.
func ToJSON(result model.AssessmentResult) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal assessment: %w", err)
	}
	return data, nil
}

// DecodeJSON is the inverse of ToJSON.
func DecodeJSON(data []byte) (model.AssessmentResult, error) {
	var result model.AssessmentResult
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("decode assessment: %w", err)
	}
	return result, nil
}

// ToText renders the assessment as a human-readable plain-text document:
// a header block, student instructions, numbered questions, then a labeled
// answer key section.
func ToText(result model.AssessmentResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "ASSESSMENT: %s\n", result.Title)
	sb.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&sb, "Curriculum Standard: %s\n", result.CurriculumStandard)
	fmt.Fprintf(&sb, "Learning Objectives: %s\n", result.LearningObjectives)
	fmt.Fprintf(&sb, "Target Bloom's Level: %s\n", result.TargetBloomLevel)
	fmt.Fprintf(&sb, "Total Questions: %d\n", result.Metadata.TotalQuestions)
	fmt.Fprintf(&sb, "Total Marks: %d\n", result.Metadata.TotalMarks)
	if result.Metadata.EstimatedDurationMinutes > 0 {
		fmt.Fprintf(&sb, "Estimated Duration: %d minutes\n", result.Metadata.EstimatedDurationMinutes)
	}
	sb.WriteString("\n")

	sb.WriteString("STUDENT INSTRUCTIONS:\n")
	sb.WriteString(strings.Repeat("-", 20) + "\n")
	sb.WriteString(result.StudentInstructions + "\n\n")

	if result.TeacherNotes != "" {
		sb.WriteString("TEACHER NOTES:\n")
		sb.WriteString(strings.Repeat("-", 14) + "\n")
		sb.WriteString(result.TeacherNotes + "\n\n")
	}

	sb.WriteString("QUESTIONS:\n")
	sb.WriteString(strings.Repeat("-", 10) + "\n")
	for i, q := range result.Questions {
		fmt.Fprintf(&sb, "\nQ%d. %s [%d marks]\n", i+1, q.Text, q.Marks)
		for _, opt := range q.Options {
			fmt.Fprintf(&sb, "   %s. %s\n", opt.OptionID, opt.Text)
		}
	}

	sb.WriteString("\n\nANSWER KEY:\n")
	sb.WriteString(strings.Repeat("-", 11) + "\n")
	for i, q := range result.Questions {
		fmt.Fprintf(&sb, "\nQ%d Answer:\n", i+1)
		key := q.AnswerKey
		if q.Type == model.MultipleChoice && key.CorrectAnswer == "" {
			for _, opt := range q.Options {
				if opt.IsCorrect {
					key.CorrectAnswer = opt.OptionID
				}
			}
		}
		if key.CorrectAnswer != "" {
			fmt.Fprintf(&sb, "   %s\n", key.CorrectAnswer)
		}
		if key.Explanation != "" {
			fmt.Fprintf(&sb, "   Explanation: %s\n", key.Explanation)
		}
		if key.MarkingCriteria != "" {
			fmt.Fprintf(&sb, "   Marking Criteria: %s\n", key.MarkingCriteria)
		}
		for _, p := range key.KeyPoints {
			fmt.Fprintf(&sb, "   - %s\n", p)
		}
	}

	return sb.String()
}

var filenameUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Filename builds a download filename from the assessment title.
func Filename(title, ext string) string {
	slug := filenameUnsafe.ReplaceAllString(strings.ToLower(title), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "assessment"
	}
	return "assessment_" + slug + "." + ext
}
