package assess

import (
	"context"
	"log/slog"
	"time"

	"github.com/classkit/assessgen/internal/model"
	"github.com/classkit/assessgen/internal/prompt"
	"github.com/classkit/assessgen/internal/store"
)

// ConstraintRequest marks validation failures of the incoming request,
// before any prompt is built.
const ConstraintRequest = "request"

// TextGenerator produces raw response text for a rendered prompt.
// *llm.Client satisfies this.
type TextGenerator interface {
	Generate(ctx context.Context, promptText string) (string, error)
}

// Service runs one generation cycle: validate the request, render the
// prompt, call the LLM, parse and validate the response, then append the
// result to history. History append happens only after validation passes.
type Service struct {
	llm   TextGenerator
	store *store.Store
}

// NewService creates a generation service.
func NewService(g TextGenerator, s *store.Store) *Service {
	return &Service{llm: g, store: s}
}

// Generate produces and stores one assessment.
func (s *Service) Generate(ctx context.Context, req model.AssessmentRequest) (*model.HistoryEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Constraint: ConstraintRequest, Message: err.Error()}
	}

	promptText, err := prompt.Build(req)
	if err != nil {
		return nil, err
	}
	slog.Debug("prompt rendered", "bytes", len(promptText))

	raw, err := s.llm.Generate(ctx, promptText)
	if err != nil {
		return nil, err
	}
	slog.Debug("LLM response received", "bytes", len(raw))

	result, err := Parse(raw)
	if err != nil {
		slog.Error("failed to parse LLM response", "error", err)
		return nil, err
	}

	if err := Validate(result, req); err != nil {
		slog.Warn("generated assessment rejected", "error", err)
		return nil, err
	}

	Normalize(result, time.Now())

	id, err := s.store.InsertAssessment(*result)
	if err != nil {
		return nil, err
	}

	slog.Info("assessment generated",
		"id", id,
		"title", result.Title,
		"questions", len(result.Questions),
		"marks", result.Metadata.TotalMarks,
	)

	return &model.HistoryEntry{
		ID:        id,
		Title:     result.Title,
		Standard:  result.CurriculumStandard,
		Questions: len(result.Questions),
		Marks:     result.Metadata.TotalMarks,
		CreatedAt: result.GeneratedAt,
		Result:    *result,
	}, nil
}
