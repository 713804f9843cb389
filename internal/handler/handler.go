package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/classkit/assessgen/internal/assess"
	"github.com/classkit/assessgen/internal/export"
	"github.com/classkit/assessgen/internal/handler/views"
	appI18n "github.com/classkit/assessgen/internal/i18n"
	"github.com/classkit/assessgen/internal/llm"
	"github.com/classkit/assessgen/internal/model"
	"github.com/classkit/assessgen/internal/prompt"
	"github.com/classkit/assessgen/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store        *store.Store
	svc          *assess.Service
	config       model.AppConfig
	passwordHash []byte // nil when login is disabled
}

// New creates a new Handler. When cfg.UIPassword is set, all pages except
// the login form require a valid session cookie.
func New(s *store.Store, svc *assess.Service, cfg model.AppConfig) (*Handler, error) {
	h := &Handler{store: s, svc: svc, config: cfg}
	if cfg.UIPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.UIPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash UI password: %w", err)
		}
		h.passwordHash = hash
	}
	return h, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.csrfMiddleware)
		r.Get("/login", h.handleLoginPage)
		r.Post("/login", h.handleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Use(h.csrfMiddleware)
		r.Get("/", h.handleIndex)
		r.Post("/generate", h.handleGenerate)
		r.Get("/history", h.handleHistory)
		r.Get("/assessment/{id}", h.handleAssessment)
		r.Get("/assessment/{id}/export.json", h.handleExportJSON)
		r.Get("/assessment/{id}/export.txt", h.handleExportText)
		r.Post("/logout", h.handleLogout)
	})
}

// defaultRequest pre-fills the form the way a teacher usually starts.
func defaultRequest() model.AssessmentRequest {
	return model.AssessmentRequest{
		CurriculumStandard: "CBSE Class 10",
		LearningObjectives: "Understanding quadratic equations and their applications",
		BloomLevel:         model.BloomUnderstand,
		Difficulty:         model.DifficultyMedium,
		TotalMarks:         50,
		NumQuestions:       5,
		Distribution: map[model.QuestionType]float64{
			model.MultipleChoice: 0.4,
			model.ShortAnswer:    0.3,
			model.LongAnswer:     0.3,
		},
	}
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, defaultRequest(), "")
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, req model.AssessmentRequest, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := views.FormData{Request: req, ErrorMsg: errMsg, LoggedIn: h.passwordHash != nil}
	if err := views.IndexPage(data).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := requestFromForm(r)
	if err != nil {
		h.renderForm(w, r, req, appI18n.Td(r.Context(), "ErrInvalidForm",
			map[string]any{"Detail": err.Error()}))
		return
	}

	entry, err := h.svc.Generate(r.Context(), req)
	if err != nil {
		h.renderForm(w, r, req, h.errorMessage(r, err))
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/assessment/%d", entry.ID), http.StatusSeeOther)
}

// requestFromForm builds an AssessmentRequest from the posted form values.
// Semantic validation happens in the service; this only converts types.
func requestFromForm(r *http.Request) (model.AssessmentRequest, error) {
	req := model.AssessmentRequest{
		CurriculumStandard: r.FormValue("curriculum_standard"),
		LearningObjectives: r.FormValue("learning_objectives"),
		BloomLevel:         model.BloomLevel(strings.ToLower(r.FormValue("blooms_level"))),
		Difficulty:         model.Difficulty(strings.ToLower(r.FormValue("difficulty"))),
		AdditionalPrompts:  r.FormValue("additional_prompts"),
		Distribution:       make(map[model.QuestionType]float64),
	}

	var err error
	if req.TotalMarks, err = strconv.Atoi(r.FormValue("total_marks")); err != nil {
		return req, fmt.Errorf("total marks must be a number")
	}
	if req.NumQuestions, err = strconv.Atoi(r.FormValue("num_questions")); err != nil {
		return req, fmt.Errorf("number of questions must be a number")
	}

	for field, t := range map[string]model.QuestionType{
		"mcq_percent":          model.MultipleChoice,
		"short_answer_percent": model.ShortAnswer,
		"long_answer_percent":  model.LongAnswer,
	} {
		pct, err := strconv.Atoi(r.FormValue(field))
		if err != nil {
			return req, fmt.Errorf("%s must be a number", field)
		}
		req.Distribution[t] = float64(pct) / 100
	}
	return req, nil
}

// errorMessage maps the error taxonomy to a user-facing message. Every error
// is surfaced; none is swallowed or retried beyond the LLM client's own bound.
func (h *Handler) errorMessage(r *http.Request, err error) string {
	ctx := r.Context()

	var tmplErr *prompt.TemplateError
	if errors.As(err, &tmplErr) {
		slog.Error("prompt build failed", "error", err)
		return appI18n.Td(ctx, "ErrTemplate", map[string]any{"Detail": tmplErr.Error()})
	}

	var unavail *llm.UnavailableError
	if errors.As(err, &unavail) {
		slog.Error("LLM unavailable", "attempts", unavail.Attempts, "error", err)
		return appI18n.T(ctx, "ErrUnavailable")
	}

	var reqErr *llm.RequestError
	if errors.As(err, &reqErr) {
		slog.Error("LLM rejected request", "status", reqErr.StatusCode, "error", err)
		return appI18n.Td(ctx, "ErrProviderRejected", map[string]any{"Detail": reqErr.Message})
	}

	var malformed *assess.MalformedError
	if errors.As(err, &malformed) {
		return appI18n.T(ctx, "ErrMalformed")
	}

	var verr *assess.ValidationError
	if errors.As(err, &verr) {
		if verr.Constraint == assess.ConstraintRequest {
			return appI18n.Td(ctx, "ErrInvalidForm", map[string]any{"Detail": verr.Message})
		}
		return appI18n.Td(ctx, "ErrValidation", map[string]any{"Detail": verr.Message})
	}

	slog.Error("generation failed", "error", err)
	return err.Error()
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.ListAssessments()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.HistoryPage(entries, h.passwordHash != nil).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) entryFromURL(w http.ResponseWriter, r *http.Request) (model.HistoryEntry, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid assessment ID", http.StatusBadRequest)
		return model.HistoryEntry{}, false
	}
	entry, err := h.store.GetAssessment(id)
	if err == sql.ErrNoRows {
		http.NotFound(w, r)
		return model.HistoryEntry{}, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return model.HistoryEntry{}, false
	}
	return entry, true
}

func (h *Handler) handleAssessment(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entryFromURL(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.AssessmentPage(entry, h.passwordHash != nil).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entryFromURL(w, r)
	if !ok {
		return
	}
	data, err := export.ToJSON(entry.Result)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(entry.Title, "json")))
	_, _ = w.Write(data)
}

func (h *Handler) handleExportText(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entryFromURL(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(entry.Title, "txt")))
	_, _ = fmt.Fprint(w, export.ToText(entry.Result))
}
