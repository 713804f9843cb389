package assess

import (
	"context"
	"errors"
	"testing"

	"github.com/classkit/assessgen/internal/store"
)

// fakeGenerator returns canned responses in order.
type fakeGenerator struct {
	responses []string
	err       error
	calls     int
}

func (f *fakeGenerator) Generate(ctx context.Context, promptText string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func newTestService(t *testing.T, g TextGenerator) (*Service, *store.Store) {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewService(g, s), s
}

func TestServiceGenerate(t *testing.T) {
	raw := "```json\n" + mustJSON(t, validResult()) + "\n```"
	svc, st := newTestService(t, &fakeGenerator{responses: []string{raw}})

	entry, err := svc.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if entry.ID == 0 {
		t.Error("expected a stored history ID")
	}
	if entry.Questions != 10 || entry.Marks != 50 {
		t.Errorf("unexpected summary %d questions / %d marks", entry.Questions, entry.Marks)
	}
	if entry.Result.GeneratedAt.IsZero() {
		t.Error("generation timestamp not stamped")
	}
	if entry.Result.Metadata.TotalMarks != 50 {
		t.Errorf("metadata not normalized: %+v", entry.Result.Metadata)
	}

	count, err := st.AssessmentCount()
	if err != nil {
		t.Fatalf("AssessmentCount: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 history entry, got %d", count)
	}
}

func TestServiceRejectsInvalidRequest(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"{}"}}
	svc, st := newTestService(t, gen)

	req := testRequest()
	req.TotalMarks = 0
	_, err := svc.Generate(context.Background(), req)

	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Constraint != ConstraintRequest {
		t.Fatalf("expected request ValidationError, got %v", err)
	}
	if gen.calls != 0 {
		t.Error("invalid request must not reach the LLM")
	}
	assertEmptyHistory(t, st)
}

func TestServiceRejectsMarksMismatch(t *testing.T) {
	res := validResult()
	res.Questions[9].Marks = 13 // 48 total instead of 50
	svc, st := newTestService(t, &fakeGenerator{responses: []string{mustJSON(t, res)}})

	_, err := svc.Generate(context.Background(), testRequest())
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Constraint != ConstraintMarksTotal {
		t.Fatalf("expected marks total ValidationError, got %v", err)
	}
	assertEmptyHistory(t, st)
}

func TestServiceRejectsMalformedResponse(t *testing.T) {
	svc, st := newTestService(t, &fakeGenerator{responses: []string{"sorry, I cannot help"}})

	_, err := svc.Generate(context.Background(), testRequest())
	var malformed *MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedError, got %v", err)
	}
	assertEmptyHistory(t, st)
}

func TestServicePropagatesLLMError(t *testing.T) {
	wantErr := errors.New("provider down")
	svc, st := newTestService(t, &fakeGenerator{err: wantErr})

	_, err := svc.Generate(context.Background(), testRequest())
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected LLM error to propagate, got %v", err)
	}
	assertEmptyHistory(t, st)
}

// assertEmptyHistory verifies no partial result ever reached the store.
func assertEmptyHistory(t *testing.T, st *store.Store) {
	t.Helper()
	count, err := st.AssessmentCount()
	if err != nil {
		t.Fatalf("AssessmentCount: %v", err)
	}
	if count != 0 {
		t.Errorf("history should be empty, got %d entries", count)
	}
}
