package assess

import "fmt"

// MalformedError means the model's response could not be decoded into the
// expected structure. The attempt is discarded; no partial result is shown.
type MalformedError struct {
	Reason string
	Err    error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed LLM response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed LLM response: %s", e.Reason)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Validation constraint identifiers, used in error reporting and logs.
const (
	ConstraintQuestionMarks    = "question_marks"
	ConstraintMCQOptions       = "mcq_options"
	ConstraintMarksTotal       = "marks_total"
	ConstraintTypeDistribution = "type_distribution"
	ConstraintStructure        = "structure"
)

// ValidationError means the response decoded but violates a semantic
// constraint. It names the violated constraint so the UI can surface it.
type ValidationError struct {
	Constraint string
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Constraint, e.Message)
}
