package academics

import "fmt"

// StructuralViolationError reports an invalid hierarchy shape. Rejected at the
// point of mutation, never retried or silently corrected.
type StructuralViolationError struct {
	Reason string
}

func (e *StructuralViolationError) Error() string {
	return "structural violation: " + e.Reason
}

// PublicationPreconditionError names the specific unmet requirement blocking a
// publication transition.
type PublicationPreconditionError struct {
	Requirement string
}

func (e *PublicationPreconditionError) Error() string {
	return "publication precondition not met: " + e.Requirement
}

// RecordLockedError rejects a grade or score write after the record was closed.
type RecordLockedError struct {
	Reason string
}

func (e *RecordLockedError) Error() string {
	return "record locked: " + e.Reason
}

// IncompleteEvaluationError rejects closing a record while evaluable content
// (or a linked subject's record) is still unconfirmed.
type IncompleteEvaluationError struct {
	Reason string
}

func (e *IncompleteEvaluationError) Error() string {
	return "incomplete evaluation: " + e.Reason
}

// SizeExceededError is returned when a deliverable exceeds the course's upload limit.
type SizeExceededError struct {
	LimitMB int
}

func (e *SizeExceededError) Error() string {
	return fmt.Sprintf("file exceeds the %d MB limit for this course", e.LimitMB)
}

// RenderError wraps a failure of the external credential rendering collaborator.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return "credential rendering failed: " + e.Err.Error()
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// InvalidTransitionError rejects a state-machine transition that is not legal
// from the current state.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}
