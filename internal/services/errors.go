package services

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed or missing input. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Msg
}

// InvalidStateError reports an operation not legal in the record's current
// lifecycle state. The caller should re-fetch before retrying.
type InvalidStateError struct {
	Op      string
	Current string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s not allowed in status %q", e.Op, e.Current)
}

// InvalidTransitionError reports a status change outside the transition table.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// QualityGateError reports an approval attempt with unmet required checks.
type QualityGateError struct {
	Failing []string
}

func (e *QualityGateError) Error() string {
	return "quality gate not satisfied: " + strings.Join(e.Failing, ", ")
}

// NotFoundError reports a missing aggregate or line item.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}
