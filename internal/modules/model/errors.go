package model

import "errors"

// Domain-rule violations are returned as values for the caller to
// render; only storage/transaction failures propagate as hard errors.
var (
	ErrActivePlanExists = errors.New("an active plan already exists")
	ErrPlanNotFound     = errors.New("plan not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrTaskExpired      = errors.New("expired tasks cannot change status")
	ErrKindImmutable    = errors.New("recurrence kind is immutable after creation")
)
