package model

// ValidationError means the input itself is malformed or violates a
// business rule and the caller should fix the request.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(msg string) error { return &ValidationError{Msg: msg} }

// StateError means the entity exists but is not in a state that
// permits the requested transition (e.g. confirming a settlement
// that is no longer pending).
type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return e.Msg }

func NewStateError(msg string) error { return &StateError{Msg: msg} }

// ExpiredError means the entity's validity window has passed.
type ExpiredError struct {
	Msg string
}

func (e *ExpiredError) Error() string { return e.Msg }

func NewExpiredError(msg string) error { return &ExpiredError{Msg: msg} }

// NotFoundError means the referenced entity does not exist.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NewNotFoundError(msg string) error { return &NotFoundError{Msg: msg} }
