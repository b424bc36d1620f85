package domain

import (
	"errors"
	"strings"
)

var (
	// ErrQuizNotFound indicates the quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrResultNotFound indicates the result does not exist.
	ErrResultNotFound = errors.New("result not found")
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrForbidden is returned when an authenticated user may not access an entity.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated is returned when a request carries no valid identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials is returned by login for an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrDuplicateResult is returned by a result store when a single-response
	// quiz already holds a result for the same user.
	ErrDuplicateResult = errors.New("duplicate result")
	// ErrLockHeld is returned when another submission holds the per-user quiz lock.
	ErrLockHeld = errors.New("submission already in progress")
)

// FieldError is one field-level problem in a mutation payload.
type FieldError struct {
	Field    string `json:"field,omitempty"`
	Index    *int   `json:"index,omitempty"`
	Message  string `json:"message"`
	Value    any    `json:"value,omitempty"`
	Expected any    `json:"expected,omitempty"`
}

// At returns a copy of e tagged with a slice index.
func (e FieldError) At(i int) FieldError {
	e.Index = &i
	return e
}

// ValidationError carries every problem found in a payload. Conflict marks
// edits that would change the graded structure of a quiz.
type ValidationError struct {
	Problems []FieldError
	Conflict bool
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.Field != "" {
			msgs = append(msgs, p.Field+": "+p.Message)
			continue
		}
		msgs = append(msgs, p.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Problems accumulates field errors and converts them to an error once.
type Problems struct {
	list     []FieldError
	conflict bool
}

// Add records one or more problems.
func (p *Problems) Add(errs ...FieldError) {
	p.list = append(p.list, errs...)
}

// AddConflict records a problem that marks the whole set as a conflict.
func (p *Problems) AddConflict(err FieldError) {
	p.conflict = true
	p.list = append(p.list, err)
}

// Err returns nil when nothing was recorded.
func (p *Problems) Err() error {
	if len(p.list) == 0 {
		return nil
	}
	return &ValidationError{Problems: p.list, Conflict: p.conflict}
}

// AsValidation unwraps a *ValidationError from err.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
