package usecases

import "errors"

// Error kinds handlers map onto HTTP statuses. Wrap with
// fmt.Errorf("...: %w", kind) to add detail.
var (
	ErrValidation         = errors.New("invalid input")
	ErrConflict           = errors.New("already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
)
