package auction

import "errors"

// Validation errors. The engine returns these wrapped with context; match
// with errors.Is.
var (
	ErrEmptyName          = errors.New("name cannot be empty")
	ErrInvalidName        = errors.New("invalid name")
	ErrDuplicateTeam      = errors.New("team already exists")
	ErrUnknownTeam        = errors.New("unknown team")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrInsufficientBudget = errors.New("insufficient budget")
	ErrInvalidAmount      = errors.New("amount must be >= 0")
	ErrInvalidRating      = errors.New("rating must be between 0 and 100")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidNationality = errors.New("invalid nationality")
)

// ErrBudgetViolation guards the budget invariant. Engine validation should
// make it unreachable; seeing it means a bug, not bad input.
var ErrBudgetViolation = errors.New("budget violation")

// IsValidation reports whether err is a user-correctable rejection.
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrEmptyName),
		errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrDuplicateTeam),
		errors.Is(err, ErrUnknownTeam),
		errors.Is(err, ErrPlayerNotFound),
		errors.Is(err, ErrInsufficientBudget),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidRating),
		errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrInvalidNationality):
		return true
	}
	return false
}
