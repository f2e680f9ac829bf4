package clinic

import "errors"

// Failure kinds reported by clinic operations. None of them are fatal; callers
// match them with errors.Is and carry on.
var (
	ErrEntityNotFound      = errors.New("entity not found")
	ErrInvalidSelection    = errors.New("invalid selection")
	ErrNotInQueue          = errors.New("patient not in triage queue")
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	ErrValidation          = errors.New("validation failed")
)

// Reason returns a short machine-readable label for err, used in metrics and
// API error bodies.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEntityNotFound):
		return "entity_not_found"
	case errors.Is(err, ErrInvalidSelection):
		return "invalid_selection"
	case errors.Is(err, ErrNotInQueue):
		return "not_in_queue"
	case errors.Is(err, ErrDuplicateIdentifier):
		return "duplicate_identifier"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return "internal"
	}
}
