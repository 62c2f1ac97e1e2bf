package directory

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrNotFound reports that a requested entity does not exist. The HTTP layer
// maps it to 404; everything else surfaces as a datastore failure.
var ErrNotFound = errors.New("directory: not found")

// ResolutionError reports a failed step of the location cascade. The cascade
// fails fast: a caller never proceeds with a zero parent id.
type ResolutionError struct {
	Level string // "country", "state" or "city"
	Name  string
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("directory: resolving %s %q: %v", e.Level, e.Name, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// DegradedStep records a non-primary ingest step that failed after the artist
// row was committed. The primary operation still succeeds; degraded steps are
// reported to the caller and are safe to retry with the same input.
type DegradedStep struct {
	Step   string `json:"step"`
	Reason string `json:"reason"`
}

// IsValidationError reports whether err originates from input validation and
// should surface as a 400 rather than a 500.
func IsValidationError(err error) bool {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return true
	}
	var verr validation.Error
	return errors.As(err, &verr)
}
