package providers

import (
	"errors"
	"fmt"
)

// ErrBlocked reports that the source answered with an automated-traffic block page.
var ErrBlocked = errors.New("automated traffic block detected")

// RetrievalError describes a failed request, page or parse for one provider and keyword.
// Page is 1-based for paginated providers and 0 otherwise.
type RetrievalError struct {
	Provider string
	Keyword  string
	Page     int
	Err      error
}

func (e *RetrievalError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("retrieve %s for %q page %d: %v", e.Provider, e.Keyword, e.Page, e.Err)
	}
	return fmt.Sprintf("retrieve %s for %q: %v", e.Provider, e.Keyword, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// IsBlocked reports whether err carries a block signal.
func IsBlocked(err error) bool {
	return errors.Is(err, ErrBlocked)
}
