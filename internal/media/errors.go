package media

import "fmt"

// ValidationError reports malformed dimensions or out-of-tolerance focal
// points. It signals a caller bug and is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
