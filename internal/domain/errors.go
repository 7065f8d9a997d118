package domain

import (
	"errors"
	"fmt"
	"strings"
)

// OfflineMessage is the only failure text shown to users. The detailed
// cause of a failed fetch is logged instead.
const OfflineMessage = "System Offline: Check Backend Connection"

// ErrUnreachable marks transport failures and timeouts.
var ErrUnreachable = errors.New("metrics backend unreachable")

// StatusError is returned when the backend answers with a non-success status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend not responding: unexpected status code %d", e.Code)
}

// SchemaError is returned when a payload cannot be decoded or fails validation.
type SchemaError struct {
	Issues []string
}

func (e *SchemaError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid metrics payload"
	}
	return "invalid metrics payload: " + strings.Join(e.Issues, "; ")
}

// Outcome classifies a fetch result for logs and metrics.
func Outcome(err error) string {
	var statusErr *StatusError
	var schemaErr *SchemaError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &statusErr):
		return "status_error"
	case errors.As(err, &schemaErr):
		return "schema_error"
	case errors.Is(err, ErrUnreachable):
		return "transport_error"
	default:
		return "error"
	}
}
