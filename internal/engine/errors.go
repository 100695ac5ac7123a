package engine

import (
	"errors"
	"fmt"
)

// ParamError reports an invalid request parameter. The facade fails with it
// before any cache lookup or aggregation happens, and the HTTP layer maps it
// to a 400 with errors.As.
type ParamError struct {
	Param  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Param, e.Reason)
}

// ErrStaleView signals that the cache surfaced a view computed against a
// dataset version other than the one the reader captured. It indicates a
// synchronization bug between refresh and read and is fatal to the query
// that detected it.
var ErrStaleView = errors.New("cached view tagged with stale dataset version")
