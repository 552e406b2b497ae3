package prober

import (
	"errors"
	"fmt"

	"github.com/silexio/zping/probe"
)

// ErrDuplicateProbe reports a correlation key that already has an attempt
// in flight. Defensive: caller sequencing should make this unreachable.
var ErrDuplicateProbe = errors.New("duplicate probe key in flight")

// TimeoutError is the routine outcome of a probe nobody answered in time.
type TimeoutError struct {
	Params probe.TargetParams
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no reply for %s within deadline", e.Params)
}

// IsTimeout reports whether err is a probe timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IOError wraps a socket failure. Scoped to the single attempt that hit
// it; pool and table state stay consistent for other in-flight calls.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}
