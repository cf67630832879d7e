package imagepkg

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrAssetMissing     = errors.New("asset missing")
	ErrCompositeFailure = errors.New("composite failure")
	ErrEncode           = errors.New("encode error")
	ErrWrite            = errors.New("write error")

	// ErrStepOrder is reported together with ErrCompositeFailure.
	ErrStepOrder = errors.New("strip step out of order")
	// ErrStripOverflow means the configured layout does not fit the base image.
	ErrStripOverflow = errors.New("strip does not fit base image")
	// ErrBusy is returned under the reject policy while another generation runs.
	ErrBusy = errors.New("generation already in progress")
)

// Error is the failure type returned by every stage of the pipeline.
// Kind is one of the sentinels above, so callers match with errors.Is.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op string, kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}
