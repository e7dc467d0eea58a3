package recording

import (
	"errors"
	"fmt"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrSave             = errors.New("save failed")
	ErrList             = errors.New("listing failed")
	ErrPlayback         = errors.New("playback failed")
	ErrBusy             = errors.New("a recording is already in progress")
	ErrNotRecording     = errors.New("no active recording found")
	ErrNotFound         = errors.New("recording not found")
)

// OpError carries the failing operation and reference. Kind is one of the
// sentinels above and is matched by errors.Is.
type OpError struct {
	Op   string
	Ref  string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	msg := e.Kind.Error()
	if e.Ref != "" {
		msg = fmt.Sprintf("%s %s: %s", e.Op, e.Ref, msg)
	} else {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Wrap builds an OpError, returning nil when err is nil.
func Wrap(op, ref string, kind, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Ref: ref, Kind: kind, Err: err}
}
