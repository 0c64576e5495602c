// Package xerrors wraps errors with the call stack that produced them,
// so a failure deep inside a ptrace or DWARF call can be reported with
// enough context to find the originating site without a debugger.
package xerrors

import (
	"fmt"
	"runtime"
	"strings"
)

// TracedError is an error annotated with the chain of call frames it
// passed through on its way up.
type TracedError struct {
	Err    error
	Frames []runtime.Frame
}

// Error implements the error interface.
func (e *TracedError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	for _, frame := range e.Frames {
		fmt.Fprintf(&b, "\n\t[%s:%d]", frame.Function, frame.Line)
	}
	return b.String()
}

// Unwrap allows errors.Is/errors.As to see through a TracedError.
func (e *TracedError) Unwrap() error {
	return e.Err
}

// Wrap annotates err with the caller's frame, or appends a frame if err
// is already a *TracedError. Returns nil if err is nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	frame := callerFrame()

	if te, ok := err.(*TracedError); ok {
		te.Frames = append(te.Frames, frame)
		return te
	}

	return &TracedError{Err: err, Frames: []runtime.Frame{frame}}
}

// Errorf creates a new TracedError from a format string, in the style
// of fmt.Errorf, annotated with the caller's frame.
func Errorf(format string, args ...interface{}) error {
	return &TracedError{
		Err:    fmt.Errorf(format, args...),
		Frames: []runtime.Frame{callerFrame()},
	}
}

func callerFrame() runtime.Frame {
	pc := make([]uintptr, 1)
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])
	frame, _ := frames.Next()
	return frame
}
