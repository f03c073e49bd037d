// Package errors is the coded error type shared by the transcoder and the
// tracker. An *Error names the operation that failed, a category code the
// HTTP layer maps to a status, and free-form fields that end up in logs.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

type Code string

const (
	CodeInternal   Code = "INTERNAL_ERROR"
	CodeValidation Code = "VALIDATION_ERROR"
	CodeBadRequest Code = "BAD_REQUEST"
	CodeNotFound   Code = "NOT_FOUND"
	CodeConflict   Code = "CONFLICT"
	// CodeEngine marks a non-zero exit or missing output from ffmpeg.
	CodeEngine Code = "ENGINE_FAILURE"
)

var httpStatus = map[Code]int{
	CodeValidation: http.StatusBadRequest,
	CodeBadRequest: http.StatusBadRequest,
	CodeNotFound:   http.StatusNotFound,
	CodeConflict:   http.StatusConflict,
}

type Error struct {
	Code    Code
	Message string
	Op      string // e.g. "processor.publish"
	Err     error
	Fields  map[string]any
	Stack   []Frame
}

type Frame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

// Error renders "op: [CODE] message: cause", omitting empty parts.
func (e *Error) Error() string {
	var parts []string
	head := e.Message
	if e.Code != "" {
		head = "[" + string(e.Code) + "] " + head
	}
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	parts = append(parts, head)
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

func (e *Error) WithField(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]any, 1)
	}
	e.Fields[key] = value
	return e
}

// HTTPStatus is 500 for any code without an explicit mapping.
func (e *Error) HTTPStatus() int {
	if s, ok := httpStatus[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func (e *Error) StackTrace() string {
	var b strings.Builder
	for _, f := range e.Stack {
		fmt.Fprintf(&b, "  %s:%d %s\n", f.File, f.Line, f.Function)
	}
	return b.String()
}

// newError must be called directly by an exported constructor so the stack
// starts at that constructor's caller.
func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Stack: captureStack(3)}
}

func New(code Code, message string) *Error { return newError(code, message) }

// Wrap attaches op and message to err. A wrapped *Error keeps its code and
// a copy of its fields; anything else becomes CodeInternal. Wrap(nil) is nil.
func Wrap(err error, op string, message string) *Error {
	if err == nil {
		return nil
	}
	out := &Error{Code: CodeInternal, Message: message, Op: op, Err: err, Stack: captureStack(2)}

	var inner *Error
	if errors.As(err, &inner) {
		out.Code = inner.Code
		for k, v := range inner.Fields {
			out.WithField(k, v)
		}
	}
	return out
}

// WrapWithCode is Wrap with the code forced and no fields inherited.
func WrapWithCode(err error, code Code, op string, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Op: op, Err: err, Stack: captureStack(2)}
}

func NotFound(resource string, id string) *Error {
	return newError(CodeNotFound, fmt.Sprintf("%s not found: %s", resource, id)).
		WithField("resource", resource).
		WithField("id", id)
}

func Validation(message string) *Error { return newError(CodeValidation, message) }

func Validationf(format string, args ...any) *Error {
	return newError(CodeValidation, fmt.Sprintf(format, args...))
}

func ValidationField(field string, message string) *Error {
	return newError(CodeValidation, message).WithField("field", field)
}

func Conflict(message string) *Error { return newError(CodeConflict, message) }

func find(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// GetCode returns the outermost *Error's code, or CodeInternal.
func GetCode(err error) Code {
	if e, ok := find(err); ok {
		return e.Code
	}
	return CodeInternal
}

func GetHTTPStatus(err error) int {
	if e, ok := find(err); ok {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

func GetFields(err error) map[string]any {
	if e, ok := find(err); ok {
		return e.Fields
	}
	return nil
}

func IsCode(err error, code Code) bool { return GetCode(err) == code }

func IsNotFound(err error) bool { return IsCode(err, CodeNotFound) }

func IsValidation(err error) bool { return IsCode(err, CodeValidation) }

const maxFrames = 10

// captureStack records up to maxFrames non-runtime frames above its caller's
// caller (skip counts frames above captureStack).
func captureStack(skip int) []Frame {
	var pcs [32]uintptr
	n := runtime.Callers(skip+1, pcs[:])
	it := runtime.CallersFrames(pcs[:n])

	frames := make([]Frame, 0, maxFrames)
	for len(frames) < maxFrames {
		f, more := it.Next()
		if !strings.Contains(f.File, "runtime/") {
			frames = append(frames, Frame{File: f.File, Line: f.Line, Function: f.Function})
		}
		if !more {
			break
		}
	}
	return frames
}

// As, Is and Join forward to the standard library so callers need one import.
func As(err error, target any) bool { return errors.As(err, target) }

func Is(err, target error) bool { return errors.Is(err, target) }

func Join(errs ...error) error { return errors.Join(errs...) }
