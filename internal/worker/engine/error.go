package engine

import (
	"fmt"

	"vidsphere/internal/models"
)

// stderrTailBytes bounds how much ffmpeg output is buffered and kept on an Error.
const stderrTailBytes = 2048

// Error is a rendition-aware engine failure. It unwraps to the exec error
// (or the bundle validation error) that caused it.
type Error struct {
	Profile  string
	Mode     models.OutputMode
	ExitCode int
	Stderr   string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.ExitCode != 0 {
		return fmt.Sprintf("engine %s (%s): %s (exit=%d)", e.Profile, e.Mode, e.Message, e.ExitCode)
	}
	return fmt.Sprintf("engine %s (%s): %s", e.Profile, e.Mode, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
