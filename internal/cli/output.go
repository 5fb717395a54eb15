package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/hivdash/internal/core"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Dataset could not be read or the selection is empty
	ExitCommandError = 2 // Bad arguments, flags or selection
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// usageError wraps err as a command error.
func usageError(err error) *ExitError {
	return &ExitError{Code: ExitCommandError, Message: "invalid usage", Err: err}
}

// GetExitCode extracts the exit code from an error.
// Input errors from the loader and queries map to ExitCommandError; anything
// else that is not an ExitError is ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	switch {
	case errors.Is(err, core.ErrInvalidAgeGroup),
		errors.Is(err, core.ErrNotFound),
		errors.Is(err, core.ErrYearOutOfRange),
		errors.Is(err, core.ErrInvalidQuery):
		return ExitCommandError
	case strings.HasPrefix(err.Error(), "unknown command"),
		strings.HasPrefix(err.Error(), "unknown flag"),
		strings.HasPrefix(err.Error(), "unknown shorthand flag"):
		return ExitCommandError
	}
	return ExitFailure
}

// OutputFormatter writes command results as text, JSON or YAML.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostics; kept off Writer so JSON/YAML stays parseable
}

// Response is the envelope for JSON and YAML output.
type Response struct {
	Status string            `json:"status" yaml:"status"`                   // "ok" or "error"
	Data   any               `json:"data,omitempty" yaml:"data,omitempty"`   // success payload
	Error  *core.UserMessage `json:"error,omitempty" yaml:"error,omitempty"` // error details
}

// Success outputs data. text renders the human-readable form.
func (f *OutputFormatter) Success(data any, text func(w io.Writer) error) error {
	switch f.Format {
	case "json", "yaml":
		return f.encode(Response{Status: "ok", Data: data})
	}
	return text(f.Writer)
}

// Error outputs the user-facing form of err. Structured formats go to
// Writer; text goes to ErrWriter.
func (f *OutputFormatter) Error(err error) error {
	userErr := core.NewUserError(err)
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code == ExitCommandError && !core.IsUserFacing(err) {
		userErr.User = core.UserMessage{Message: err.Error(), Action: "Run with --help for usage", Code: "CLI001"}
	}

	switch f.Format {
	case "json", "yaml":
		return f.encode(Response{Status: "error", Error: &userErr.User})
	}

	line := core.FormatUserError(userErr.Technical)
	if userErr.User.Code == "CLI001" {
		line = fmt.Sprintf("%s (Code: CLI001). %s", userErr.User.Message, userErr.User.Action)
	}
	_, werr := fmt.Fprintf(f.errWriter(), "Error: %s\n  (%v)\n", line, userErr.Technical)
	return werr
}

func (f *OutputFormatter) encode(v Response) error {
	if f.Format == "yaml" {
		enc := yaml.NewEncoder(f.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
