package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/celerix-dev/firmdesk/internal/clients"
	"github.com/celerix-dev/firmdesk/internal/documents"
	"github.com/celerix-dev/firmdesk/internal/invoices"
	"github.com/celerix-dev/firmdesk/pkg/schema"
	"github.com/celerix-dev/firmdesk/pkg/sdk"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Refused operation (invalid transition, unknown record)
	ExitCommandError = 2 // Command error (bad configuration, unreadable input)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// errorCode gives domain errors a stable code for JSON output.
func errorCode(err error) string {
	switch {
	case errors.Is(err, documents.ErrInvalidTransition):
		return "E_TRANSITION"
	case errors.Is(err, documents.ErrNotFound),
		errors.Is(err, clients.ErrNotFound),
		errors.Is(err, invoices.ErrNotFound):
		return "E_NOT_FOUND"
	case errors.Is(err, sdk.ErrInvalidBackup):
		return "E_BACKUP"
	default:
		return "E_FAILED"
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes data as a JSON envelope, or calls text for human output.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	text(f.Writer)
	return nil
}

// Fail reports err in the configured format and returns it for the exit code.
func (f *OutputFormatter) Fail(err error) error {
	if f.Format == "json" {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: errorCode(err), Message: err.Error()},
		})
		return WrapExitError(ExitFailure, "", err)
	}
	return err
}

// VerboseLog outputs a message only if verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func table(w io.Writer, header string, rows func(tw io.Writer)) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	tw.Flush()
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func printDocument(w io.Writer, d schema.ClientDocument) {
	fmt.Fprintf(w, "ID:       %s\n", d.ID)
	fmt.Fprintf(w, "Client:   %s\n", d.ClientID)
	fmt.Fprintf(w, "Title:    %s\n", d.Title)
	fmt.Fprintf(w, "Status:   %s\n", d.Status)
	fmt.Fprintf(w, "Created:  %s by %s\n", stamp(d.CreatedAt), orDash(d.CreatedBy))
	if d.SignedAt != nil {
		fmt.Fprintf(w, "Signed:   %s by %s\n", stamp(*d.SignedAt), d.SignedBy)
	}
	if d.Content != "" {
		fmt.Fprintf(w, "\n%s\n", d.Content)
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
