package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/GlebRadaev/linkmarket/internal/domain"
)

const (
	ExitSuccess      = 0
	ExitFailure      = 1 // business rule rejected the command or the ledger is inconsistent
	ExitCommandError = 2 // bad arguments or no database
)

type ExitError struct {
	Code    int
	Message string
	Err     error
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

type Response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  *Error `json:"error,omitempty"`
}

type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Success prints data as JSON, or text as is.
func (f *OutputFormatter) Success(data any, text string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

// Fail reports err and turns it into an ExitError carrying the exit code.
func (f *OutputFormatter) Fail(err error) error {
	kind := domain.KindOf(err).String()
	if f.Format == "json" {
		_ = json.NewEncoder(f.Writer).Encode(Response{Status: "error", Error: &Error{Kind: kind, Message: err.Error()}})
	} else {
		fmt.Fprintf(f.Writer, "Error [%s]: %s\n", kind, err.Error())
	}
	return &ExitError{Code: ExitFailure, Message: "command failed", Err: err}
}
