package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/cli/styles"
	"github.com/thenoetrevino/tablero/internal/models"
)

// OutputFormatter handles three output modes: JSON, quiet, and human-readable
type OutputFormatter struct {
	JSON  bool
	Quiet bool

	Out    io.Writer // results and JSON errors; defaults to stdout
	ErrOut io.Writer // human readable errors; defaults to stderr
}

// NewFormatter builds a formatter from the --json and --quiet flags of cmd,
// writing to the command's output streams
func NewFormatter(cmd *cobra.Command) *OutputFormatter {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return &OutputFormatter{
		JSON:   jsonOutput,
		Quiet:  quietMode,
		Out:    cmd.OutOrStdout(),
		ErrOut: cmd.ErrOrStderr(),
	}
}

// AddOutputFlags registers --json and --quiet on cmd
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (IDs only)")
}

// DeleteResult reports the outcome of a delete
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// Success outputs a successful result. message heads the human readable output.
func (f *OutputFormatter) Success(message string, data any) error {
	if f.Quiet {
		f.printIDs(data)
		return nil
	}

	if f.JSON {
		return json.NewEncoder(f.out()).Encode(map[string]any{
			"success": true,
			"data":    data,
		})
	}

	if message != "" {
		fmt.Fprintln(f.out(), styles.SuccessStyle.Render("✓ "+message))
	}
	return f.prettyPrint(data)
}

// Error outputs error information
func (f *OutputFormatter) Error(code string, message string) error {
	return f.ErrorWithSuggestion(code, message, "")
}

// ErrorWithSuggestion outputs error information with an optional suggestion
func (f *OutputFormatter) ErrorWithSuggestion(code string, message string, suggestion string) error {
	if f.JSON {
		errData := map[string]any{
			"code":    code,
			"message": message,
		}
		if suggestion != "" {
			errData["suggestion"] = suggestion
		}
		return json.NewEncoder(f.out()).Encode(map[string]any{
			"success": false,
			"error":   errData,
		})
	}

	fmt.Fprintf(f.errOut(), "❌ Error: %s\n", message)
	if suggestion != "" {
		fmt.Fprintf(f.errOut(), "💡 Suggestion: %s\n", suggestion)
	}
	return nil
}

// Fail reports err and returns it as a *StatusError carrying its exit code
func (f *OutputFormatter) Fail(err error) error {
	code := ErrorCode(err)
	var suggestion string
	if c, ok := classify(err); ok {
		suggestion = c.suggestion
	}

	var exitErr *StatusError
	if errors.As(err, &exitErr) && exitErr.Code == ExitUsage && code == "ERROR" {
		code = "USAGE"
	}

	if fmtErr := f.ErrorWithSuggestion(code, err.Error(), suggestion); fmtErr != nil {
		slog.Error("error formatting error message", "error", fmtErr)
	}
	return &StatusError{Code: ExitCode(err), Err: err}
}

// printIDs writes the ids carried by data, one per line
func (f *OutputFormatter) printIDs(data any) {
	switch v := data.(type) {
	case *models.Row:
		fmt.Fprintln(f.out(), v.ID)
	case []*models.Row:
		for _, r := range v {
			fmt.Fprintln(f.out(), r.ID)
		}
	}
}

// prettyPrint formats data for human-readable output
func (f *OutputFormatter) prettyPrint(data any) error {
	switch v := data.(type) {
	case nil, DeleteResult:
		return nil
	case *models.Row:
		fmt.Fprintln(f.out(), styles.RenderRow(v))
	case []*models.Row:
		fmt.Fprintln(f.out(), styles.RenderTable(v))
	default:
		fmt.Fprintf(f.out(), "%+v\n", data)
	}
	return nil
}

func (f *OutputFormatter) out() io.Writer {
	if f.Out == nil {
		return os.Stdout
	}
	return f.Out
}

func (f *OutputFormatter) errOut() io.Writer {
	if f.ErrOut == nil {
		return os.Stderr
	}
	return f.ErrOut
}
