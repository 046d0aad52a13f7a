package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format represents output format
type Format string

const (
	FormatTable Format = "table"
	FormatWide  Format = "wide"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a format string
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	case "wide":
		return FormatWide
	default:
		return FormatTable
	}
}

// Printer handles formatted output
type Printer struct {
	format  Format
	writer  io.Writer
	noColor bool
}

// NewPrinter creates a new printer
func NewPrinter(format Format) *Printer {
	return &Printer{
		format:  format,
		writer:  os.Stdout,
		noColor: os.Getenv("NO_COLOR") != "",
	}
}

// SetWriter sets the output writer
func (p *Printer) SetWriter(w io.Writer) {
	p.writer = w
}

// Print outputs data in the configured format
func (p *Printer) Print(data interface{}) error {
	switch p.format {
	case FormatJSON:
		return p.printJSON(data)
	case FormatYAML:
		return p.printYAML(data)
	default:
		// Table and Wide are handled by specific methods
		return p.printJSON(data)
	}
}

func (p *Printer) printJSON(data interface{}) error {
	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (p *Printer) printYAML(data interface{}) error {
	enc := yaml.NewEncoder(p.writer)
	enc.SetIndent(2)
	return enc.Encode(data)
}

// Color codes
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m"
)

// Colorize adds color to text
func (p *Printer) Colorize(color, text string) string {
	if p.noColor {
		return text
	}
	return color + text + Reset
}

// TableWriter creates a tabwriter for aligned output
func (p *Printer) TableWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', 0)
}

// FunctionRow represents one registered function in table output. Binding
// holds whatever the trigger needs to describe itself: the HTTP method for
// an http trigger, the cron expression for an interval trigger, empty for
// none.
type FunctionRow struct {
	Name          string `json:"name" yaml:"name"`
	Language      string `json:"language" yaml:"language"`
	TriggerKind   string `json:"trigger_kind" yaml:"trigger_kind"`
	Binding       string `json:"binding,omitempty" yaml:"binding,omitempty"`
	EnvironmentID string `json:"environment_id,omitempty" yaml:"environment_id,omitempty"`
	Created       string `json:"created" yaml:"created"`
}

// PrintFunctions prints function list
func (p *Printer) PrintFunctions(rows []FunctionRow) error {
	if p.format == FormatJSON || p.format == FormatYAML {
		return p.Print(rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(p.writer, "No functions found")
		return nil
	}

	w := p.TableWriter()

	if p.format == FormatWide {
		fmt.Fprintln(w, p.Colorize(Bold, "NAME\tLANGUAGE\tTRIGGER\tBINDING\tENVIRONMENT\tCREATED"))
	} else {
		fmt.Fprintln(w, p.Colorize(Bold, "NAME\tLANGUAGE\tTRIGGER\tCREATED"))
	}

	for _, row := range rows {
		if p.format == FormatWide {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				p.Colorize(Cyan, row.Name),
				row.Language,
				row.TriggerKind,
				row.Binding,
				row.EnvironmentID,
				row.Created,
			)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				p.Colorize(Cyan, row.Name),
				row.Language,
				row.TriggerKind,
				row.Created,
			)
		}
	}

	return w.Flush()
}

// InvokeResult represents the outcome of a direct function call.
type InvokeResult struct {
	RequestID  string            `json:"request_id" yaml:"request_id"`
	Success    bool              `json:"success" yaml:"success"`
	Output     map[string]string `json:"output,omitempty" yaml:"output,omitempty"`
	Error      string            `json:"error,omitempty" yaml:"error,omitempty"`
	DurationMs int64             `json:"duration_ms" yaml:"duration_ms"`
}

// PrintInvokeResult prints invocation result
func (p *Printer) PrintInvokeResult(result InvokeResult) error {
	if p.format == FormatJSON || p.format == FormatYAML {
		return p.Print(result)
	}

	fmt.Fprintf(p.writer, "%s %s\n", p.Colorize(Bold, "Request ID:"), result.RequestID)
	fmt.Fprintf(p.writer, "%s %d ms\n", p.Colorize(Bold, "Duration:"), result.DurationMs)

	if result.Error != "" {
		fmt.Fprintf(p.writer, "%s %s\n", p.Colorize(Bold, "Error:"), p.Colorize(Red, result.Error))
		return nil
	}

	fmt.Fprintf(p.writer, "%s\n", p.Colorize(Bold, "Output:"))
	for k, v := range result.Output {
		fmt.Fprintf(p.writer, "  %s = %s\n", k, v)
	}
	return nil
}

// FunctionDetail represents detailed function info
type FunctionDetail struct {
	Name          string `json:"name" yaml:"name"`
	EnvironmentID string `json:"environment_id" yaml:"environment_id"`
	Language      string `json:"language" yaml:"language"`
	TriggerKind   string `json:"trigger_kind" yaml:"trigger_kind"`
	Binding       string `json:"binding,omitempty" yaml:"binding,omitempty"`
	Created       string `json:"created" yaml:"created"`
	Updated       string `json:"updated" yaml:"updated"`
}

// PrintFunctionDetail prints detailed function info
func (p *Printer) PrintFunctionDetail(detail FunctionDetail) error {
	if p.format == FormatJSON || p.format == FormatYAML {
		return p.Print(detail)
	}

	fmt.Fprintf(p.writer, "%s %s\n", p.Colorize(Bold, "Function:"), p.Colorize(Cyan, detail.Name))
	fmt.Fprintf(p.writer, "  %s %s\n", p.Colorize(Gray, "Environment:"), detail.EnvironmentID)
	fmt.Fprintf(p.writer, "  %s %s\n", p.Colorize(Gray, "Language:"), detail.Language)
	fmt.Fprintf(p.writer, "  %s %s\n", p.Colorize(Gray, "Trigger:"), detail.TriggerKind)
	if detail.Binding != "" {
		fmt.Fprintf(p.writer, "  %s %s\n", p.Colorize(Gray, "Binding:"), detail.Binding)
	}
	fmt.Fprintf(p.writer, "  %s %s\n", p.Colorize(Gray, "Created:"), detail.Created)
	fmt.Fprintf(p.writer, "  %s %s\n", p.Colorize(Gray, "Updated:"), detail.Updated)

	return nil
}

// Success prints a success message
func (p *Printer) Success(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.writer, p.Colorize(Green, "✓ ")+msg)
}

// Error prints an error message
func (p *Printer) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.writer, p.Colorize(Red, "✗ ")+msg)
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.writer, p.Colorize(Yellow, "⚠ ")+msg)
}

// Info prints an info message
func (p *Printer) Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.writer, p.Colorize(Blue, "ℹ ")+msg)
}
