// Package presenter renders user-facing CLI output: outcome lines for
// registry operations, apply warnings and errors, with color support.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// ColorMode represents different color output modes
type ColorMode int

const (
	// ColorAuto lets the color package decide based on the terminal
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output
	ColorAlways
	// ColorNever disables colored output
	ColorNever
)

// Presenter writes messages for the CLI user
type Presenter struct {
	output      io.Writer
	errorOutput io.Writer
	colorMode   ColorMode
	quiet       bool
}

// New creates a Presenter writing to stdout and stderr
func New() *Presenter {
	return NewWithOptions(os.Stdout, os.Stderr, DetectColorMode())
}

// NewWithOptions creates a Presenter with custom writers and color mode
func NewWithOptions(output, errorOutput io.Writer, colorMode ColorMode) *Presenter {
	switch colorMode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	case ColorAuto:
	}

	return &Presenter{
		output:      output,
		errorOutput: errorOutput,
		colorMode:   colorMode,
	}
}

// DetectColorMode reads NO_COLOR and MSKILLS_COLOR from the environment
func DetectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}

	switch os.Getenv("MSKILLS_COLOR") {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Error writes an error to the error output. Quiet mode does not hide errors.
func (p *Presenter) Error(err error, context string) {
	if err == nil {
		return
	}

	errorColor := color.New(color.FgRed, color.Bold)
	if context != "" {
		errorColor.Fprintf(p.errorOutput, "✗ %s: %v\n", context, err)
	} else {
		errorColor.Fprintf(p.errorOutput, "✗ %v\n", err)
	}
}

// Success writes a success line
func (p *Presenter) Success(format string, args ...any) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen, color.Bold).Fprintf(p.output, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Warning writes a warning line
func (p *Presenter) Warning(format string, args ...any) {
	if p.quiet {
		return
	}
	color.New(color.FgYellow, color.Bold).Fprintf(p.output, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// Warnings writes each message as a warning line, in order
func (p *Presenter) Warnings(messages []string) {
	for _, m := range messages {
		p.Warning("%s", m)
	}
}

// Info writes a plain line
func (p *Presenter) Info(format string, args ...any) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.output, "%s\n", fmt.Sprintf(format, args...))
}

// Section writes an underlined header
func (p *Presenter) Section(title string) {
	if p.quiet {
		return
	}

	headerColor := color.New(color.Bold)
	headerColor.Fprintf(p.output, "%s\n", title)
	headerColor.Fprintf(p.output, "%s\n", strings.Repeat("-", len(title)))
}

// Faint writes a de-emphasized line, used for hints such as empty lists
func (p *Presenter) Faint(format string, args ...any) {
	if p.quiet {
		return
	}
	color.New(color.Faint).Fprintf(p.output, "%s\n", fmt.Sprintf(format, args...))
}

// Writer returns the regular output, for tabular or machine-readable text
func (p *Presenter) Writer() io.Writer {
	return p.output
}

// SetQuiet enables or disables quiet mode
func (p *Presenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}
