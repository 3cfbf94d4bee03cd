// Package output renders command results for humans, scripts and
// agents. A Renderer carries the selected mode and the two streams a
// command writes to; formatting helpers keep the markdown and table
// styles consistent across commands.
package output

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
)

// Mode selects the output format.
type Mode string

const (
	// ModeAuto picks text on a terminal and markdown when piped.
	ModeAuto Mode = "auto"
	// ModeText is styled terminal output.
	ModeText Mode = "text"
	// ModeMarkdown is plain markdown, agent-friendly.
	ModeMarkdown Mode = "markdown"
	// ModeJSON is machine-readable JSON.
	ModeJSON Mode = "json"
)

// Renderer writes command output in the selected mode.
type Renderer struct {
	out  io.Writer
	err  io.Writer
	mode Mode
}

// NewRenderer creates a renderer for the given streams and mode.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{out: out, err: errOut, mode: mode}
}

// EffectiveMode resolves ModeAuto against the output stream: text when
// talking to a terminal, markdown when piped.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if termenv.NewOutput(r.out).ColorProfile() != termenv.Ascii {
		return ModeText
	}
	return ModeMarkdown
}

// Out returns the renderer's primary stream.
func (r *Renderer) Out() io.Writer { return r.out }

// Println writes a line to the primary stream.
func (r *Renderer) Println(a ...any) {
	fmt.Fprintln(r.out, a...)
}

// Printf writes formatted output to the primary stream.
func (r *Renderer) Printf(format string, a ...any) {
	fmt.Fprintf(r.out, format, a...)
}

// Errorf writes formatted output to the error stream.
func (r *Renderer) Errorf(format string, a ...any) {
	fmt.Fprintf(r.err, format, a...)
}

// JSON writes v as indented JSON to the primary stream.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table renders rows with a header. Text mode gets a rounded-border
// table, markdown mode a pipe table.
func (r *Renderer) Table(header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)

	h := make(table.Row, len(header))
	for i, c := range header {
		h[i] = c
	}
	t.AppendHeader(h)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, c := range row {
			tr[i] = c
		}
		t.AppendRow(tr)
	}

	if r.EffectiveMode() == ModeMarkdown {
		t.RenderMarkdown()
		return
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// FormatHeader renders a markdown header of the given level.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue renders a markdown definition line.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s**: %s", key, value)
}

// FormatCodeBlock fences text as a markdown code block.
func FormatCodeBlock(lang, text string) string {
	return fmt.Sprintf("```%s\n%s\n```", lang, strings.TrimRight(text, "\n"))
}
