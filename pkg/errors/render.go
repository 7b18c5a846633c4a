package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
)

// Format selects how diagnostics are rendered.
type Format string

const (
	FormatText  Format = "text"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatTable, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, table or json)", s)
}

type styles struct {
	location lipgloss.Style
	kind     lipgloss.Style
	source   lipgloss.Style
	marker   lipgloss.Style
}

// Printer renders diagnostics to a writer.
type Printer struct {
	w      io.Writer
	format Format
	styles styles
}

// NewPrinter creates a printer. Colors are only emitted for text output, and
// only when color is set and w is a terminal that supports them.
func NewPrinter(w io.Writer, format Format, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w:      w,
		format: format,
		styles: styles{
			location: r.NewStyle().Bold(true),
			kind:     r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			source:   r.NewStyle().Faint(true),
			marker:   r.NewStyle().Foreground(lipgloss.Color("10")),
		},
	}
}

// Print renders diags in the printer's format.
func (p *Printer) Print(diags []*Diagnostic) error {
	switch p.format {
	case FormatJSON:
		return p.printJSON(diags)
	case FormatTable:
		return p.printTable(diags)
	default:
		return p.printText(diags)
	}
}

// printText prints each diagnostic with the source line and a position
// marker underneath, when the source is available.
func (p *Printer) printText(diags []*Diagnostic) error {
	for _, d := range diags {
		header := fmt.Sprintf("%s %s %s",
			p.styles.location.Render(d.Position.String()+":"),
			p.styles.kind.Render(string(d.Category)+" Error:"),
			d.Msg)
		if _, err := fmt.Fprintln(p.w, header); err != nil {
			return err
		}
		if d.Source == nil || !d.Position.IsValid() {
			continue
		}
		line := strings.TrimRight(d.Source.Line(d.Line), "\r\n\t ")
		if line == "" {
			continue
		}
		col := d.Column - 1
		if col < 0 {
			col = 0
		}
		marker := strings.Repeat(" ", col) + "^"
		if _, err := fmt.Fprintf(p.w, "  %s\n  %s\n\n", p.styles.source.Render(line), p.styles.marker.Render(marker)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printTable(diags []*Diagnostic) error {
	if len(diags) == 0 {
		_, err := fmt.Fprintln(p.w, "(no diagnostics)")
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(p.w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Location", "Kind", "Declaration", "Message"})
	for _, d := range diags {
		t.AppendRow(table.Row{d.Position.String(), string(d.Category), d.Declaration, d.Msg})
	}
	t.Render()
	return nil
}

type jsonDiagnostic struct {
	File        string `json:"file,omitempty"`
	Line        int    `json:"line,omitempty"`
	Column      int    `json:"column,omitempty"`
	Kind        Kind   `json:"kind"`
	Declaration string `json:"declaration,omitempty"`
	Message     string `json:"message"`
}

func (p *Printer) printJSON(diags []*Diagnostic) error {
	out := make([]jsonDiagnostic, len(diags))
	for i, d := range diags {
		out[i] = jsonDiagnostic{
			File:        d.Position.File(),
			Line:        d.Line,
			Column:      d.Column,
			Kind:        d.Category,
			Declaration: d.Declaration,
			Message:     d.Msg,
		}
	}
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
