package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"apidrift/internal/diff"
	"apidrift/internal/ext"
)

// TextOptions control the text reporter's rendering.
type TextOptions struct {
	// Color enables ANSI colors.
	Color bool
	// Quiet suppresses the summary block.
	Quiet bool
}

// Text renders reports as human-readable lines, one block per pair, and a
// styled summary at close.
type Text struct {
	w    io.Writer
	opts TextOptions

	reports int
	total   int
	byCode  map[string]int
	maxCrit diff.Criticality
	closed  bool
}

// NewText creates a text reporter writing to w.
func NewText(w io.Writer, opts TextOptions) *Text {
	return &Text{w: w, opts: opts, byCode: make(map[string]int)}
}

// ExtensionID implements ext.Extension.
func (*Text) ExtensionID() string { return "text" }

// Configure implements ext.Extension.
func (t *Text) Configure(*ext.Context) error { return nil }

var severityColors = map[diff.Severity]*color.Color{
	diff.SeverityEquivalent:          color.New(color.FgHiBlack),
	diff.SeverityNonBreaking:         color.New(color.FgGreen),
	diff.SeverityPotentiallyBreaking: color.New(color.FgYellow, color.Bold),
	diff.SeverityBreaking:            color.New(color.FgRed, color.Bold),
}

func (t *Text) paint(sev diff.Severity, s string) string {
	if !t.opts.Color {
		return s
	}
	if c, ok := severityColors[sev]; ok {
		return c.Sprint(s)
	}
	return s
}

// Report implements Reporter. Empty reports are skipped.
func (t *Text) Report(r Report) error {
	if len(r.Differences) == 0 {
		return nil
	}
	t.reports++

	header := r.Pair().String()
	if _, err := fmt.Fprintf(t.w, "%s\n", header); err != nil {
		return err
	}

	labelWidth := 0
	for _, d := range r.Differences {
		if w := runewidth.StringWidth(d.Code); w > labelWidth {
			labelWidth = w
		}
	}
	for _, d := range r.Differences {
		t.total++
		t.byCode[d.Code]++
		if t.maxCrit.IsZero() || d.Criticality.Level > t.maxCrit.Level {
			t.maxCrit = d.Criticality
		}
		sev := d.MaxSeverity()
		pad := strings.Repeat(" ", labelWidth-runewidth.StringWidth(d.Code))
		line := fmt.Sprintf("  %s%s  %s  %s", t.paint(sev, d.Code), pad, t.paint(sev, sev.String()), d.Criticality.Name)
		if d.Description != "" {
			line += "  " + d.Description
		}
		if d.Justification != "" {
			line += "  // " + d.Justification
		}
		if _, err := fmt.Fprintln(t.w, line); err != nil {
			return err
		}
		for _, k := range d.AttachmentKeys() {
			if _, err := fmt.Fprintf(t.w, "    %s: %s\n", k, d.Attachments[k]); err != nil {
				return err
			}
		}
	}
	return nil
}

var summaryStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1)

// Close implements ext.Extension: renders the summary block once.
func (t *Text) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if t.opts.Quiet {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "reports: %d, differences: %d", t.reports, t.total)
	if !t.maxCrit.IsZero() {
		fmt.Fprintf(&sb, ", max criticality: %s", t.maxCrit.Name)
	}
	block := sb.String()
	if t.opts.Color {
		block = summaryStyle.Render(block)
	}
	_, err := fmt.Fprintln(t.w, block)
	return err
}
