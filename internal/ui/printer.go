// Package ui prints the agent's workflow events as a terminal transcript.
package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Cyclone1070/reactagent/internal/workflow"
	"github.com/charmbracelet/lipgloss"
)

// maxOutputLines bounds how much of a tool observation is echoed.
const maxOutputLines = 12

type styles struct {
	step     lipgloss.Style
	thought  lipgloss.Style
	tool     lipgloss.Style
	output   lipgloss.Style
	failure  lipgloss.Style
	feedback lipgloss.Style
	done     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		step:     r.NewStyle().Faint(true),
		thought:  r.NewStyle().Foreground(lipgloss.Color("252")),
		tool:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		output:   r.NewStyle().Foreground(lipgloss.Color("245")).PaddingLeft(2),
		failure:  r.NewStyle().Foreground(lipgloss.Color("196")),
		feedback: r.NewStyle().Foreground(lipgloss.Color("214")),
		done: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("42")).
			Padding(0, 1),
	}
}

// Printer writes a human-readable transcript of workflow events.
type Printer struct {
	w        io.Writer
	markdown MarkdownRenderer
	styles   styles
	verbose  bool
}

// NewPrinter creates a Printer. markdown may be nil to print thoughts as
// plain text. Colour is used only when w is a terminal.
func NewPrinter(w io.Writer, markdown MarkdownRenderer, verbose bool) *Printer {
	if w == nil {
		panic("writer is required")
	}
	return &Printer{
		w:        w,
		markdown: markdown,
		styles:   newStyles(lipgloss.NewRenderer(w)),
		verbose:  verbose,
	}
}

// Consume prints events until events is closed or ctx is done.
func (p *Printer) Consume(ctx context.Context, events <-chan workflow.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			p.Print(ev)
		}
	}
}

// Print renders a single event.
func (p *Printer) Print(ev workflow.Event) {
	switch e := ev.(type) {
	case workflow.ThinkingEvent:
		if p.verbose {
			p.line(p.styles.step.Render(fmt.Sprintf("── step %d ──", e.Step)))
		}
	case workflow.TextEvent:
		text := e.Thought
		if text == "" && p.verbose {
			text = e.Text
		}
		if strings.TrimSpace(text) != "" {
			p.line(p.renderMarkdown(text))
		}
	case workflow.ToolStartEvent:
		p.line(p.styles.tool.Render("→ " + DescribeTool(e.ToolName, e.Args)))
	case workflow.ToolEndEvent:
		style := p.styles.output
		if e.ErrKind != "" {
			style = style.Inherit(p.styles.failure)
		}
		if out := clip(e.Output, maxOutputLines); out != "" {
			p.line(style.Render(out))
		}
	case workflow.FeedbackEvent:
		p.line(p.styles.feedback.Render(clip(e.Message, maxOutputLines)))
	case workflow.FinishRejectedEvent:
		p.line(p.styles.failure.Render(fmt.Sprintf("finish rejected (%s)", e.Reason)))
	case workflow.DoneEvent:
		body := fmt.Sprintf("%s after %d steps", e.Outcome, e.Steps)
		if e.Output != "" {
			body += "\n\n" + clip(e.Output, 3*maxOutputLines)
		}
		p.line(p.styles.done.Render(body))
	}
}

func (p *Printer) renderMarkdown(text string) string {
	if p.markdown == nil {
		return p.styles.thought.Render(text)
	}
	out, err := p.markdown.Render(text)
	if err != nil {
		return p.styles.thought.Render(text)
	}
	return strings.TrimRight(out, "\n")
}

func (p *Printer) line(s string) {
	fmt.Fprintln(p.w, s)
}

// clip keeps the first n lines of s and notes how many were dropped.
func clip(s string, n int) string {
	s = strings.TrimRight(s, "\n")
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n") + fmt.Sprintf("\n… %d more lines", len(lines)-n)
}
