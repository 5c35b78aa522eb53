package ui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders model text for the terminal.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

// GlamourRenderer renders markdown with glamour's auto-detected style.
type GlamourRenderer struct {
	tr *glamour.TermRenderer
}

// NewGlamourRenderer creates a renderer wrapping at width columns.
func NewGlamourRenderer(width int) (*GlamourRenderer, error) {
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return &GlamourRenderer{tr: tr}, nil
}

func (g *GlamourRenderer) Render(markdown string) (string, error) {
	return g.tr.Render(markdown)
}
