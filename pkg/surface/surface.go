// Package surface defines output rendering interfaces for Toastmaster verdicts.
// Implementations handle different output targets: terminal, Markdown, JSON.
package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/toastmaster/toastmaster/pkg/scoring"
)

// Renderer produces formatted output from a Verdict.
type Renderer interface {
	// Render writes the formatted verdict to the writer.
	Render(w io.Writer, v *scoring.Verdict) error
}

// ForFormat returns the renderer for a --format value.
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "text", "":
		return &TerminalRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	}
	return nil, fmt.Errorf("unknown format %q (want text, json or markdown)", format)
}

// StarBar draws filled and empty stars for v's rank.
func StarBar(v *scoring.Verdict, filled, empty string) string {
	f, e := v.Stars()
	return strings.Repeat(filled, f) + strings.Repeat(empty, e)
}
