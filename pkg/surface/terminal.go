package surface

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/toastmaster/toastmaster/pkg/scoring"
)

// TerminalRenderer renders a Verdict as colored terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func scoreColor(v *scoring.Verdict) string {
	if noColor() {
		return ""
	}
	switch {
	case v.Capped:
		return colorRed
	case v.FinalScore >= 7:
		return colorGreen
	case v.FinalScore >= 4:
		return colorYellow
	default:
		return colorRed
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) Render(w io.Writer, v *scoring.Verdict) error {
	sc := scoreColor(v)

	// Header
	fmt.Fprintf(w, "%s\n", bold(fmt.Sprintf("Toastmaster: %s (%d/10)",
		colored(v.Status, sc), v.FinalScore)))
	fmt.Fprintf(w, "%s\n\n", colored(StarBar(v, "★", "☆"), colorYellow))

	quoted := `"` + v.Comment + `"`
	for _, line := range wrapText(quoted, 70) {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if v.CommentSource == scoring.CommentCritic {
		fmt.Fprintf(w, "  %s\n", dim("(the critic)"))
	}
	fmt.Fprintln(w)

	if v.Capped {
		fmt.Fprintf(w, "%s %s\n\n", colored("!", colorRed), bold(v.CapReason))
	}

	// Breakdown
	fmt.Fprintln(w, "Breakdown:")
	for _, mr := range v.Breakdown {
		fmt.Fprintf(w, "  %-10s %3d  %s\n", mr.Name, mr.Score,
			dim(fmt.Sprintf("raw %3d  x %.2f = %5.1f", mr.Raw, mr.Weight, mr.Contribution)))
	}
	fmt.Fprintf(w, "  %-10s %5.1f\n\n", "Weighted", v.Weighted)

	if v.Stats.Topping != "" {
		fmt.Fprintf(w, "Topping: %s\n\n", v.Stats.Topping)
	}

	if v.Critique != nil {
		if v.Critique.Fallback {
			fmt.Fprintf(w, "%s\n\n", dim("The critic could not be reached."))
		} else {
			fmt.Fprintf(w, "%s\n\n", dim(fmt.Sprintf("Critic's own score: %d/10 (for fun only)", v.Critique.Score)))
		}
	}

	return nil
}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
