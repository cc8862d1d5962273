package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/toastmaster/toastmaster/pkg/scoring"
)

// MarkdownRenderer produces a shareable Markdown scorecard.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(w io.Writer, v *scoring.Verdict) error {
	_, err := io.WriteString(w, BuildScorecard(v))
	return err
}

// BuildScorecard renders v as Markdown.
func BuildScorecard(v *scoring.Verdict) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## %s %s %d/10\n\n", statusIcon(v), v.Status, v.FinalScore))
	sb.WriteString(StarBar(v, ":star:", ":white_small_square:"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("> %s\n\n", v.Comment))

	if v.Capped {
		sb.WriteString(fmt.Sprintf("**%s**\n\n", v.CapReason))
	}

	sb.WriteString("| Stage | Raw | Score | Weight | Contribution |\n")
	sb.WriteString("|-------|-----|-------|--------|--------------|\n")
	for _, mr := range v.Breakdown {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %.2f | %.1f |\n",
			mr.Name, mr.Raw, mr.Score, mr.Weight, mr.Contribution))
	}
	sb.WriteString(fmt.Sprintf("| **Weighted** | | | | **%.1f** |\n\n", v.Weighted))

	if v.Stats.Topping != "" {
		sb.WriteString(fmt.Sprintf("Topping: _%s_\n\n", v.Stats.Topping))
	}
	if v.Critique != nil && !v.Critique.Fallback {
		sb.WriteString(fmt.Sprintf("Critic's own score: %d/10 (for fun only)\n", v.Critique.Score))
	}

	return sb.String()
}

func statusIcon(v *scoring.Verdict) string {
	switch {
	case v.Capped:
		return ":red_circle:"
	case v.FinalScore >= 7:
		return ":green_circle:"
	case v.FinalScore >= 4:
		return ":yellow_circle:"
	default:
		return ":orange_circle:"
	}
}
