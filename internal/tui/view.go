package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/toastmaster/toastmaster/pkg/game"
	"github.com/toastmaster/toastmaster/pkg/scoring"
	"github.com/toastmaster/toastmaster/pkg/stage"
	"github.com/toastmaster/toastmaster/pkg/surface"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E0A040")).MarginBottom(1)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#8B5A2B")).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E53935")).Bold(true)
	butterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F5D76E"))
	crumbStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B5A2B"))
	cursorStyle = lipgloss.NewStyle().Reverse(true)
)

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var body, help string
	phase := m.machine.Phase()
	switch phase {
	case game.PhaseStart:
		body = "A fresh loaf is waiting.\nSlice it, toast it, butter it and face the Toastmaster."
		help = helpLine(keys.Next, keys.Quit)
	case game.PhaseCut:
		body = m.viewCut()
		help = helpLine(withDesc(keys.Action, "cut"), withDesc(keys.Next, "done"), keys.Quit)
	case game.PhaseToast:
		body = m.viewToast()
		desc := "start"
		if m.toaster.Active() {
			desc = "pop"
		}
		help = helpLine(withDesc(keys.Action, desc), keys.Quit)
	case game.PhaseButter:
		body = m.viewButter()
		help = helpLine(keys.Up, keys.Down, keys.Left, keys.Right, withDesc(keys.Action, "spread"), withDesc(keys.Next, "done"), keys.Quit)
	case game.PhaseTopping:
		body = m.viewTopping()
		help = helpLine(keys.Pick, withDesc(keys.Next, "ask/choose"), keys.Quit)
	case game.PhaseResult:
		body = m.viewResult()
		help = helpLine(keys.Restart, keys.Quit)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("TOASTMASTER · %s", phase)))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(body))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(help))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) viewCut() string {
	cuts := m.cutter.Cuts()
	loaf := strings.Repeat("▮", cuts) + strings.Repeat("▭", max(0, m.cfg.Stages.IdealCuts-cuts))
	return fmt.Sprintf("Slice the bread. Aim for %d slices.\n\n%s\n\nSlices: %d", m.cfg.Stages.IdealCuts, loaf, cuts)
}

func (m *Model) viewToast() string {
	level := m.toaster.Level()
	const width = 40
	filled := level * width / stage.MaxToastLevel
	bar := toastStyle(level).Render(strings.Repeat("█", filled)) + strings.Repeat("░", width-filled)
	hint := "Pop it when it turns golden."
	if !m.toaster.Active() {
		hint = "Press space to push the lever down."
	}
	return fmt.Sprintf("%s\n\n[%s] %3d%%", hint, bar, level)
}

// toastStyle colors the bar by doneness.
func toastStyle(level int) lipgloss.Style {
	switch {
	case level < scoring.RawToastBelow:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#F5E6C8"))
	case level <= scoring.BurntToastAbove:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#D2912F"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#3E2723"))
	}
}

func (m *Model) viewButter() string {
	var b strings.Builder
	b.WriteString("Spread the butter to every corner.\n\n")
	size := m.grid.Size()
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			cell := crumbStyle.Render("▒▒")
			if m.grid.IsButtered(r, c) {
				cell = butterStyle.Render("██")
			}
			if r == m.row && c == m.col {
				cell = cursorStyle.Render(cell)
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nCoverage: %d%%", m.grid.Coverage())
	return b.String()
}

func (m *Model) viewTopping() string {
	var b strings.Builder
	if m.thinking {
		b.WriteString("The chef is thinking...")
		return b.String()
	}
	suggestions := m.topping.Suggestions()
	if len(suggestions) == 0 {
		b.WriteString("What are you craving?\n\n")
		for i, q := range stage.QuickPicks {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, q)
		}
		b.WriteString("\nOr type it: ")
		b.WriteString(m.input.View())
		return b.String()
	}
	fmt.Fprintf(&b, "For something %s, the chef suggests:\n\n", strings.ToLower(m.topping.Preference()))
	for i, s := range suggestions {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, s)
	}
	b.WriteString("\nOr type your own: ")
	b.WriteString(m.input.View())
	return b.String()
}

func (m *Model) viewResult() string {
	v := m.verdict
	if v == nil {
		return "Scoring..."
	}
	var b strings.Builder

	headline := goodStyle
	if v.Capped {
		headline = badStyle
	}
	fmt.Fprintf(&b, "%s  %d/10\n", headline.Render(v.Status), v.FinalScore)
	b.WriteString(surface.StarBar(v, "★", "☆"))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%q\n", v.Comment)
	if m.thinking {
		b.WriteString(helpStyle.Render("(the critic is tasting...)"))
		b.WriteString("\n")
	}
	if v.CapReason != "" {
		b.WriteString(badStyle.Render(v.CapReason))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	for _, mr := range v.Breakdown {
		fmt.Fprintf(&b, "%-10s %3d  ×%.1f\n", mr.Name, mr.Score, mr.Weight)
	}
	if v.Stats.Topping != "" {
		fmt.Fprintf(&b, "Topping    %s\n", v.Stats.Topping)
	}
	if v.Critique != nil && !v.Critique.Fallback {
		fmt.Fprintf(&b, "\nThe critic would give it %d/10.", v.Critique.Score)
	}
	return b.String()
}

func withDesc(b key.Binding, desc string) key.Binding {
	b.SetHelp(b.Help().Key, desc)
	return b
}
