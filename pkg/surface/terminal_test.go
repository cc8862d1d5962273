package surface_test

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/toastmaster/toastmaster/pkg/scoring"
	"github.com/toastmaster/toastmaster/pkg/surface"
)

func sampleVerdict() *scoring.Verdict {
	v := scoring.ComputeVerdict(scoring.GameStats{SliceQuality: 85, ToastLevel: 20, ButterCoverage: 60, Topping: "Honey"})
	return &v
}

func TestTerminalRenderer_BasicOutput(t *testing.T) {
	// Set NO_COLOR to avoid ANSI codes in test comparison
	t.Setenv("NO_COLOR", "1")

	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer

	if err := r.Render(&buf, sampleVerdict()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Toastmaster: IT'S RAW! (3/10)",
		"★★★☆☆☆☆☆☆☆",
		scoring.CommentRaw,
		scoring.CapReasonRaw,
		"Breakdown:",
		"Cutting",
		"Toasting",
		"Buttering",
		"Topping: Honey",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
	if strings.Contains(output, "\033[") {
		t.Error("unexpected ANSI codes with NO_COLOR set")
	}
}

func TestTerminalRenderer_Critique(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	v := scoring.ComputeVerdict(scoring.GameStats{SliceQuality: 100, ToastLevel: 50, ButterCoverage: 100})
	enriched := v.WithCritique(scoring.Advisory{Score: 4, Comment: "Too perfect. Suspicious."})

	var buf bytes.Buffer
	(&surface.TerminalRenderer{}).Render(&buf, &enriched)
	output := buf.String()
	if !strings.Contains(output, "Too perfect. Suspicious.") || !strings.Contains(output, "(the critic)") {
		t.Errorf("expected critic comment:\n%s", output)
	}
	if !strings.Contains(output, "Critic's own score: 4/10") {
		t.Errorf("expected advisory score:\n%s", output)
	}

	fallback := v.WithCritique(scoring.Advisory{Score: 5, Comment: "offline", Fallback: true})
	buf.Reset()
	(&surface.TerminalRenderer{}).Render(&buf, &fallback)
	if !strings.Contains(buf.String(), "could not be reached") {
		t.Errorf("expected fallback notice:\n%s", buf.String())
	}
}

func TestTerminalRenderer_ColorRespected(t *testing.T) {
	// Without NO_COLOR, output should have ANSI codes
	t.Setenv("NO_COLOR", "")
	os.Unsetenv("NO_COLOR")

	var buf bytes.Buffer
	if err := (&surface.TerminalRenderer{}).Render(&buf, sampleVerdict()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(buf.String(), "\033[") {
		t.Error("expected ANSI escape codes when NO_COLOR is not set")
	}
}

func TestMarkdownRenderer(t *testing.T) {
	out := surface.BuildScorecard(sampleVerdict())
	for _, want := range []string{
		"## :red_circle: IT'S RAW! 3/10",
		"| Toasting | 20 | 40 | 0.50 | 20.0 |",
		"**" + scoring.CapReasonRaw + "**",
		"Topping: _Honey_",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in scorecard:\n%s", want, out)
		}
	}
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := (&surface.JSONRenderer{}).Render(&buf, sampleVerdict()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["final_score"] != float64(3) || decoded["capped"] != true {
		t.Errorf("unexpected JSON: %s", buf.String())
	}
}

func TestForFormat(t *testing.T) {
	for _, f := range []string{"", "text", "json", "markdown", "md"} {
		if _, err := surface.ForFormat(f); err != nil {
			t.Errorf("ForFormat(%q) error: %v", f, err)
		}
	}
	if _, err := surface.ForFormat("yaml"); err == nil {
		t.Error("ForFormat(yaml) accepted")
	}
}
