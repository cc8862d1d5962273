// Package scoring implements the Toastmaster verdict engine.
// It turns the raw metrics collected by the cooking stages into normalized
// sub-scores, a weighted 1-10 rank and a chef comment.
package scoring

// GameStats is the running record of one round. Each stage writes exactly
// one field when it completes.
type GameStats struct {
	SliceQuality   int    `json:"slice_quality"`   // 0-100
	ToastLevel     int    `json:"toast_level"`     // 0-100, 50 is golden
	ButterCoverage int    `json:"butter_coverage"` // 0-100
	Topping        string `json:"topping,omitempty"`
}

// Verdict is the complete output of scoring a round.
// Immutable once computed; enrichment produces a modified copy.
type Verdict struct {
	Scores        SubScores      `json:"scores"`
	Weights       Weights        `json:"weights"`
	Weighted      float64        `json:"weighted"` // 0-100
	FinalScore    int            `json:"final_score"`
	Capped        bool           `json:"capped"`
	CapReason     string         `json:"cap_reason,omitempty"`
	Status        string         `json:"status"`
	Comment       string         `json:"comment"`
	CommentSource CommentSource  `json:"comment_source"`
	Breakdown     []MetricResult `json:"breakdown"`
	Stats         GameStats      `json:"stats"`
	Critique      *Advisory      `json:"critique,omitempty"`
}

// SubScores holds the normalized 0-100 value used for each stage.
type SubScores struct {
	Slice  int `json:"slice"`
	Toast  int `json:"toast"`
	Butter int `json:"butter"`
}

// MetricResult is the output of a single stage metric.
type MetricResult struct {
	Key          string  `json:"key"`          // machine key: "toast"
	Name         string  `json:"name"`         // human name: "Toasting"
	Raw          int     `json:"raw"`          // stat as recorded (after clamping)
	Score        int     `json:"score"`        // normalized 0-100
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"` // score * weight
}

// Advisory is feedback from the external critic. Its score is flavor only
// and never replaces FinalScore.
type Advisory struct {
	Score    int    `json:"score"`
	Comment  string `json:"comment"`
	Fallback bool   `json:"fallback"`
}

// CommentSource records who wrote Verdict.Comment.
type CommentSource string

const (
	CommentLocal  CommentSource = "local"
	CommentCritic CommentSource = "critic"
)

// Headline labels shown above the stars.
const (
	StatusRaw      = "IT'S RAW!"
	StatusBurnt    = "BURNT!"
	StatusWellDone = "WELL DONE"
)

// WithCritique returns a copy of v carrying the critic's feedback. A real
// (non-fallback) comment replaces the local one; the rank is untouched.
func (v Verdict) WithCritique(a Advisory) Verdict {
	out := v
	out.Breakdown = append([]MetricResult(nil), v.Breakdown...)
	out.Critique = &a
	if !a.Fallback && a.Comment != "" {
		out.Comment = a.Comment
		out.CommentSource = CommentCritic
	}
	return out
}

// Stars returns the filled/empty star counts for a 10-star display.
func (v Verdict) Stars() (filled, empty int) {
	filled = v.FinalScore
	if filled < 0 {
		filled = 0
	}
	if filled > MaxFinalScore {
		filled = MaxFinalScore
	}
	return filled, MaxFinalScore - filled
}
