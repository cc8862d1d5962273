package scoring

// finding is the outcome of the first critical rule that matched.
type finding struct {
	caps    bool
	reason  string
	status  string
	comment string
}

// firstFinding evaluates the rules in priority order: raw, burnt, dry.
// Only raw and burnt cap the rank; dry toast only changes the comment.
func (e *Engine) firstFinding(s GameStats) (finding, bool) {
	t := e.cfg.Thresholds
	switch {
	case s.ToastLevel < t.RawBelow:
		return finding{caps: true, reason: CapReasonRaw, status: StatusRaw, comment: CommentRaw}, true
	case s.ToastLevel > t.BurntAbove:
		return finding{caps: true, reason: CapReasonBurnt, status: StatusBurnt, comment: CommentBurnt}, true
	case s.ButterCoverage < t.DryBelow:
		return finding{comment: CommentDry}, true
	}
	return finding{}, false
}

// Doneness labels a toast level the way the critic prompt describes it.
// BURNT starts at ScorchedAbove, which is stricter than the scoring cap.
func (e *Engine) Doneness(level int) string {
	level = clampStat(level)
	switch {
	case level < e.cfg.Thresholds.RawBelow:
		return "RAW"
	case level > e.cfg.Thresholds.ScorchedAbove:
		return "BURNT"
	default:
		return "PERFECT"
	}
}
