package stage

import "math"

// Cutter counts knife strokes on the loaf. The count is unbounded; too many
// cuts turn the bread to crumbs and the score to zero. A Cutter is not safe
// for concurrent use.
type Cutter struct {
	ideal   int
	penalty int
	cuts    int
}

// NewCutter returns a cutter scoring against cfg's ideal and penalty.
func NewCutter(cfg Config) *Cutter {
	return &Cutter{ideal: cfg.IdealCuts, penalty: cfg.CutPenalty}
}

// Cut records one stroke and returns the running count.
func (c *Cutter) Cut() int {
	return c.CutN(1)
}

// CutN records n strokes at once. Negative n is ignored and the count
// saturates at math.MaxInt.
func (c *Cutter) CutN(n int) int {
	if n <= 0 {
		return c.cuts
	}
	if n > math.MaxInt-c.cuts {
		c.cuts = math.MaxInt
	} else {
		c.cuts += n
	}
	return c.cuts
}

// Cuts returns the number of strokes so far.
func (c *Cutter) Cuts() int { return c.cuts }

// Finish scores the slicing and returns the stage result.
func (c *Cutter) Finish() Result {
	return Result{Kind: KindCut, Value: CutScore(c.cuts, c.ideal, c.penalty)}
}

// CutScore is max(0, 100 - penalty*|cuts-ideal|). No cuts always scores
// zero, whatever the penalty.
func CutScore(cuts, ideal, penalty int) int {
	if cuts <= 0 {
		return 0
	}
	diff := cuts - ideal
	if diff < 0 {
		diff = -diff
	}
	// Beyond 100/penalty strokes the score is already zero; checking first
	// keeps penalty*diff from overflowing.
	if penalty > 0 && diff > 100/penalty {
		return 0
	}
	score := 100 - penalty*diff
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
