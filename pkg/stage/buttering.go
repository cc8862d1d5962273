package stage

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when a spread lands outside the grid.
var ErrOutOfBounds = errors.New("cell outside butter grid")

// ButterGrid is a square of cells that can only go from dry to buttered.
// A ButterGrid is not safe for concurrent use.
type ButterGrid struct {
	size     int
	cells    []bool
	buttered int
}

// NewButterGrid returns an empty size×size grid.
func NewButterGrid(size int) *ButterGrid {
	if size < 1 {
		size = DefaultGridSize
	}
	return &ButterGrid{size: size, cells: make([]bool, size*size)}
}

// Size returns the edge length of the grid.
func (g *ButterGrid) Size() int { return g.size }

// Spread butters the cell at row, col. It reports whether the cell was
// dry before; spreading an already buttered cell is a no-op.
func (g *ButterGrid) Spread(row, col int) (bool, error) {
	if row < 0 || row >= g.size || col < 0 || col >= g.size {
		return false, fmt.Errorf("spread (%d,%d): %w", row, col, ErrOutOfBounds)
	}
	return g.SpreadIndex(row*g.size + col)
}

// SpreadIndex butters a cell addressed in row-major order.
func (g *ButterGrid) SpreadIndex(i int) (bool, error) {
	if i < 0 || i >= len(g.cells) {
		return false, fmt.Errorf("spread index %d: %w", i, ErrOutOfBounds)
	}
	if g.cells[i] {
		return false, nil
	}
	g.cells[i] = true
	g.buttered++
	return true, nil
}

// IsButtered reports whether the cell at row, col is buttered.
func (g *ButterGrid) IsButtered(row, col int) bool {
	if row < 0 || row >= g.size || col < 0 || col >= g.size {
		return false
	}
	return g.cells[row*g.size+col]
}

// Cells returns a row-major copy of the grid.
func (g *ButterGrid) Cells() []bool {
	return append([]bool(nil), g.cells...)
}

// Buttered returns the number of buttered cells.
func (g *ButterGrid) Buttered() int { return g.buttered }

// Coverage returns the buttered percentage, rounded half-up.
func (g *ButterGrid) Coverage() int {
	return CoverageOf(g.buttered, len(g.cells))
}

// Finish returns the stage result with the current coverage.
func (g *ButterGrid) Finish() Result {
	return Result{Kind: KindButter, Value: g.Coverage()}
}

// CoverageOf is round(100*buttered/total) with halves rounded up.
func CoverageOf(buttered, total int) int {
	if total <= 0 || buttered <= 0 {
		return 0
	}
	if buttered >= total {
		return 100
	}
	return (200*buttered + total) / (2 * total)
}
