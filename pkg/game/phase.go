// Package game orders the cooking stages of a round and turns the stats
// they produce into a verdict.
package game

import (
	"errors"
	"fmt"

	"github.com/toastmaster/toastmaster/pkg/stage"
)

// Phase is a step of a round.
type Phase string

const (
	PhaseStart   Phase = "START"
	PhaseCut     Phase = "CUT"
	PhaseToast   Phase = "TOAST"
	PhaseButter  Phase = "BUTTER"
	PhaseTopping Phase = "TOPPING"
	PhaseResult  Phase = "RESULT"
)

var (
	// ErrWrongPhase is returned when an action is not allowed in the
	// current phase.
	ErrWrongPhase = errors.New("action not allowed in current phase")
	// ErrStageMismatch is returned when a stage result does not belong to
	// the current phase.
	ErrStageMismatch = errors.New("stage result does not match phase")
	// ErrNoVerdict is returned when a verdict is requested before RESULT.
	ErrNoVerdict = errors.New("no verdict until the round is finished")
)

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	switch p {
	case PhaseStart, PhaseCut, PhaseToast, PhaseButter, PhaseTopping, PhaseResult:
		return true
	}
	return false
}

// Stage returns the stage kind played in p.
func (p Phase) Stage() (stage.Kind, bool) {
	switch p {
	case PhaseCut:
		return stage.KindCut, true
	case PhaseToast:
		return stage.KindToast, true
	case PhaseButter:
		return stage.KindButter, true
	case PhaseTopping:
		return stage.KindTopping, true
	}
	return "", false
}

// next returns the phase after p.
func next(p Phase, topping bool) Phase {
	switch p {
	case PhaseStart:
		return PhaseCut
	case PhaseCut:
		return PhaseToast
	case PhaseToast:
		return PhaseButter
	case PhaseButter:
		if topping {
			return PhaseTopping
		}
		return PhaseResult
	case PhaseTopping:
		return PhaseResult
	}
	panic(fmt.Sprintf("game: no phase after %s", p))
}
