package stage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/toastmaster/toastmaster/pkg/critique"
)

var (
	// ErrEmptyPreference is returned for a blank craving; the suggester is
	// not called.
	ErrEmptyPreference = errors.New("preference is empty")
	// ErrNoSuggestion is returned when Choose indexes past the suggestions.
	ErrNoSuggestion = errors.New("no such suggestion")
	// ErrEmptyTopping is returned for a blank custom topping.
	ErrEmptyTopping = errors.New("topping is empty")
)

// QuickPicks are the one-tap cravings offered before any suggestion.
var QuickPicks = []string{"Sweet", "Savory", "Surprise me"}

// maxToppingLen bounds a custom topping name.
const maxToppingLen = 80

// Suggester proposes topping names for a craving.
type Suggester interface {
	SuggestToppings(ctx context.Context, preference string) ([]string, error)
}

// ToppingStation asks a Suggester for ideas and records the player's pick.
// The topping never influences the final score.
type ToppingStation struct {
	suggester   Suggester
	preference  string
	suggestions []string
}

// NewToppingStation returns a station backed by s.
func NewToppingStation(s Suggester) *ToppingStation {
	return &ToppingStation{suggester: s}
}

// RestoreToppingStation rebuilds a station that already holds suggestions.
func RestoreToppingStation(s Suggester, preference string, suggestions []string) *ToppingStation {
	return &ToppingStation{
		suggester:   s,
		preference:  preference,
		suggestions: append([]string(nil), suggestions...),
	}
}

// Suggest fetches ideas for preference. A suggester error falls back to
// the fixed triple, so the player can always pick something.
func (t *ToppingStation) Suggest(ctx context.Context, preference string) ([]string, error) {
	preference = strings.TrimSpace(preference)
	if preference == "" {
		return nil, ErrEmptyPreference
	}

	names, err := t.suggester.SuggestToppings(ctx, preference)
	if err != nil || len(names) == 0 {
		names = critique.FallbackToppings()
	}
	t.preference = preference
	t.suggestions = append([]string(nil), names...)
	return t.Suggestions(), nil
}

// Preference returns the craving the current suggestions were made for.
func (t *ToppingStation) Preference() string { return t.preference }

// Suggestions returns a copy of the latest suggestions.
func (t *ToppingStation) Suggestions() []string {
	return append([]string(nil), t.suggestions...)
}

// Choose picks suggestion i and completes the stage.
func (t *ToppingStation) Choose(i int) (Result, error) {
	if i < 0 || i >= len(t.suggestions) {
		return Result{}, fmt.Errorf("choose %d of %d: %w", i, len(t.suggestions), ErrNoSuggestion)
	}
	return Result{Kind: KindTopping, Topping: t.suggestions[i]}, nil
}

// Custom completes the stage with a topping the player typed.
func (t *ToppingStation) Custom(name string) (Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{}, ErrEmptyTopping
	}
	if r := []rune(name); len(r) > maxToppingLen {
		name = string(r[:maxToppingLen])
	}
	return Result{Kind: KindTopping, Topping: name}, nil
}
