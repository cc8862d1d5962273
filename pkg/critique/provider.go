// Package critique talks to the chef collaborator: a text-generation
// service that suggests toppings and writes a one-line critique of a
// finished round.
//
// The collaborator is never trusted to be available. Guard wraps any
// Provider with a deadline and substitutes fixed fallbacks, so callers
// always get an answer and the round's verdict never waits on the network.
//
// # Usage
//
//	guard := critique.NewGuard(critique.NewClient(critique.Config{
//	    APIKey: key,
//	}), critique.GuardConfig{Timeout: 8 * time.Second})
//
//	names, _ := guard.SuggestToppings(ctx, "savory")
//	advisory := guard.Review(ctx, stats)
package critique

import (
	"context"

	"github.com/toastmaster/toastmaster/pkg/scoring"
)

// Provider is the collaborator contract.
type Provider interface {
	// SuggestToppings returns exactly three short, distinct topping names.
	SuggestToppings(ctx context.Context, preference string) ([]string, error)
	// Critique judges a finished round.
	Critique(ctx context.Context, stats scoring.GameStats) (Feedback, error)
}

// Feedback is the collaborator's opinion of a round. Score is advisory.
type Feedback struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// Advisory converts f into the form attached to a verdict.
func (f Feedback) Advisory(fallback bool) scoring.Advisory {
	return scoring.Advisory{Score: f.Score, Comment: f.Comment, Fallback: fallback}
}

// FallbackComment is used whenever no critique could be obtained.
const FallbackComment = "My senses are dull today, but that looks edible. (AI connection failed)"

// FallbackScore accompanies FallbackComment.
const FallbackScore = 5

// FallbackToppings returns the suggestions used when the collaborator
// cannot be reached. A fresh slice is returned on every call.
func FallbackToppings() []string {
	return []string{"Strawberry Jam", "Honey", "Cheddar Cheese"}
}

// FallbackFeedback returns the critique used when the collaborator cannot
// be reached.
func FallbackFeedback() Feedback {
	return Feedback{Score: FallbackScore, Comment: FallbackComment}
}
