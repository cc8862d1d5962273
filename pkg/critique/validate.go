package critique

import (
	"math"
	"strings"
)

// MaxToppingWords bounds the length of a suggested topping name.
const MaxToppingWords = 4

// NormalizeToppings trims the names and checks there are exactly three
// distinct, non-empty names of at most MaxToppingWords words.
func NormalizeToppings(names []string) ([]string, error) {
	if len(names) != 3 {
		return nil, malformed("toppings", "got %d names, want 3", len(names))
	}
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, malformed("toppings", "empty name")
		}
		if w := len(strings.Fields(n)); w > MaxToppingWords {
			return nil, malformed("toppings", "%q has %d words", n, w)
		}
		key := strings.ToLower(n)
		if seen[key] {
			return nil, malformed("toppings", "duplicate name %q", n)
		}
		seen[key] = true
		out = append(out, n)
	}
	return out, nil
}

// normalizeFeedback rounds a raw score and checks the result is usable.
func normalizeFeedback(score float64, comment string) (Feedback, error) {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return Feedback{}, malformed("critique", "score is not a number")
	}
	s := int(math.Round(score))
	if s < 1 || s > 10 {
		return Feedback{}, malformed("critique", "score %v outside 1-10", score)
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return Feedback{}, malformed("critique", "empty comment")
	}
	return Feedback{Score: s, Comment: comment}, nil
}
