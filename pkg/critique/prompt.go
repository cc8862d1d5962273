package critique

import (
	"fmt"

	"github.com/toastmaster/toastmaster/pkg/scoring"
)

// CritiquePrompt asks for a one-sentence judgement of stats. doneness is
// the RAW/PERFECT/BURNT label for the toast level.
func CritiquePrompt(stats scoring.GameStats, doneness string) string {
	topping := ""
	if stats.Topping != "" {
		topping = fmt.Sprintf("\n- Topping: %s", stats.Topping)
	}
	return fmt.Sprintf(`You are a harsh but fair refined food critic.
A player has just prepared a piece of toast in a cooking mini-game.

Here are their stats:
- Slicing Precision: %d%%
- Toast Level: %d%% (Status: %s)
- Butter Coverage: %d%%%s

Give me a JSON response with a score out of 10 and a short, punchy, 1-sentence critique.
Be funny if they failed, praise them if they did well.`,
		stats.SliceQuality, stats.ToastLevel, doneness, stats.ButterCoverage, topping)
}

// ToppingPrompt asks for three topping ideas matching a craving.
func ToppingPrompt(preference string) string {
	return fmt.Sprintf(`The user wants a topping for their toast. Their craving is: %q.
Suggest exactly 3 distinct, creative but edible toast toppings.
Each name must be at most %d words. Respond with a JSON array of strings.`,
		preference, MaxToppingWords)
}

// schema is the subset of the OpenAPI schema object the collaborator
// accepts for structured output.
type schema struct {
	Type       string            `json:"type"`
	Properties map[string]schema `json:"properties,omitempty"`
	Items      *schema           `json:"items,omitempty"`
	Required   []string          `json:"required,omitempty"`
}

var critiqueSchema = schema{
	Type: "OBJECT",
	Properties: map[string]schema{
		"score":   {Type: "NUMBER"},
		"comment": {Type: "STRING"},
	},
	Required: []string{"score", "comment"},
}

var toppingSchema = schema{
	Type:  "ARRAY",
	Items: &schema{Type: "STRING"},
}
