package critique

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/toastmaster/toastmaster/pkg/scoring"
)

// Local is an offline Provider. Its answers are a pure function of the
// input, which makes it useful without an API key and in tests.
type Local struct {
	engine *scoring.Engine
}

// NewLocal returns an offline provider scoring with engine. A nil engine
// uses the canonical one.
func NewLocal(engine *scoring.Engine) *Local {
	if engine == nil {
		engine = scoring.DefaultEngine()
	}
	return &Local{engine: engine}
}

var toppingTable = []struct {
	keywords []string
	names    []string
}{
	{[]string{"sweet", "sugar", "dessert"}, []string{"Strawberry Jam", "Honey", "Cinnamon Sugar"}},
	{[]string{"savory", "savoury", "salty"}, []string{"Cheddar Cheese", "Smashed Avocado", "Crispy Bacon"}},
	{[]string{"spicy", "hot", "chili"}, []string{"Chili Crisp", "Jalapeno Cream Cheese", "Sriracha Mayo"}},
	{[]string{"fruit", "fresh"}, []string{"Sliced Banana", "Fresh Berries", "Apple Butter"}},
	{[]string{"healthy", "light", "vegan"}, []string{"Hummus", "Tomato and Basil", "Almond Butter"}},
	{[]string{"breakfast", "morning"}, []string{"Fried Egg", "Marmalade", "Peanut Butter"}},
}

var surprisePool = []string{
	"Miso Butter", "Nutella", "Baked Beans", "Ricotta and Fig", "Kaya Jam",
	"Pesto", "Marmite", "Dulce de Leche", "Smoked Salmon", "Pickled Onion",
}

// SuggestToppings matches preference against a keyword table. Unmatched
// cravings, "Surprise me" included, draw three names from a fixed pool
// keyed by the preference text.
func (l *Local) SuggestToppings(_ context.Context, preference string) ([]string, error) {
	p := strings.ToLower(preference)
	for _, row := range toppingTable {
		for _, kw := range row.keywords {
			if strings.Contains(p, kw) {
				return append([]string(nil), row.names...), nil
			}
		}
	}

	start := int(hash(p) % uint32(len(surprisePool)))
	out := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		out = append(out, surprisePool[(start+i*3)%len(surprisePool)])
	}
	return out, nil
}

var localRemarks = map[string][]string{
	"raw":    {"Pale as a ghost. The bread barely met the heat.", "This is warm bread, not toast."},
	"burnt":  {"I can taste the smoke alarm.", "Charcoal is for barbecues, not breakfast."},
	"dry":    {"Lovely colour, shame about the desert texture.", "Butter exists for a reason. Use it."},
	"great":  {"Golden, crisp and evenly buttered. Lovely.", "That is how toast should look."},
	"decent": {"Solid effort with room to tighten up.", "Not bad at all. A little more care next time."},
	"rough":  {"Edible, technically.", "I have seen worse, but not often."},
}

// Critique derives the score from the engine and picks a remark for the
// round's most notable trait.
func (l *Local) Critique(_ context.Context, stats scoring.GameStats) (Feedback, error) {
	v := l.engine.ComputeVerdict(stats)
	th := l.engine.Config().Thresholds

	var key string
	switch {
	case v.Stats.ToastLevel < th.RawBelow:
		key = "raw"
	case v.Stats.ToastLevel > th.BurntAbove:
		key = "burnt"
	case v.Stats.ButterCoverage < th.DryBelow:
		key = "dry"
	case v.FinalScore >= 8:
		key = "great"
	case v.FinalScore >= 5:
		key = "decent"
	default:
		key = "rough"
	}
	remarks := localRemarks[key]
	seed := uint32(v.Stats.SliceQuality*10201 + v.Stats.ToastLevel*101 + v.Stats.ButterCoverage)
	return Feedback{Score: v.FinalScore, Comment: remarks[seed%uint32(len(remarks))]}, nil
}

func hash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
