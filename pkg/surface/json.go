package surface

import (
	"encoding/json"
	"io"

	"github.com/toastmaster/toastmaster/pkg/scoring"
)

// JSONRenderer marshals a Verdict to indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, v *scoring.Verdict) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
