package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/toastmaster/toastmaster/pkg/critique"
)

// Recorder writes guarded collaborator exchanges to a StorageClient. It
// satisfies critique.Recorder.
type Recorder struct {
	store StorageClient
}

// NewRecorder returns a recorder writing to store.
func NewRecorder(store StorageClient) *Recorder {
	return &Recorder{store: store}
}

// Record stores ex as indented JSON under its kind and id.
func (r *Recorder) Record(ctx context.Context, ex critique.Exchange) error {
	data, err := json.MarshalIndent(ex, "", "  ")
	if err != nil {
		return fmt.Errorf("encode exchange %s: %w", ex.ID, err)
	}
	return r.store.PutExchange(ctx, ex.Kind, ex.ID, data)
}

// Lookup reads an archived exchange back.
func (r *Recorder) Lookup(ctx context.Context, kind, id string) (critique.Exchange, error) {
	data, err := r.store.GetExchange(ctx, kind, id)
	if err != nil {
		return critique.Exchange{}, err
	}
	var ex critique.Exchange
	if err := json.Unmarshal(data, &ex); err != nil {
		return critique.Exchange{}, fmt.Errorf("decode exchange %s: %w", id, err)
	}
	return ex, nil
}
