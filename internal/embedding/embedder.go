package embedding

import (
	"context"
	"errors"
)

// ErrUnavailable reports that the embedding backend could not be reached
// or did not return a vector. Callers decide whether to retry.
var ErrUnavailable = errors.New("embedding model unavailable")

// Embedder maps text to a fixed-dimension vector. Embed is deterministic
// for a fixed model version; EmbedBatch preserves input order.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}
