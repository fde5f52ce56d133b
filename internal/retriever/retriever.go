package retriever

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"quizrag/internal/domain"
	"quizrag/internal/indexstore"
	"quizrag/internal/logging"
)

// Loader yields the current index snapshot, building it if needed.
type Loader interface {
	Load(ctx context.Context) (*indexstore.Snapshot, error)
}

// Retriever embeds queries and returns the nearest chunks from the index.
type Retriever struct {
	loader   Loader
	embedder domain.Embedder
	logger   *log.Logger
}

var _ domain.Retriever = (*Retriever)(nil)

func New(loader Loader, embedder domain.Embedder, logger *log.Logger) *Retriever {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Retriever{loader: loader, embedder: embedder, logger: logger}
}

// IsExit reports whether a query asks to leave rather than search.
func IsExit(query string) bool {
	return strings.EqualFold(strings.TrimSpace(query), "exit")
}

// Search returns the texts of the k nearest chunks joined by newlines, nearest first.
// Blank and exit queries return "" without loading the index.
func (r *Retriever) Search(ctx context.Context, query string, k int) (string, error) {
	hits, err := r.Hits(ctx, query, k)
	if err != nil {
		return "", err
	}
	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Record.Text
	}
	return strings.Join(texts, "\n"), nil
}

// Hits is Search without the concatenation.
func (r *Retriever) Hits(ctx context.Context, query string, k int) ([]indexstore.Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" || IsExit(query) {
		return nil, nil
	}
	snap, err := r.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Count() == 0 {
		return nil, nil
	}
	k = max(1, min(k, snap.Count()))

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder %s returned %d vectors for one query", r.embedder.Name(), len(vectors))
	}
	hits, err := snap.Search(vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("searching index (rebuild it if the embedder changed): %w", err)
	}
	r.logger.Debug("retrieved", "query", query, "k", k, "hits", len(hits))
	return hits, nil
}
