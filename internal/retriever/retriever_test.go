package retriever

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"quizrag/internal/chunker"
	"quizrag/internal/indexstore"
)

type mapExtractor map[string]string

func (m mapExtractor) Extract(_ context.Context, path string) (string, error) {
	text, ok := m[path]
	if !ok {
		return "", errors.New("missing")
	}
	return text, nil
}

// axisEmbedder places texts mentioning "cell", "atom" or "star" on separate axes.
type axisEmbedder struct{ calls int }

func (e *axisEmbedder) Name() string   { return "axis" }
func (e *axisEmbedder) Dimension() int { return 3 }

func (e *axisEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		t = strings.ToLower(t)
		out[i] = []float32{
			float32(strings.Count(t, "cell")),
			float32(strings.Count(t, "atom")),
			float32(strings.Count(t, "star")),
		}
	}
	return out, nil
}

type countingLoader struct {
	store *indexstore.Store
	calls int
}

func (l *countingLoader) Load(ctx context.Context) (*indexstore.Snapshot, error) {
	l.calls++
	return l.store.Load(ctx)
}

func newRetriever(t *testing.T) (*Retriever, *countingLoader, *axisEmbedder) {
	t.Helper()
	dir := t.TempDir()
	emb := &axisEmbedder{}
	store := indexstore.New(indexstore.Options{
		IndexPath:    filepath.Join(dir, "index.bin"),
		MetadataPath: filepath.Join(dir, "metadata.json"),
	}, mapExtractor{
		"bio.pdf":  "The cell is the unit of life. A cell cell membrane holds it.",
		"phys.pdf": "An atom has a nucleus. A star fuses hydrogen.",
	}, chunker.NewSentenceChunker(5), emb)
	if _, err := store.Build(context.Background(), []string{"bio.pdf", "phys.pdf"}); err != nil {
		t.Fatal(err)
	}
	emb.calls = 0
	loader := &countingLoader{store: store}
	return New(loader, emb, nil), loader, emb
}

func TestRetriever_SkipsBlankAndExit(t *testing.T) {
	r, loader, emb := newRetriever(t)
	for _, q := range []string{"", "   ", "exit", " EXIT ", "Exit"} {
		got, err := r.Search(context.Background(), q, 3)
		if err != nil || got != "" {
			t.Errorf("Search(%q) = %q, %v", q, got, err)
		}
	}
	if loader.calls != 0 || emb.calls != 0 {
		t.Errorf("index touched: loads=%d embeds=%d", loader.calls, emb.calls)
	}
}

func TestRetriever_NearestFirst(t *testing.T) {
	r, _, _ := newRetriever(t)
	got, err := r.Search(context.Background(), "cell", 2)
	if err != nil {
		t.Fatal(err)
	}
	want := "The cell is the unit of life.\nA cell cell membrane holds it."
	if got != want {
		t.Errorf("Search = %q, want %q", got, want)
	}
}

func TestRetriever_ClampsK(t *testing.T) {
	r, _, _ := newRetriever(t)
	hits, err := r.Hits(context.Background(), "star", 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 4 {
		t.Errorf("k=100 gave %d hits, want all 4", len(hits))
	}
	if hits[0].Record.PDF != "phys.pdf" || !strings.Contains(hits[0].Record.Text, "star") {
		t.Errorf("first hit = %+v", hits[0])
	}

	hits, err = r.Hits(context.Background(), "atom", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Record.Text != "An atom has a nucleus." {
		t.Errorf("k=0 hits = %+v, want the single nearest", hits)
	}
}

func TestIsExit(t *testing.T) {
	if !IsExit(" eXit\n") || IsExit("exits") || IsExit("") {
		t.Error("IsExit misclassified input")
	}
}
