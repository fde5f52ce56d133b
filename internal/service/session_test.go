package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"quizrag/internal/chunker"
	"quizrag/internal/embedding/hashing"
	"quizrag/internal/indexstore"
	"quizrag/internal/summarizer"
)

type stubRetriever struct {
	text  string
	err   error
	calls int
	lastK int
}

func (r *stubRetriever) Search(_ context.Context, _ string, k int) (string, error) {
	r.calls++
	r.lastK = k
	return r.text, r.err
}

type stubGenerator struct {
	mode, retrieved, query string
}

func (g *stubGenerator) Quiz(_ context.Context, retrieved, query string) (string, error) {
	g.mode, g.retrieved, g.query = "quiz", retrieved, query
	return "Q1? A1.", nil
}

func (g *stubGenerator) Explain(_ context.Context, retrieved, query string) (string, error) {
	g.mode, g.retrieved, g.query = "explain", retrieved, query
	return "It means...", nil
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"quiz": ModeQuiz, " Explanation ": ModeExplanation, "QUIZ": ModeQuiz} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("summary"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("err = %v, want ErrUnknownMode", err)
	}
}

func TestSession_AskDispatchesByMode(t *testing.T) {
	r := &stubRetriever{text: "chunk one\nchunk two"}
	g := &stubGenerator{}
	s := NewSession(r, g, 0, nil)

	out, err := s.Ask(context.Background(), ModeQuiz, "cells")
	if err != nil || out != "Q1? A1." {
		t.Fatalf("Ask(quiz) = %q, %v", out, err)
	}
	if g.mode != "quiz" || g.retrieved != "chunk one\nchunk two" || g.query != "cells" {
		t.Errorf("generator saw %+v", g)
	}
	if r.lastK != 3 {
		t.Errorf("top k = %d, want default 3", r.lastK)
	}

	if _, err := s.Ask(context.Background(), ModeExplanation, "atoms"); err != nil {
		t.Fatal(err)
	}
	if g.mode != "explain" || g.query != "atoms" {
		t.Errorf("generator saw %+v", g)
	}
}

func TestSession_AskErrors(t *testing.T) {
	g := &stubGenerator{}
	if _, err := NewSession(&stubRetriever{}, g, 3, nil).Ask(context.Background(), ModeQuiz, "x"); !errors.Is(err, ErrNoContext) {
		t.Errorf("empty context err = %v, want ErrNoContext", err)
	}
	boom := errors.New("boom")
	if _, err := NewSession(&stubRetriever{err: boom}, g, 3, nil).Ask(context.Background(), ModeQuiz, "x"); !errors.Is(err, boom) {
		t.Errorf("retriever err = %v, want wrapped boom", err)
	}
	r := &stubRetriever{text: "ctx"}
	if _, err := NewSession(r, g, 3, nil).Ask(context.Background(), Mode("poem"), "x"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("mode err = %v, want ErrUnknownMode", err)
	}
	if r.calls != 0 {
		t.Error("retriever called for an unknown mode")
	}
	if g.mode != "" {
		t.Error("generator called without context")
	}
}

type textExtractor map[string]string

func (m textExtractor) Extract(_ context.Context, path string) (string, error) {
	return m[path], nil
}

func TestSummarize(t *testing.T) {
	dir := t.TempDir()
	store := indexstore.New(indexstore.Options{
		IndexPath:    filepath.Join(dir, "index.bin"),
		MetadataPath: filepath.Join(dir, "metadata.json"),
	}, textExtractor{
		"a.pdf": "Mitosis splits a cell. Mitosis has phases.",
		"b.pdf": "Meiosis makes gametes.",
	}, chunker.NewSentenceChunker(20), hashing.NewEmbedder(32))
	snap, err := store.Build(context.Background(), []string{"a.pdf", "b.pdf"})
	if err != nil {
		t.Fatal(err)
	}
	ov, err := Summarize(snap, summarizer.NewFrequencySummarizer(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if ov.Documents != 2 || ov.Chunks != 3 {
		t.Errorf("overview = %+v", ov)
	}
	if ov.Summary != "Mitosis splits a cell. Mitosis has phases. Meiosis makes gametes." {
		t.Errorf("summary = %q", ov.Summary)
	}
	if !strings.HasPrefix(ov.String(), "2 documents, 3 chunks indexed\n") {
		t.Errorf("String = %q", ov.String())
	}
}
