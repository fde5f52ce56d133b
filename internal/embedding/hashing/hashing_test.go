package hashing

import (
	"context"
	"math"
	"testing"
)

func TestEmbedder_DimensionAndDeterminism(t *testing.T) {
	e := NewEmbedder(64)
	if e.Dimension() != 64 || e.Name() != "hashing" {
		t.Fatalf("Dimension=%d Name=%q", e.Dimension(), e.Name())
	}
	a, err := e.Embed(context.Background(), []string{"Photosynthesis converts light", "Photosynthesis converts light"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(a) != 2 || len(a[0]) != 64 {
		t.Fatalf("got %d vectors of len %d", len(a), len(a[0]))
	}
	for i := range a[0] {
		if a[0][i] != a[1][i] {
			t.Fatalf("identical text produced different vectors at %d", i)
		}
	}
	b, _ := NewEmbedder(64).Embed(context.Background(), []string{"Photosynthesis converts light"})
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatal("separate embedder instances disagree")
		}
	}
}

func TestEmbedder_UnitNorm(t *testing.T) {
	vecs, _ := NewEmbedder(0).Embed(context.Background(), []string{"mitochondria produce energy for the cell"})
	if len(vecs[0]) != DefaultDimension {
		t.Fatalf("len = %d, want %d", len(vecs[0]), DefaultDimension)
	}
	var sum float64
	for _, v := range vecs[0] {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Fatalf("squared norm = %v, want 1", sum)
	}
}

func TestEmbedder_StopwordsOnlyIsZero(t *testing.T) {
	vecs, _ := NewEmbedder(16).Embed(context.Background(), []string{"the and of", ""})
	for n, vec := range vecs {
		for i, v := range vec {
			if v != 0 {
				t.Fatalf("vector %d component %d = %v, want 0", n, i, v)
			}
		}
	}
}

func TestEmbedder_SimilarTextIsCloser(t *testing.T) {
	e := NewEmbedder(256)
	vecs, _ := e.Embed(context.Background(), []string{
		"cell membrane transport proteins",
		"membrane transport proteins in the cell",
		"medieval european trade routes",
	})
	near := sqDist(vecs[0], vecs[1])
	far := sqDist(vecs[0], vecs[2])
	if near >= far {
		t.Fatalf("related text distance %v >= unrelated %v", near, far)
	}
}

func TestEmbedder_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewEmbedder(8).Embed(ctx, []string{"x"}); err == nil {
		t.Fatal("expected context error")
	}
}

func sqDist(a, b []float32) float64 {
	var s float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		s += d * d
	}
	return s
}
