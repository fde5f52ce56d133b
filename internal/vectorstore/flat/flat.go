package flat

import (
	"fmt"
	"sync"

	"github.com/viant/vec/search"

	"quizrag/internal/vectorstore"
)

// Index is an exact in-memory index ranking vectors by squared Euclidean distance.
// Vectors are stored as given; no normalization is applied.
type Index struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
}

var _ vectorstore.Index = (*Index)(nil)

func New() *Index { return &Index{} }

func (x *Index) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dimension
}

func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors)
}

// Add appends vectors in order. The first vector fixes the dimension of an empty index.
// Either every vector is appended or none is.
func (x *Index) Add(vectors [][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	dim := x.dimension
	if dim == 0 {
		dim = len(vectors[0])
	}
	if dim == 0 {
		return fmt.Errorf("%w: empty vector", vectorstore.ErrDimensionMismatch)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has %d, want %d", vectorstore.ErrDimensionMismatch, i, len(v), dim)
		}
	}
	x.dimension = dim
	for _, v := range vectors {
		x.vectors = append(x.vectors, append([]float32(nil), v...))
	}
	return nil
}

// Search returns up to k nearest vectors, nearest first. Equal distances keep index order.
func (x *Index) Search(query []float32, k int) ([]vectorstore.Neighbor, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if k <= 0 || len(x.vectors) == 0 {
		return nil, nil
	}
	if len(query) != x.dimension {
		return nil, fmt.Errorf("%w: query has %d, index has %d", vectorstore.ErrDimensionMismatch, len(query), x.dimension)
	}
	q := search.Float32s(query)
	dists := make([]float64, len(x.vectors))
	for i, v := range x.vectors {
		d := float64(q.EuclideanDistance(v))
		dists[i] = d * d
	}
	idxs := argsortAsc(dists)
	if k > len(idxs) {
		k = len(idxs)
	}
	out := make([]vectorstore.Neighbor, k)
	for i := 0; i < k; i++ {
		out[i] = vectorstore.Neighbor{Position: idxs[i], Distance: dists[idxs[i]]}
	}
	return out, nil
}

// Vector returns a copy of the vector stored at position, or nil when out of range.
func (x *Index) Vector(position int) []float32 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if position < 0 || position >= len(x.vectors) {
		return nil
	}
	return append([]float32(nil), x.vectors[position]...)
}

func argsortAsc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	quicksort(idxs, vals, 0, len(idxs)-1)
	return idxs
}

// less orders by distance, then by position so ties are deterministic.
func less(vals []float64, a, b int) bool {
	if vals[a] != vals[b] {
		return vals[a] < vals[b]
	}
	return a < b
}

func quicksort(idxs []int, vals []float64, lo, hi int) {
	if lo >= hi {
		return
	}
	i, j := lo, hi
	pivot := idxs[(lo+hi)/2]
	for i <= j {
		for less(vals, idxs[i], pivot) {
			i++
		}
		for less(vals, pivot, idxs[j]) {
			j--
		}
		if i <= j {
			idxs[i], idxs[j] = idxs[j], idxs[i]
			i++
			j--
		}
	}
	if lo < j {
		quicksort(idxs, vals, lo, j)
	}
	if i < hi {
		quicksort(idxs, vals, i, hi)
	}
}
