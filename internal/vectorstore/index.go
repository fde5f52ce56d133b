package vectorstore

import "errors"

var (
	// ErrDimensionMismatch is returned when a vector does not match the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrCorrupt is returned when serialized index data cannot be decoded.
	ErrCorrupt = errors.New("corrupt index data")
)

// Neighbor is a search hit: the position of a stored vector and its distance to the query.
type Neighbor struct {
	Position int
	Distance float64
}

// Index holds ordered vectors and answers nearest-neighbor queries.
// Position in the index is the key callers use to join hits with their own records.
type Index interface {
	Dimension() int
	Count() int
	Add(vectors [][]float32) error
	Search(query []float32, k int) ([]Neighbor, error)
	Vector(position int) []float32
	MarshalBinary() ([]byte, error)
	UnmarshalBinary(data []byte) error
}
