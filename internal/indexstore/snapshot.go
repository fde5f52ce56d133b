package indexstore

import "quizrag/internal/vectorstore"

// Hit is a search result joined with its metadata record.
type Hit struct {
	Position int
	Distance float64
	Record   Record
}

// Snapshot is an immutable, index-aligned pair of vectors and metadata records.
type Snapshot struct {
	index   vectorstore.Index
	records []Record
}

func newSnapshot(index vectorstore.Index, records []Record) (*Snapshot, error) {
	if index.Count() != len(records) {
		return nil, mismatch(index.Count(), len(records))
	}
	return &Snapshot{index: index, records: records}, nil
}

// Count is the number of indexed chunks.
func (s *Snapshot) Count() int { return len(s.records) }

// Dimension is the vector width of the index.
func (s *Snapshot) Dimension() int { return s.index.Dimension() }

// Records returns a copy of the metadata in index order.
func (s *Snapshot) Records() []Record {
	return append([]Record(nil), s.records...)
}

// Vector returns the embedding stored at position.
func (s *Snapshot) Vector(position int) []float32 { return s.index.Vector(position) }

// Documents returns the distinct document paths in first-seen order.
func (s *Snapshot) Documents() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range s.records {
		if _, ok := seen[r.PDF]; ok {
			continue
		}
		seen[r.PDF] = struct{}{}
		out = append(out, r.PDF)
	}
	return out
}

// Search returns up to k nearest chunks, nearest first.
func (s *Snapshot) Search(vector []float32, k int) ([]Hit, error) {
	neighbors, err := s.index.Search(vector, k)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, len(neighbors))
	for i, n := range neighbors {
		hits[i] = Hit{Position: n.Position, Distance: n.Distance, Record: s.records[n.Position]}
	}
	return hits, nil
}
