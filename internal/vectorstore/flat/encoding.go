package flat

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"quizrag/internal/vectorstore"
)

const (
	magic         = "QRIX"
	formatVersion = 1
	headerSize    = 16
)

// MarshalBinary stores: magic, version(uint32), dim(uint32), n(uint32), then n*dim float32,
// all little endian.
func (x *Index) MarshalBinary() ([]byte, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]byte, headerSize, headerSize+4*x.dimension*len(x.vectors))
	copy(out[0:4], magic)
	binary.LittleEndian.PutUint32(out[4:8], formatVersion)
	binary.LittleEndian.PutUint32(out[8:12], uint32(x.dimension))
	binary.LittleEndian.PutUint32(out[12:16], uint32(len(x.vectors)))
	b := make([]byte, 4)
	for _, v := range x.vectors {
		for _, f := range v {
			binary.LittleEndian.PutUint32(b, math.Float32bits(f))
			out = append(out, b...)
		}
	}
	return out, nil
}

// UnmarshalBinary replaces the index content with the decoded vectors.
func (x *Index) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize || string(data[0:4]) != magic {
		return fmt.Errorf("%w: missing header", vectorstore.ErrCorrupt)
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != formatVersion {
		return fmt.Errorf("%w: unsupported version %d", vectorstore.ErrCorrupt, v)
	}
	dim := int(binary.LittleEndian.Uint32(data[8:12]))
	n := int(binary.LittleEndian.Uint32(data[12:16]))
	if n > 0 && dim == 0 {
		return fmt.Errorf("%w: %d vectors with zero dimension", vectorstore.ErrCorrupt, n)
	}
	if want := headerSize + 4*dim*n; len(data) != want {
		return fmt.Errorf("%w: size %d, want %d", vectorstore.ErrCorrupt, len(data), want)
	}
	vectors := make([][]float32, n)
	off := headerSize
	for i := range vectors {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
			off += 4
		}
		vectors[i] = vec
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.dimension = dim
	x.vectors = vectors
	return nil
}

// WriteFile persists the index to path through a temporary file and a rename.
func (x *Index) WriteFile(path string) error {
	data, err := x.MarshalBinary()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ReadFile loads an index previously written with WriteFile.
func ReadFile(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	x := New()
	if err := x.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return x, nil
}
