package indexstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"quizrag/internal/domain"
	"quizrag/internal/logging"
	"quizrag/internal/vectorstore/flat"
)

var (
	ErrNoDocuments   = errors.New("no documents found")
	ErrEmptyCorpus   = errors.New("no text could be extracted from the documents")
	ErrIndexMismatch = errors.New("index and metadata are out of sync")
)

const (
	DefaultIndexPath    = "index.bin"
	DefaultMetadataPath = "metadata.json"
	DefaultPattern      = "*.pdf"
	DefaultBatchSize    = 64
)

func mismatch(vectors, records int) error {
	return fmt.Errorf("%w: %d vectors, %d metadata records", ErrIndexMismatch, vectors, records)
}

// Options locate the artifacts and the documents they are built from.
type Options struct {
	IndexPath    string
	MetadataPath string
	DocsDir      string
	Pattern      string
	BatchSize    int
	Logger       *log.Logger
}

// Store builds, persists and lazily reloads the index/metadata pair.
type Store struct {
	opts      Options
	extractor domain.Extractor
	chunker   domain.Chunker
	embedder  domain.Embedder
	logger    *log.Logger

	mu       sync.Mutex
	snapshot *Snapshot
}

func New(opts Options, extractor domain.Extractor, chunker domain.Chunker, embedder domain.Embedder) *Store {
	if opts.IndexPath == "" {
		opts.IndexPath = DefaultIndexPath
	}
	if opts.MetadataPath == "" {
		opts.MetadataPath = DefaultMetadataPath
	}
	if opts.DocsDir == "" {
		opts.DocsDir = "."
	}
	if opts.Pattern == "" {
		opts.Pattern = DefaultPattern
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{opts: opts, extractor: extractor, chunker: chunker, embedder: embedder, logger: logger}
}

// Exists reports whether both artifacts are present on disk.
func (s *Store) Exists() bool {
	return fileExists(s.opts.IndexPath) && fileExists(s.opts.MetadataPath)
}

// Discover lists the documents matching the configured pattern, sorted.
func (s *Store) Discover() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.opts.DocsDir, s.opts.Pattern))
	if err != nil {
		return nil, fmt.Errorf("discovering documents: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Build rebuilds both artifacts from paths, or from every discovered document when paths is empty.
func (s *Store) Build(ctx context.Context, paths []string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.build(ctx, paths)
}

// Load returns the cached snapshot, reading the artifacts on first use and building them if
// either is missing.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot != nil {
		return s.snapshot, nil
	}
	if !s.Exists() {
		s.logger.Info("no index found, building from documents", "index", s.opts.IndexPath, "metadata", s.opts.MetadataPath)
		return s.build(ctx, nil)
	}
	index, err := flat.ReadFile(s.opts.IndexPath)
	if err != nil {
		return nil, err
	}
	records, err := readMetadata(s.opts.MetadataPath)
	if err != nil {
		return nil, err
	}
	snap, err := newSnapshot(index, records)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("index loaded", "chunks", snap.Count(), "dimension", snap.Dimension())
	s.snapshot = snap
	return snap, nil
}

func (s *Store) build(ctx context.Context, paths []string) (*Snapshot, error) {
	if len(paths) == 0 {
		discovered, err := s.Discover()
		if err != nil {
			return nil, err
		}
		paths = discovered
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w matching %s in %s", ErrNoDocuments, s.opts.Pattern, s.opts.DocsDir)
	}

	var records []Record
	documents := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := s.extractor.Extract(ctx, path)
		if err != nil {
			s.logger.Warn("skipping document", "path", path, "err", err)
			continue
		}
		if text == "" {
			s.logger.Warn("skipping document without text", "path", path)
			continue
		}
		doc := domain.Document{ID: uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)), Path: path, Content: text}
		chunks := s.chunker.Chunk(doc)
		s.logger.Debug("chunked document", "path", path, "id", doc.ID, "chunks", len(chunks))
		for _, c := range chunks {
			records = append(records, Record{PDF: path, Text: c.Text})
		}
		if len(chunks) > 0 {
			documents++
		}
	}
	if len(records) == 0 {
		return nil, ErrEmptyCorpus
	}

	index := flat.New()
	for start := 0; start < len(records); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(records))
		texts := make([]string, 0, end-start)
		for _, r := range records[start:end] {
			texts = append(texts, r.Text)
		}
		vectors, err := s.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding chunks %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("embedder %s returned %d vectors for %d texts", s.embedder.Name(), len(vectors), len(texts))
		}
		if err := index.Add(vectors); err != nil {
			return nil, err
		}
	}
	snap, err := newSnapshot(index, records)
	if err != nil {
		return nil, err
	}

	if err := index.WriteFile(s.opts.IndexPath); err != nil {
		return nil, fmt.Errorf("writing index: %w", err)
	}
	if err := writeMetadata(s.opts.MetadataPath, records); err != nil {
		return nil, fmt.Errorf("writing metadata: %w", err)
	}
	s.logger.Info("index built",
		"documents", documents,
		"chunks", len(records),
		"embedder", s.embedder.Name(),
		"index", s.opts.IndexPath,
		"metadata", s.opts.MetadataPath)
	s.snapshot = snap
	return snap, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
