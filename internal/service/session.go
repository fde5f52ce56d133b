package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"quizrag/internal/domain"
	"quizrag/internal/indexstore"
	"quizrag/internal/logging"
)

// Mode selects what the generator produces for a question.
type Mode string

const (
	ModeQuiz        Mode = "quiz"
	ModeExplanation Mode = "explanation"
)

var (
	ErrNoContext   = errors.New("no relevant context found")
	ErrUnknownMode = errors.New("unknown mode")
)

// ParseMode accepts "quiz" or "explanation" in any case.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeQuiz, ModeExplanation:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Session answers one question at a time: retrieve, then generate.
type Session struct {
	retriever domain.Retriever
	generator domain.Generator
	topK      int
	logger    *log.Logger
}

func NewSession(retriever domain.Retriever, generator domain.Generator, topK int, logger *log.Logger) *Session {
	if topK <= 0 {
		topK = 3
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{retriever: retriever, generator: generator, topK: topK, logger: logger}
}

// Ask retrieves context for query and produces a quiz or an explanation from it.
func (s *Session) Ask(ctx context.Context, mode Mode, query string) (string, error) {
	if mode != ModeQuiz && mode != ModeExplanation {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	retrieved, err := s.retriever.Search(ctx, query, s.topK)
	if err != nil {
		return "", fmt.Errorf("retrieving context: %w", err)
	}
	if retrieved == "" {
		return "", ErrNoContext
	}
	s.logger.Debug("generating", "mode", mode, "query", query, "context_chars", len(retrieved))
	if mode == ModeQuiz {
		return s.generator.Quiz(ctx, retrieved, query)
	}
	return s.generator.Explain(ctx, retrieved, query)
}

// Overview describes the indexed corpus for display.
type Overview struct {
	Documents int
	Chunks    int
	Summary   string
}

func (o Overview) String() string {
	line := fmt.Sprintf("%d documents, %d chunks indexed", o.Documents, o.Chunks)
	if o.Summary == "" {
		return line
	}
	return line + "\n" + o.Summary
}

// Summarize builds an Overview of snap, summarizing the chunk texts in index order.
func Summarize(snap *indexstore.Snapshot, summarizer domain.Summarizer, maxSentences int) (Overview, error) {
	records := snap.Records()
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}
	ov := Overview{Documents: len(snap.Documents()), Chunks: snap.Count()}
	if summarizer == nil {
		return ov, nil
	}
	summary, err := summarizer.Summarize(strings.Join(texts, " "), maxSentences)
	if err != nil {
		return ov, fmt.Errorf("summarizing corpus: %w", err)
	}
	ov.Summary = summary
	return ov, nil
}
