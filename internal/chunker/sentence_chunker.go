package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"quizrag/internal/domain"
)

// DefaultTargetSize is the chunk length, in characters, used when none is configured.
const DefaultTargetSize = 1000

// SentenceChunker packs whole sentences into chunks of roughly targetSize characters.
type SentenceChunker struct {
	targetSize int
}

func NewSentenceChunker(targetSize int) *SentenceChunker {
	if targetSize <= 0 {
		targetSize = DefaultTargetSize
	}
	return &SentenceChunker{targetSize: targetSize}
}

func (c *SentenceChunker) Chunk(document domain.Document) []domain.Chunk {
	texts := Split(document.Content, c.targetSize)
	if len(texts) == 0 {
		return nil
	}
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			DocumentPath: document.Path,
			Text:         text,
			Index:        i,
		}
	}
	return chunks
}

// Split greedily accumulates sentences while their summed length stays below targetSize.
// A sentence that would reach the threshold closes the current chunk and opens the next one.
// Sentences longer than targetSize are kept whole as their own chunk.
func Split(text string, targetSize int) []string {
	if targetSize <= 0 {
		targetSize = DefaultTargetSize
	}
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}
	var chunks []string
	var current []string
	size := 0
	for _, s := range sentences {
		n := utf8.RuneCountInString(s)
		if size+n < targetSize || len(current) == 0 {
			current = append(current, s)
			size += n
			continue
		}
		chunks = append(chunks, strings.Join(current, " "))
		current = []string{s}
		size = n
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// SplitSentences cuts text after every '.', '!' or '?' that is followed by whitespace.
// The whitespace run is dropped; empty sentences are discarded.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		if i < start {
			continue
		}
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := i + 1
		next := end
		for next < len(text) {
			nr, size := utf8.DecodeRuneInString(text[next:])
			if !unicode.IsSpace(nr) {
				break
			}
			next += size
		}
		if next == end {
			continue
		}
		if s := text[start:end]; strings.TrimSpace(s) != "" {
			sentences = append(sentences, s)
		}
		start = next
	}
	if start < len(text) {
		if s := text[start:]; strings.TrimSpace(s) != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
