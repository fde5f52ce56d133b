package chunker

import (
	"strings"
	"testing"

	"quizrag/internal/domain"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "  \n\t ", nil},
		{"single without terminator", "no punctuation here", []string{"no punctuation here"}},
		{"mixed terminators", "One. Two! Three? Four", []string{"One.", "Two!", "Three?", "Four"}},
		{"newline boundary", "First line.\n\nSecond line.", []string{"First line.", "Second line."}},
		{"no space after dot", "Version 1.2 is out. Yes.", []string{"Version 1.2 is out.", "Yes."}},
		{"trailing whitespace", "Done.  ", []string{"Done."}},
		{"unicode", "Café ouvert. Über alles!", []string{"Café ouvert.", "Über alles!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitSentences(%q) = %q, want %q", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	if got := Split("", 100); len(got) != 0 {
		t.Fatalf("Split(\"\") = %q, want no chunks", got)
	}
	if got := Split("   ", 100); len(got) != 0 {
		t.Fatalf("Split(whitespace) = %q, want no chunks", got)
	}
}

func TestSplit_GreedyThreshold(t *testing.T) {
	// Sentence lengths: 10, 10, 10 characters.
	text := "Aaaaaaaaa. Bbbbbbbbb. Ccccccccc."
	got := Split(text, 25)
	want := []string{"Aaaaaaaaa. Bbbbbbbbb.", "Ccccccccc."}
	if len(got) != len(want) {
		t.Fatalf("Split = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplit_ReachingThresholdClosesChunk(t *testing.T) {
	// 10 + 10 == 20 reaches the threshold, so the second sentence starts a new chunk.
	got := Split("Aaaaaaaaa. Bbbbbbbbb.", 20)
	if len(got) != 2 {
		t.Fatalf("Split = %q, want 2 chunks", got)
	}
}

func TestSplit_OversizedSentenceStandsAlone(t *testing.T) {
	long := strings.Repeat("x", 50) + "."
	text := "Short one. " + long + " Tail."
	got := Split(text, 20)
	want := []string{"Short one.", long, "Tail."}
	if len(got) != len(want) {
		t.Fatalf("Split = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplit_OversizedFirstSentenceNoEmptyChunk(t *testing.T) {
	long := strings.Repeat("y", 40) + "."
	got := Split(long+" Next.", 10)
	for i, c := range got {
		if c == "" {
			t.Fatalf("chunk[%d] is empty: %q", i, got)
		}
	}
	if got[0] != long {
		t.Fatalf("first chunk = %q, want %q", got[0], long)
	}
}

func TestSplit_ReassemblesSentencesInOrder(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString(strings.Repeat("word ", i%17+1))
		switch i % 3 {
		case 0:
			b.WriteString("end. ")
		case 1:
			b.WriteString("end! ")
		default:
			b.WriteString("end?\n")
		}
	}
	text := b.String()
	sentences := SplitSentences(text)
	chunks := Split(text, 120)

	var rebuilt []string
	for _, c := range chunks {
		rebuilt = append(rebuilt, SplitSentences(c)...)
	}
	if len(rebuilt) != len(sentences) {
		t.Fatalf("rebuilt %d sentences, want %d", len(rebuilt), len(sentences))
	}
	for i := range sentences {
		if rebuilt[i] != sentences[i] {
			t.Fatalf("sentence[%d] = %q, want %q", i, rebuilt[i], sentences[i])
		}
	}
	if strings.Join(chunks, " ") != strings.Join(sentences, " ") {
		t.Fatal("chunks joined with spaces do not reproduce the sentence sequence")
	}
}

func TestSplit_DefaultTargetSize(t *testing.T) {
	text := strings.Repeat("Ten chars. ", 150)
	got := Split(text, 0)
	// 99 sentences of 10 characters fit below 1000; the 100th opens the second chunk.
	if len(got) != 2 {
		t.Fatalf("got %d chunks, want 2", len(got))
	}
	if n := len(SplitSentences(got[0])); n != 99 {
		t.Errorf("first chunk holds %d sentences, want 99", n)
	}
}

func TestSentenceChunker_Chunk(t *testing.T) {
	c := NewSentenceChunker(15)
	doc := domain.Document{Path: "notes.pdf", Content: "Alpha beta. Gamma delta. Epsilon."}
	chunks := c.Chunk(doc)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3: %+v", len(chunks), chunks)
	}
	for i, ch := range chunks {
		if ch.DocumentPath != "notes.pdf" {
			t.Errorf("chunk[%d].DocumentPath = %q", i, ch.DocumentPath)
		}
		if ch.Index != i {
			t.Errorf("chunk[%d].Index = %d", i, ch.Index)
		}
	}
	if got := c.Chunk(domain.Document{Path: "empty.pdf"}); got != nil {
		t.Errorf("empty document produced %d chunks", len(got))
	}
	if NewSentenceChunker(-1).targetSize != DefaultTargetSize {
		t.Error("non-positive target size should fall back to default")
	}
}
