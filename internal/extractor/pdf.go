package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/unicode/norm"

	"quizrag/internal/domain"
	"quizrag/internal/logging"
)

// PDFExtractor reads the text layer of PDF files page by page.
type PDFExtractor struct {
	logger *log.Logger
	conf   *model.Configuration
}

// ErrInvalidPDF is returned for files that fail structural validation, including
// encrypted files that cannot be opened without a password.
var ErrInvalidPDF = errors.New("invalid pdf")

var _ domain.Extractor = (*PDFExtractor)(nil)

func NewPDFExtractor(logger *log.Logger) *PDFExtractor {
	if logger == nil {
		logger = logging.Discard()
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFExtractor{logger: logger, conf: conf}
}

// Extract returns the NFKC-normalized, trimmed text of every page, pages separated by newlines.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	if err := api.ValidateFile(path, e.conf); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidPDF, path, err)
	}

	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("reading %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	e.logger.Debug("extracting pdf", "path", path, "pages", r.NumPage())

	var buf bytes.Buffer
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d of %s: %w", i, path, err)
		}
		buf.WriteString(content)
		buf.WriteString("\n")
	}
	if text := Normalize(buf.String()); text != "" {
		return text, nil
	}
	e.logger.Debug("no per-page text, reading the whole text stream", "path", path)
	return extractAll(path)
}

// extractAll reads the whole text layer through the reader's plain-text stream.
func extractAll(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	rd, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(rd)
	if err != nil {
		return "", err
	}
	return Normalize(string(data)), nil
}

// Normalize applies NFKC normalization (folding ligatures and compatibility symbols)
// and trims surrounding whitespace.
func Normalize(text string) string {
	return strings.TrimSpace(norm.NFKC.String(text))
}
