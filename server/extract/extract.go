// Package extract turns uploaded documents into plain text.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/teilomillet/aiengine/server/metrics"
)

// ErrEmptyDocument is returned for uploads with no content.
var ErrEmptyDocument = errors.New("empty document: no bytes were uploaded")

// Extractor converts an uploaded document into text.
type Extractor interface {
	Extract(ctx context.Context, r io.Reader) (string, error)
}

// pageSource is the paged view of a parsed document.
type pageSource interface {
	NumPage() int
	PageText(i int) (string, error)
}

// PDFExtractor extracts the text of every page of a PDF, in page order, with
// a newline after each page.
type PDFExtractor struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewPDFExtractor creates an extractor. Both arguments may be nil.
func NewPDFExtractor(logger *zap.Logger, m *metrics.Metrics) *PDFExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFExtractor{logger: logger, metrics: m}
}

// Extract reads r fully and returns the document text.
func (e *PDFExtractor) Extract(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", e.fail(fmt.Errorf("read document: %w", err))
	}
	if len(data) == 0 {
		return "", e.fail(ErrEmptyDocument)
	}

	src, err := openPDF(data)
	if err != nil {
		return "", e.fail(err)
	}

	text, err := joinPages(ctx, src)
	if err != nil {
		return "", e.fail(err)
	}

	chars := utf8.RuneCountInString(text)
	if e.metrics != nil {
		e.metrics.ExtractedChars.Observe(float64(chars))
	}
	e.logger.Debug("document extracted",
		zap.Int("bytes", len(data)),
		zap.Int("pages", src.NumPage()),
		zap.Int("chars", chars),
	)
	return text, nil
}

func (e *PDFExtractor) fail(err error) error {
	if e.metrics != nil {
		e.metrics.ExtractionFailures.Inc()
	}
	e.logger.Warn("document extraction failed", zap.Error(err))
	return err
}

func joinPages(ctx context.Context, src pageSource) (string, error) {
	var b strings.Builder
	for i := 1; i <= src.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := src.PageText(i)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// pdfDoc adapts a ledongthuc/pdf reader. The parser panics on some malformed
// inputs, so every call into it recovers.
type pdfDoc struct {
	r *pdf.Reader
}

func openPDF(data []byte) (doc *pdfDoc, err error) {
	defer func() {
		if p := recover(); p != nil {
			doc, err = nil, fmt.Errorf("malformed PDF: %v", p)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &pdfDoc{r: r}, nil
}

func (d *pdfDoc) NumPage() (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	return d.r.NumPage()
}

func (d *pdfDoc) PageText(i int) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("malformed PDF: %v", p)
		}
	}()

	page := d.r.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
