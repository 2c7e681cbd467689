package service

import (
	"bytes"
	"fmt"
	"math"

	"pdf-webp-converter/internal/domain"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// exactPageReader is one pluggable structural page-count reader.
type exactPageReader struct {
	name  string
	count func(doc []byte) (int, error)
}

// PageEstimator determines the page count of a document. Exact readers are
// tried in a fixed preference order; the first one that succeeds wins. When
// all of them fail the count is derived from the file size. The result is
// advisory either way: the pipeline detects the true end of the document on
// its own.
type PageEstimator struct {
	readers []exactPageReader
	factor  float64
	logger  domain.Logger
}

// NewPageEstimator creates an estimator with the default reader chain and
// the given pages-per-megabyte fallback factor.
func NewPageEstimator(factor float64, logger domain.Logger) *PageEstimator {
	if factor <= 0 {
		factor = 2.0
	}
	return &PageEstimator{
		readers: []exactPageReader{
			{name: "pdf", count: countPagesLedongthuc},
			{name: "pdfcpu", count: countPagesPdfcpu},
		},
		factor: factor,
		logger: logger,
	}
}

// Estimate returns the page count for the document.
func (e *PageEstimator) Estimate(doc []byte) domain.PageEstimate {
	for _, reader := range e.readers {
		count, err := reader.count(doc)
		if err != nil || count <= 0 {
			e.logger.Debug("page count reader failed", "reader", reader.name, "error", err)
			continue
		}
		return domain.PageEstimate{Count: count, Exact: true, Source: reader.name}
	}

	sizeMB := float64(len(doc)) / (1 << 20)
	count := int(math.Round(sizeMB * e.factor))
	if count < 1 {
		count = 1
	}
	return domain.PageEstimate{Count: count, Exact: false, Source: "size-heuristic"}
}

func countPagesLedongthuc(doc []byte) (count int, err error) {
	// The reader panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}

func countPagesPdfcpu(doc []byte) (int, error) {
	return api.PageCount(bytes.NewReader(doc), model.NewDefaultConfiguration())
}
