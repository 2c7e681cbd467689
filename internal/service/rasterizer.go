package service

import (
	"context"
	"fmt"

	"pdf-webp-converter/internal/domain"

	fitz "github.com/gen2brain/go-fitz"
)

// FitzRasterizer renders PDF pages with MuPDF via go-fitz. The document is
// opened from memory for each call and closed before the call returns, so
// no native resources outlive a batch.
type FitzRasterizer struct {
	logger domain.Logger
}

// NewFitzRasterizer creates a new MuPDF-backed rasterizer
func NewFitzRasterizer(logger domain.Logger) *FitzRasterizer {
	return &FitzRasterizer{
		logger: logger,
	}
}

// RenderRange renders the requested page range at the given DPI and returns
// the satisfied sub-range in page order. A range starting beyond the last
// page returns an empty result: that is the normal end-of-document signal,
// not an error. A range extending past the last page is clamped.
func (r *FitzRasterizer) RenderRange(ctx context.Context, doc []byte, opts domain.RenderOptions) ([]domain.RenderedPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !opts.Range.Valid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPageRange, opts.Range)
	}
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = domain.DefaultDPI
	}

	d, err := fitz.NewFromMemory(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnreadableDocument, err)
	}
	defer d.Close()

	total := d.NumPage()
	if total == 0 {
		return nil, fmt.Errorf("%w: document has no pages", domain.ErrUnreadableDocument)
	}
	if opts.Range.First > total {
		r.logger.Debug("render range beyond document extent", "range", opts.Range.String(), "total", total)
		return nil, nil
	}

	last := opts.Range.Last
	if last > total {
		last = total
	}

	pages := make([]domain.RenderedPage, 0, last-opts.Range.First+1)
	for num := opts.Range.First; num <= last; num++ {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		img, err := d.ImageDPI(num-1, float64(dpi))
		if err != nil {
			return pages, fmt.Errorf("render page %d: %w", num, err)
		}
		pages = append(pages, domain.RenderedPage{PageNum: num, Image: img})
	}

	return pages, nil
}
