package service

import (
	"context"
	"errors"
	"fmt"

	"pdf-webp-converter/internal/domain"
	apperrors "pdf-webp-converter/pkg/errors"

	"github.com/dustin/go-humanize"
)

const adviceLowerSettings = "try a lower DPI, a lower quality setting, or a smaller PDF"

// ConversionPipeline drives one document through count estimation, batched
// rasterization, normalization, encoding, and storage. A failing batch is
// skipped, not fatal: partial results for a large document beat none. Only
// a document that cannot be opened at all aborts the run.
type ConversionPipeline struct {
	rasterizer   domain.Rasterizer
	estimator    domain.PageEstimator
	sessions     *SessionManager
	maxPages     int
	defaultBatch int
	logger       domain.Logger
}

// NewConversionPipeline creates the page pipeline.
func NewConversionPipeline(
	rasterizer domain.Rasterizer,
	estimator domain.PageEstimator,
	sessions *SessionManager,
	cfg domain.Config,
	logger domain.Logger,
) *ConversionPipeline {
	return &ConversionPipeline{
		rasterizer:   rasterizer,
		estimator:    estimator,
		sessions:     sessions,
		maxPages:     cfg.GetMaxPagesPerRun(),
		defaultBatch: cfg.GetDefaultBatchSize(),
		logger:       logger,
	}
}

// Convert runs the pipeline for a session. Reprocessing a session starts
// from a cleared result store, so page numbers never duplicate across runs.
func (p *ConversionPipeline) Convert(ctx context.Context, sessionID string, cfg domain.ConversionConfig) (*domain.RunResult, error) {
	session, err := p.sessions.BeginRun(sessionID)
	if err != nil {
		return nil, err
	}
	defer p.sessions.EndRun(sessionID)

	runCfg := p.resolveConfig(session, cfg)
	result := &domain.RunResult{State: domain.StateEstimating, Config: runCfg}
	session.State = domain.StateEstimating
	session.LastRun = result

	if err := session.Results.Clear(); err != nil {
		result.State = domain.StateFailed
		session.State = domain.StateFailed
		return result, apperrors.NewInternalError("could not reset previous results", err)
	}

	result.Estimate = p.estimator.Estimate(session.Document)
	p.logger.Info("conversion started",
		"session_id", session.ID,
		"file_size", humanize.Bytes(uint64(session.FileSize)),
		"estimated_pages", result.Estimate.Count,
		"exact", result.Estimate.Exact,
		"dpi", runCfg.DPI,
		"quality", runCfg.Quality,
		"batch_size", runCfg.BatchSize)

	stored := 0
	reachedEnd := false
	first := 1
	for first <= p.maxPages {
		last := first + runCfg.BatchSize - 1
		if last > p.maxPages {
			last = p.maxPages
		}
		rng := domain.PageRange{First: first, Last: last}

		session.State = domain.StateRendering
		pages, renderErr := p.rasterizer.RenderRange(ctx, session.Document, domain.RenderOptions{DPI: runCfg.DPI, Range: rng})
		switch {
		case renderErr == nil && len(pages) == 0:
			reachedEnd = true
		case errors.Is(renderErr, domain.ErrPageOutOfRange):
			reachedEnd = true
		case errors.Is(renderErr, context.Canceled) || errors.Is(renderErr, context.DeadlineExceeded):
			result.State = domain.StateFailed
			session.State = domain.StateFailed
			return result, renderErr
		case errors.Is(renderErr, domain.ErrUnreadableDocument):
			// No batch can succeed when the document itself will not open.
			result.State = domain.StateFailed
			session.State = domain.StateFailed
			return result, apperrors.NewConversionError("the PDF could not be read", adviceLowerSettings, renderErr)
		case renderErr != nil && rng.Count() > 1:
			// The batch failed part-way through; salvage what it can by
			// rendering each page of the range on its own.
			pages = p.renderPagesIndividually(ctx, session, rng, runCfg, result)
		case renderErr != nil:
			p.warn(result, rng, renderErr)
			pages = nil
		}
		if reachedEnd {
			break
		}

		session.State = domain.StateEncoding
		for _, page := range pages {
			if err := p.encodeAndStore(session, page, runCfg); err != nil {
				p.warn(result, domain.PageRange{First: page.PageNum, Last: page.PageNum}, err)
				continue
			}
			stored++
		}
		// Rasters for this batch go out of scope here; peak memory stays at
		// one batch of raw pages.
		if renderErr == nil && len(pages) < rng.Count() {
			// The adapter clamped the range to the document extent.
			reachedEnd = true
			break
		}
		first = last + 1
	}

	result.PagesConverted = stored
	if !reachedEnd && p.documentExceedsCeiling(ctx, session, runCfg, result.Estimate) {
		result.Truncated = true
		result.TruncatedAt = p.maxPages
		p.logger.Warn("run stopped at the page safety ceiling",
			"session_id", session.ID, "max_pages", p.maxPages)
	}

	if stored == 0 && len(result.Warnings) > 0 {
		result.State = domain.StateFailed
		session.State = domain.StateFailed
		return result, apperrors.NewConversionError("no pages could be converted", adviceLowerSettings, nil)
	}

	result.State = domain.StateCompleted
	session.State = domain.StateCompleted
	p.logger.Info("conversion completed",
		"session_id", session.ID,
		"pages", stored,
		"warnings", len(result.Warnings),
		"truncated", result.Truncated)
	return result, nil
}

// renderPagesIndividually retries a failed batch one page at a time and
// reports a warning per page that still fails.
func (p *ConversionPipeline) renderPagesIndividually(
	ctx context.Context,
	session *domain.Session,
	rng domain.PageRange,
	cfg domain.ConversionConfig,
	result *domain.RunResult,
) []domain.RenderedPage {
	pages := make([]domain.RenderedPage, 0, rng.Count())
	for num := rng.First; num <= rng.Last; num++ {
		if ctx.Err() != nil {
			break
		}
		single := domain.PageRange{First: num, Last: num}
		rendered, err := p.rasterizer.RenderRange(ctx, session.Document, domain.RenderOptions{DPI: cfg.DPI, Range: single})
		if errors.Is(err, domain.ErrPageOutOfRange) || (err == nil && len(rendered) == 0) {
			break
		}
		if err != nil {
			p.warn(result, single, err)
			continue
		}
		pages = append(pages, rendered...)
	}
	return pages
}

// encodeAndStore normalizes, encodes, and inserts one rendered page.
func (p *ConversionPipeline) encodeAndStore(session *domain.Session, page domain.RenderedPage, cfg domain.ConversionConfig) error {
	img := NormalizeImage(page.Image, cfg.MaxDimension)
	bounds := img.Bounds()

	data, err := EncodeWebP(img, cfg.Quality)
	if err != nil {
		return fmt.Errorf("encode page %d: %w", page.PageNum, err)
	}

	return session.Results.Insert(domain.EncodedPage{
		PageNum:      page.PageNum,
		Data:         data,
		OriginalSize: domain.PageSize{Width: bounds.Dx(), Height: bounds.Dy()},
	})
}

// documentExceedsCeiling decides whether a run that ran up to the safety
// ceiling actually left pages behind. An exact estimate answers directly;
// otherwise one probe render past the ceiling settles it.
func (p *ConversionPipeline) documentExceedsCeiling(ctx context.Context, session *domain.Session, cfg domain.ConversionConfig, estimate domain.PageEstimate) bool {
	if estimate.Exact {
		return estimate.Count > p.maxPages
	}
	probe := domain.PageRange{First: p.maxPages + 1, Last: p.maxPages + 1}
	rendered, err := p.rasterizer.RenderRange(ctx, session.Document, domain.RenderOptions{DPI: cfg.DPI, Range: probe})
	return err == nil && len(rendered) > 0
}

func (p *ConversionPipeline) warn(result *domain.RunResult, rng domain.PageRange, err error) {
	var msg string
	if rng.Count() == 1 {
		msg = fmt.Sprintf("page %d could not be converted; %s", rng.First, adviceLowerSettings)
	} else {
		msg = fmt.Sprintf("pages %s could not be converted; %s", rng, adviceLowerSettings)
	}
	result.Warnings = append(result.Warnings, domain.RunWarning{Range: rng, Message: msg})
	p.logger.Warn("batch failed, continuing with next batch", "range", rng.String(), "error", err)
}

// resolveConfig fills defaults and clamps user settings to the supported
// ranges. Large documents always render one page at a time.
func (p *ConversionPipeline) resolveConfig(session *domain.Session, cfg domain.ConversionConfig) domain.ConversionConfig {
	if cfg.DPI == 0 {
		cfg.DPI = domain.DefaultDPI
	}
	cfg.DPI = clampInt(cfg.DPI, domain.MinDPI, domain.MaxDPI)

	if cfg.Quality == 0 {
		cfg.Quality = domain.DefaultQuality
	}
	cfg.Quality = clampInt(cfg.Quality, domain.MinQuality, domain.MaxQuality)

	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = domain.DefaultMaxDimension
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = p.defaultBatch
	}
	if session.LargeFile {
		cfg.BatchSize = 1
	}
	return cfg
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
