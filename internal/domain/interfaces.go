package domain

import "context"

// Rasterizer renders a contiguous page range of a PDF document into
// in-memory rasters. A range that starts beyond the document's last page
// yields an empty result (or ErrPageOutOfRange), never a failure: both are
// the structured end-of-document signal the pipeline relies on.
type Rasterizer interface {
	RenderRange(ctx context.Context, doc []byte, opts RenderOptions) ([]RenderedPage, error)
}

// PageEstimator determines how many pages a document has. The estimate is
// advisory: it sizes progress reporting and batch loops, never correctness.
type PageEstimator interface {
	Estimate(doc []byte) PageEstimate
}

// ResultStore is the request-scoped cache of encoded pages for one
// document, keyed by page number. Inserting an existing page number
// overwrites it (last write wins).
type ResultStore interface {
	Insert(page EncodedPage) error
	Pages() []PageInfo
	PageData(pageNum int) ([]byte, error)
	Len() int
	Clear() error
	ExportArchive() ([]byte, error)
}

// SessionService manages the lifecycle of conversion sessions.
type SessionService interface {
	Create(documentName string, document []byte) (*Session, error)
	Get(id string) (*Session, error)
	Clear(id string) error
}

// ConversionService runs the page pipeline for a session.
type ConversionService interface {
	Convert(ctx context.Context, sessionID string, cfg ConversionConfig) (*RunResult, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetSpoolPath() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetLargeFileThreshold() int64
	GetMaxPagesPerRun() int
	GetPageEstimateFactor() float64
	GetDefaultBatchSize() int
}
