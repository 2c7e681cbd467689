package domain

import (
	"fmt"
	"image"
	"time"
)

// Conversion parameter bounds. DPI and quality ranges mirror what the
// web form offers; anything outside is clamped, not rejected.
const (
	MinDPI     = 72
	MaxDPI     = 150
	DefaultDPI = 100

	MinQuality     = 50
	MaxQuality     = 85
	DefaultQuality = 75

	DefaultMaxDimension = 2000
)

// ConversionConfig holds the settings for one pipeline run. A zero value
// for any field means "use the default".
type ConversionConfig struct {
	DPI          int `json:"dpi"`
	Quality      int `json:"quality"`
	MaxDimension int `json:"max_dimension"`
	BatchSize    int `json:"batch_size"`
}

// PageRange is a contiguous inclusive range of 1-based page indices.
type PageRange struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// Valid reports whether the range satisfies 1 <= First <= Last.
func (r PageRange) Valid() bool {
	return r.First >= 1 && r.Last >= r.First
}

// Count returns the number of pages the range covers.
func (r PageRange) Count() int {
	if !r.Valid() {
		return 0
	}
	return r.Last - r.First + 1
}

func (r PageRange) String() string {
	return fmt.Sprintf("%d-%d", r.First, r.Last)
}

// RenderOptions describes one rasterization request.
type RenderOptions struct {
	DPI   int
	Range PageRange
	// Workers and Engine are hints for adapters backed by external tools.
	// The in-process MuPDF adapter renders sequentially and ignores both.
	Workers int
	Engine  string
}

// RenderedPage is an uncompressed raster for exactly one page. It lives
// only for the duration of a single pipeline step.
type RenderedPage struct {
	PageNum int
	Image   image.Image
}

// PageSize holds pixel dimensions.
type PageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// EncodedPage is the per-page unit of output: compressed image bytes plus
// the post-normalization dimensions. Owned by the result store once
// inserted; immutable thereafter.
type EncodedPage struct {
	PageNum      int
	Data         []byte
	OriginalSize PageSize
}

// PageInfo is the metadata a client sees for one stored page.
type PageInfo struct {
	PageNum  int      `json:"page_num"`
	Size     PageSize `json:"size"`
	ByteSize int64    `json:"byte_size"`
	FileName string   `json:"file_name"`
}

// PageFileName returns the download name for a page, zero-padded to three
// digits: page-001.webp, page-042.webp.
func PageFileName(pageNum int) string {
	return fmt.Sprintf("page-%03d.webp", pageNum)
}

// PageEstimate is the advisory page count for a document. Exact estimates
// come from a structural reader; inexact ones from the file-size heuristic.
type PageEstimate struct {
	Count  int    `json:"count"`
	Exact  bool   `json:"exact"`
	Source string `json:"source"`
}

// RunState tracks where a pipeline run currently is.
type RunState string

const (
	StateIdle       RunState = "idle"
	StateEstimating RunState = "estimating"
	StateRendering  RunState = "rendering"
	StateEncoding   RunState = "encoding"
	StateCompleted  RunState = "completed"
	StateFailed     RunState = "failed"
)

// RunWarning records a page range that failed during an otherwise
// successful run.
type RunWarning struct {
	Range   PageRange `json:"range"`
	Message string    `json:"message"`
}

// RunResult summarizes one pipeline run.
type RunResult struct {
	State          RunState         `json:"state"`
	Config         ConversionConfig `json:"config"`
	PagesConverted int              `json:"pages_converted"`
	Estimate       PageEstimate     `json:"estimate"`
	Warnings       []RunWarning     `json:"warnings,omitempty"`
	Truncated      bool             `json:"truncated"`
	TruncatedAt    int              `json:"truncated_at,omitempty"`
}

// Session holds everything for one uploaded document: the bytes, the
// result store, and the state of the most recent run. Sessions are created
// by the session manager and never shared between documents.
type Session struct {
	ID           string
	DocumentName string
	Document     []byte
	FileSize     int64
	LargeFile    bool
	Results      ResultStore
	State        RunState
	LastRun      *RunResult
	Converting   bool
	CreatedAt    time.Time
}
