package service

import (
	"context"
	"fmt"
	"image"

	"pdf-webp-converter/internal/domain"
)

// Mock logger used by service package tests.
type MockServiceLogger struct{}

func NewMockServiceLogger() domain.Logger {
	return &MockServiceLogger{}
}

func (l *MockServiceLogger) Info(msg string, fields ...interface{})             {}
func (l *MockServiceLogger) Error(msg string, err error, fields ...interface{}) {}
func (l *MockServiceLogger) Debug(msg string, fields ...interface{})            {}
func (l *MockServiceLogger) Warn(msg string, fields ...interface{})             {}

// testConfig implements domain.Config with direct field values.
type testConfig struct {
	serverPort         string
	spoolPath          string
	maxFileSize        int64
	logLevel           string
	largeFileThreshold int64
	maxPagesPerRun     int
	pageEstimateFactor float64
	defaultBatchSize   int
}

func (c *testConfig) GetServerPort() string         { return c.serverPort }
func (c *testConfig) GetSpoolPath() string          { return c.spoolPath }
func (c *testConfig) GetMaxFileSize() int64         { return c.maxFileSize }
func (c *testConfig) GetLogLevel() string           { return c.logLevel }
func (c *testConfig) GetLargeFileThreshold() int64  { return c.largeFileThreshold }
func (c *testConfig) GetMaxPagesPerRun() int        { return c.maxPagesPerRun }
func (c *testConfig) GetPageEstimateFactor() float64 { return c.pageEstimateFactor }
func (c *testConfig) GetDefaultBatchSize() int      { return c.defaultBatchSize }

func newTestConfig(spoolPath string) *testConfig {
	return &testConfig{
		serverPort:         "8080",
		spoolPath:          spoolPath,
		maxFileSize:        50 * 1024 * 1024,
		logLevel:           "error",
		largeFileThreshold: 2 * 1024 * 1024,
		maxPagesPerRun:     50,
		pageEstimateFactor: 2.0,
		defaultBatchSize:   3,
	}
}

// MockRasterizer produces synthetic rasters for a document with a fixed
// page count. Individual pages can be made to fail, and every requested
// range is recorded for batch-policy assertions.
type MockRasterizer struct {
	totalPages int
	pageW      int
	pageH      int
	failPages  map[int]bool
	unreadable bool
	calls      []domain.PageRange
}

func NewMockRasterizer(totalPages, pageW, pageH int) *MockRasterizer {
	return &MockRasterizer{
		totalPages: totalPages,
		pageW:      pageW,
		pageH:      pageH,
		failPages:  make(map[int]bool),
	}
}

func (m *MockRasterizer) RenderRange(ctx context.Context, doc []byte, opts domain.RenderOptions) ([]domain.RenderedPage, error) {
	m.calls = append(m.calls, opts.Range)

	if m.unreadable {
		return nil, fmt.Errorf("%w: bad header", domain.ErrUnreadableDocument)
	}
	if !opts.Range.Valid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPageRange, opts.Range)
	}
	if opts.Range.First > m.totalPages {
		return nil, nil
	}

	last := opts.Range.Last
	if last > m.totalPages {
		last = m.totalPages
	}

	var pages []domain.RenderedPage
	for num := opts.Range.First; num <= last; num++ {
		if m.failPages[num] {
			return pages, fmt.Errorf("render page %d: corrupt content stream", num)
		}
		pages = append(pages, domain.RenderedPage{
			PageNum: num,
			Image:   image.NewRGBA(image.Rect(0, 0, m.pageW, m.pageH)),
		})
	}
	return pages, nil
}

// MockEstimator returns a fixed estimate.
type MockEstimator struct {
	estimate domain.PageEstimate
}

func (m *MockEstimator) Estimate(doc []byte) domain.PageEstimate {
	return m.estimate
}
