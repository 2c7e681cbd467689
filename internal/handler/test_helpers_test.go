package handler

import (
	"archive/zip"
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"pdf-webp-converter/internal/domain"
)

// Mock logger used by handler package tests.
type MockHandlerLogger struct{}

func NewMockHandlerLogger() domain.Logger {
	return &MockHandlerLogger{}
}

func (l *MockHandlerLogger) Info(msg string, fields ...interface{})             {}
func (l *MockHandlerLogger) Error(msg string, err error, fields ...interface{}) {}
func (l *MockHandlerLogger) Debug(msg string, fields ...interface{})            {}
func (l *MockHandlerLogger) Warn(msg string, fields ...interface{})             {}

// testConfig implements domain.Config with direct field values.
type testConfig struct {
	maxFileSize        int64
	largeFileThreshold int64
}

func (c *testConfig) GetServerPort() string          { return "8080" }
func (c *testConfig) GetSpoolPath() string           { return "" }
func (c *testConfig) GetMaxFileSize() int64          { return c.maxFileSize }
func (c *testConfig) GetLogLevel() string            { return "error" }
func (c *testConfig) GetLargeFileThreshold() int64   { return c.largeFileThreshold }
func (c *testConfig) GetMaxPagesPerRun() int         { return 50 }
func (c *testConfig) GetPageEstimateFactor() float64 { return 2.0 }
func (c *testConfig) GetDefaultBatchSize() int       { return 3 }

func newHandlerTestConfig() *testConfig {
	return &testConfig{
		maxFileSize:        10 * 1024 * 1024,
		largeFileThreshold: 2 * 1024 * 1024,
	}
}

// mockResultStore is a minimal in-memory domain.ResultStore.
type mockResultStore struct {
	pages map[int]domain.EncodedPage
}

func newMockResultStore() *mockResultStore {
	return &mockResultStore{pages: make(map[int]domain.EncodedPage)}
}

func (s *mockResultStore) Insert(page domain.EncodedPage) error {
	s.pages[page.PageNum] = page
	return nil
}

func (s *mockResultStore) Pages() []domain.PageInfo {
	var infos []domain.PageInfo
	for _, page := range s.pages {
		infos = append(infos, domain.PageInfo{
			PageNum:  page.PageNum,
			FileName: domain.PageFileName(page.PageNum),
			ByteSize: int64(len(page.Data)),
			Size:     page.OriginalSize,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].PageNum < infos[j].PageNum })
	return infos
}

func (s *mockResultStore) PageData(pageNum int) ([]byte, error) {
	page, ok := s.pages[pageNum]
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	return page.Data, nil
}

func (s *mockResultStore) Len() int { return len(s.pages) }

func (s *mockResultStore) Clear() error {
	s.pages = make(map[int]domain.EncodedPage)
	return nil
}

func (s *mockResultStore) ExportArchive() ([]byte, error) {
	if len(s.pages) == 0 {
		return nil, domain.ErrNoResults
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, info := range s.Pages() {
		f, err := zw.Create(info.FileName)
		if err != nil {
			return nil, err
		}
		if _, err := f.Write(s.pages[info.PageNum].Data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// mockSessionService implements domain.SessionService with function fields
// so each test can script the behavior it needs.
type mockSessionService struct {
	createFn func(documentName string, document []byte) (*domain.Session, error)
	getFn    func(id string) (*domain.Session, error)
	clearFn  func(id string) error

	clearedIDs []string
}

func (m *mockSessionService) Create(documentName string, document []byte) (*domain.Session, error) {
	if m.createFn != nil {
		return m.createFn(documentName, document)
	}
	return &domain.Session{
		ID:           "test-session",
		DocumentName: documentName,
		Document:     document,
		FileSize:     int64(len(document)),
		Results:      newMockResultStore(),
		State:        domain.StateIdle,
	}, nil
}

func (m *mockSessionService) Get(id string) (*domain.Session, error) {
	if m.getFn != nil {
		return m.getFn(id)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *mockSessionService) Clear(id string) error {
	m.clearedIDs = append(m.clearedIDs, id)
	if m.clearFn != nil {
		return m.clearFn(id)
	}
	return nil
}

// mockConversionService implements domain.ConversionService.
type mockConversionService struct {
	convertFn func(ctx context.Context, sessionID string, cfg domain.ConversionConfig) (*domain.RunResult, error)

	lastConfig domain.ConversionConfig
}

func (m *mockConversionService) Convert(ctx context.Context, sessionID string, cfg domain.ConversionConfig) (*domain.RunResult, error) {
	m.lastConfig = cfg
	if m.convertFn != nil {
		return m.convertFn(ctx, sessionID, cfg)
	}
	return &domain.RunResult{State: domain.StateCompleted, Config: cfg}, nil
}

// newUploadRequest builds a multipart upload request with one file field.
func newUploadRequest(t *testing.T, filename string, content []byte, extraFields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	for key, value := range extraFields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write form field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
