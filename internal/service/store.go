package service

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"pdf-webp-converter/internal/domain"
)

type storedPage struct {
	size     domain.PageSize
	byteSize int64
	data     []byte // in-memory mode
	path     string // spool mode
}

// ResultStore keeps the encoded pages of one session, keyed by page number.
// Small documents are held in memory; large ones spool each page to a file
// under a per-session directory so resident memory stays bounded. Reads may
// happen while a conversion run is still inserting, hence the lock.
type ResultStore struct {
	mu       sync.RWMutex
	spoolDir string
	pages    map[int]*storedPage
}

// NewResultStore creates an in-memory result store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		pages: make(map[int]*storedPage),
	}
}

// NewSpooledResultStore creates a result store that writes each page to a
// file under dir instead of holding the bytes in memory.
func NewSpooledResultStore(dir string) *ResultStore {
	return &ResultStore{
		spoolDir: dir,
		pages:    make(map[int]*storedPage),
	}
}

// Insert stores an encoded page. Inserting a page number that already
// exists overwrites it: last write wins.
func (s *ResultStore) Insert(page domain.EncodedPage) error {
	if page.PageNum < 1 {
		return &domain.ValidationError{Field: "page_num", Message: "must be >= 1"}
	}
	if len(page.Data) == 0 {
		return &domain.ValidationError{Field: "image_bytes", Message: "must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &storedPage{
		size:     page.OriginalSize,
		byteSize: int64(len(page.Data)),
	}
	if s.spoolDir != "" {
		if err := os.MkdirAll(s.spoolDir, 0o755); err != nil {
			return fmt.Errorf("create spool dir: %w", err)
		}
		path := filepath.Join(s.spoolDir, domain.PageFileName(page.PageNum))
		if err := os.WriteFile(path, page.Data, 0o644); err != nil {
			return fmt.Errorf("spool page %d: %w", page.PageNum, err)
		}
		entry.path = path
	} else {
		entry.data = page.Data
	}

	s.pages[page.PageNum] = entry
	return nil
}

// Pages returns metadata for all stored pages in ascending page order.
func (s *ResultStore) Pages() []domain.PageInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nums := s.sortedPageNums()
	infos := make([]domain.PageInfo, 0, len(nums))
	for _, num := range nums {
		entry := s.pages[num]
		infos = append(infos, domain.PageInfo{
			PageNum:  num,
			Size:     entry.size,
			ByteSize: entry.byteSize,
			FileName: domain.PageFileName(num),
		})
	}
	return infos
}

// PageData returns the encoded bytes for one page.
func (s *ResultStore) PageData(pageNum int) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.pages[pageNum]
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	if entry.path != "" {
		data, err := os.ReadFile(entry.path)
		if err != nil {
			return nil, fmt.Errorf("read spooled page %d: %w", pageNum, err)
		}
		return data, nil
	}
	return entry.data, nil
}

// Len returns the number of stored pages.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages)
}

// Clear removes all entries and synchronously deletes any spooled files.
func (s *ResultStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pages = make(map[int]*storedPage)
	if s.spoolDir != "" {
		if err := os.RemoveAll(s.spoolDir); err != nil {
			return fmt.Errorf("remove spool dir: %w", err)
		}
	}
	return nil
}

// ExportArchive builds a zip archive of every stored page, entries named
// page-NNN.webp in ascending page order. The store is not mutated, and two
// exports without an intervening mutation produce identical bytes.
func (s *ResultStore) ExportArchive() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.pages) == 0 {
		return nil, domain.ErrNoResults
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, num := range s.sortedPageNums() {
		entry := s.pages[num]
		data := entry.data
		if entry.path != "" {
			var err error
			data, err = os.ReadFile(entry.path)
			if err != nil {
				return nil, fmt.Errorf("read spooled page %d: %w", num, err)
			}
		}

		w, err := zw.Create(domain.PageFileName(num))
		if err != nil {
			return nil, fmt.Errorf("create archive entry for page %d: %w", num, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("write archive entry for page %d: %w", num, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// sortedPageNums returns page numbers ascending. Callers must hold the lock.
func (s *ResultStore) sortedPageNums() []int {
	nums := make([]int, 0, len(s.pages))
	for num := range s.pages {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	return nums
}
