// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"pdf-webp-converter/internal/domain"
	apperrors "pdf-webp-converter/pkg/errors"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
)

// ConvertHandler handles document upload, conversion, and download requests
type ConvertHandler struct {
	sessions  domain.SessionService
	converter domain.ConversionService
	config    domain.Config
	logger    domain.Logger
}

// NewConvertHandler creates a new conversion handler
func NewConvertHandler(
	sessions domain.SessionService,
	converter domain.ConversionService,
	config domain.Config,
	logger domain.Logger,
) *ConvertHandler {
	return &ConvertHandler{
		sessions:  sessions,
		converter: converter,
		config:    config,
		logger:    logger,
	}
}

// uploadResponse is returned after a successful document upload.
type uploadResponse struct {
	SessionID     string `json:"session_id"`
	Document      string `json:"document"`
	FileSize      int64  `json:"file_size"`
	FileSizeHuman string `json:"file_size_human"`
	LargeFile     bool   `json:"large_file"`
	Warning       string `json:"warning,omitempty"`
}

// UploadDocument accepts a multipart PDF upload and opens a session for it.
// An optional "replace" form field names a previous session to clear first,
// so a re-upload never leaves stale results or spool files behind.
func (h *ConvertHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	// Sanitize filename (strip any path components)
	originalName := strings.TrimSpace(filepath.Base(header.Filename))
	if originalName == "" || originalName == "." || originalName == string(filepath.Separator) {
		originalName = "document.pdf"
	}

	if ext := strings.ToLower(filepath.Ext(originalName)); ext != ".pdf" {
		h.writeError(w, http.StatusBadRequest, "Unsupported file type. Only PDF (.pdf) files are accepted.")
		return
	}

	maxSize := h.config.GetMaxFileSize()
	if header.Size > maxSize {
		h.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("File too large. Maximum upload size is %s.", humanize.Bytes(uint64(maxSize))))
		return
	}

	document, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Could not read uploaded file")
		return
	}
	if int64(len(document)) > maxSize {
		h.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("File too large. Maximum upload size is %s.", humanize.Bytes(uint64(maxSize))))
		return
	}

	// Replacing a document discards the old session before the new one starts.
	if previous := r.FormValue("replace"); previous != "" {
		if err := h.sessions.Clear(previous); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			h.logger.Error("failed to clear replaced session", err, "session_id", previous)
		}
	}

	session, err := h.sessions.Create(originalName, document)
	if err != nil {
		if errors.Is(err, domain.ErrNoDocument) {
			h.writeError(w, http.StatusBadRequest, "Uploaded file is empty")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Could not create conversion session")
		return
	}

	resp := uploadResponse{
		SessionID:     session.ID,
		Document:      session.DocumentName,
		FileSize:      session.FileSize,
		FileSizeHuman: humanize.Bytes(uint64(session.FileSize)),
		LargeFile:     session.LargeFile,
	}
	if session.LargeFile {
		resp.Warning = fmt.Sprintf("Large PDF detected (%s). Pages will be processed one at a time.", resp.FileSizeHuman)
	}

	h.writeJSON(w, http.StatusCreated, resp)
}

// Convert runs the conversion pipeline for a session. The body may carry
// dpi, quality, max_dimension, and batch_size; omitted fields use defaults
// and out-of-range values are clamped.
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var cfg domain.ConversionConfig
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			h.writeError(w, http.StatusBadRequest, "Invalid conversion settings")
			return
		}
	}

	result, err := h.converter.Convert(r.Context(), sessionID, cfg)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			h.writeError(w, http.StatusNotFound, "Session not found. Upload a document first.")
		case errors.Is(err, domain.ErrConversionInProgress):
			h.writeError(w, http.StatusConflict, "A conversion is already running for this session.")
		default:
			h.logger.Error("conversion failed", err, "session_id", sessionID)
			h.writeError(w, apperrors.GetStatusCode(err), err.Error())
		}
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// ListPages returns metadata for every converted page, in page order.
func (h *ConvertHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSession(w, r)
	if !ok {
		return
	}

	pages := session.Results.Pages()
	// Ensure JSON is [] not null when there are no pages.
	if pages == nil {
		pages = make([]domain.PageInfo, 0)
	}
	h.writeJSON(w, http.StatusOK, pages)
}

// DownloadPage streams one converted page as image/webp.
func (h *ConvertHandler) DownloadPage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSession(w, r)
	if !ok {
		return
	}

	pageNum, err := strconv.Atoi(mux.Vars(r)["num"])
	if err != nil || pageNum < 1 {
		h.writeError(w, http.StatusBadRequest, "Page number must be a positive integer")
		return
	}

	data, err := session.Results.PageData(pageNum)
	if err != nil {
		if errors.Is(err, domain.ErrPageNotFound) {
			h.writeError(w, http.StatusNotFound, "Page not found. It may have failed to convert.")
			return
		}
		h.logger.Error("failed to read page data", err, "session_id", session.ID, "page", pageNum)
		h.writeError(w, http.StatusInternalServerError, "Could not read page data")
		return
	}

	name := domain.PageFileName(pageNum)
	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// DownloadArchive streams every converted page as one zip archive.
func (h *ConvertHandler) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSession(w, r)
	if !ok {
		return
	}

	archive, err := session.Results.ExportArchive()
	if err != nil {
		if errors.Is(err, domain.ErrNoResults) {
			h.writeError(w, http.StatusBadRequest, "No converted pages to download. Run a conversion first.")
			return
		}
		h.logger.Error("failed to build archive", err, "session_id", session.ID)
		h.writeError(w, http.StatusInternalServerError, "Could not build archive")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="converted_pages.zip"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(archive)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

// ClearSession removes a session and all of its converted pages.
func (h *ConvertHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := h.sessions.Clear(sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			h.writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error("failed to clear session", err, "session_id", sessionID)
		h.writeError(w, http.StatusInternalServerError, "Could not clear session")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// getSession resolves the session from the route, writing the error
// response itself when the session does not exist.
func (h *ConvertHandler) getSession(w http.ResponseWriter, r *http.Request) (*domain.Session, bool) {
	sessionID := mux.Vars(r)["id"]
	session, err := h.sessions.Get(sessionID)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Session not found. Upload a document first.")
		return nil, false
	}
	return session, true
}

func (h *ConvertHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	writeError(w, statusCode, message)
}

func (h *ConvertHandler) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	writeJSON(w, statusCode, data)
}
