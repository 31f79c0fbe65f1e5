package http

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/scan"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/storage"
	"github.com/go-chi/chi/v5"
)

type ScanHandler interface {
	Import(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetBatch(w http.ResponseWriter, r *http.Request)
}

type scanHandlerImpl struct {
	scanService scan.ScanService
	archive     storage.FileStorage
}

// NewScanHandler creates the scan handler. Uploaded logs are copied to
// archive after a successful import; a nil archive disables that.
func NewScanHandler(scanService scan.ScanService, archive storage.FileStorage) ScanHandler {
	return &scanHandlerImpl{
		scanService: scanService,
		archive:     archive,
	}
}

// Import implements ScanHandler.
func (h *scanHandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Scan log file is required", nil)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		slog.Error("Failed to read uploaded file", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}

	req := scan.ImportScanLogRequest{
		Format:   r.FormValue("format"),
		FileName: fileHeader.Filename,
		Content:  content,
	}
	if p, err := jwt.PrincipalFromContext(r.Context()); err == nil {
		req.ImportedBy = &p.UserID
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.scanService.Import(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if h.archive != nil {
		archivePath := "uploads/" + result.BatchID + "/" + path.Base(fileHeader.Filename)
		if _, err := h.archive.Upload(r.Context(), bytes.NewReader(content), archivePath); err != nil {
			slog.Warn("Failed to archive scan log", "batch_id", result.BatchID, "error", err)
		}
	}

	response.Created(w, "Scan log imported successfully", result)
}

// List implements ScanHandler.
func (h *scanHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := scan.DailyScanFilter{
		StartDate:     r.URL.Query().Get("start_date"),
		EndDate:       r.URL.Query().Get("end_date"),
		EmployeeCodes: splitQueryList(r.URL.Query().Get("employee_codes")),
	}

	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.scanService.ListDailyScans(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, result, response.Meta{
		StartDate:  filter.StartDate,
		EndDate:    filter.EndDate,
		TotalItems: len(result),
	})
}

// GetBatch implements ScanHandler.
func (h *scanHandlerImpl) GetBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.scanService.GetImportBatch(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// splitQueryList reads a comma separated query value. Blank items are dropped.
func splitQueryList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var result []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
