package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/config"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/scan"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/storage"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type fakeScanService struct {
	imported *scan.ImportScanLogRequest
}

func (f *fakeScanService) Import(ctx context.Context, req scan.ImportScanLogRequest) (scan.ImportScanLogResponse, error) {
	f.imported = &req
	return scan.ImportScanLogResponse{BatchID: "batch-1", ParsedEvents: 2, DailySets: 1}, nil
}

func (f *fakeScanService) ListDailyScans(ctx context.Context, filter scan.DailyScanFilter) ([]scan.DailyScanSetResponse, error) {
	return []scan.DailyScanSetResponse{{EmployeeCode: "1001", ScanDate: filter.StartDate, Times: []string{"08:00"}, ScanCount: 1}}, nil
}

func (f *fakeScanService) GetImportBatch(ctx context.Context, id string) (scan.ImportBatchResponse, error) {
	return scan.ImportBatchResponse{}, scan.ErrImportBatchNotFound
}

type fakeShiftService struct{}

func (fakeShiftService) Create(ctx context.Context, req shift.CreateShiftRequest) (shift.ShiftResponse, error) {
	return shift.ShiftResponse{ID: "s1", Name: req.Name}, nil
}

func (fakeShiftService) Update(ctx context.Context, req shift.UpdateShiftRequest) (shift.ShiftResponse, error) {
	return shift.ShiftResponse{ID: req.ID, Name: req.Name}, nil
}

func (fakeShiftService) Delete(ctx context.Context, id string) error {
	return shift.ErrShiftNotFound
}

func (fakeShiftService) GetByID(ctx context.Context, id string) (shift.ShiftResponse, error) {
	return shift.ShiftResponse{}, shift.ErrShiftNotFound
}

func (fakeShiftService) List(ctx context.Context, filter shift.ListShiftFilter) ([]shift.ShiftResponse, error) {
	return []shift.ShiftResponse{}, nil
}

func (fakeShiftService) ValidateTemplate(ctx context.Context, req shift.ValidateTemplateRequest) (shift.ValidateTemplateResponse, error) {
	return shift.ValidateTemplateResponse{Valid: true}, nil
}

func (fakeShiftService) PreviewAssignments(ctx context.Context, id string) (shift.AssignmentPreviewResponse, error) {
	return shift.AssignmentPreviewResponse{ShiftID: id}, nil
}

type fakeWorkCalculationService struct{}

func (fakeWorkCalculationService) Calculate(ctx context.Context, filter attendance.WorkCalculationFilter) (attendance.WorkCalculationResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.WorkCalculationResponse{}, err
	}
	return attendance.WorkCalculationResponse{StartDate: filter.StartDate, EndDate: filter.EndDate}, nil
}

func (fakeWorkCalculationService) Export(ctx context.Context, filter attendance.WorkCalculationFilter) (*bytes.Buffer, string, error) {
	return bytes.NewBufferString("xlsx-bytes"), "work-calculation_" + filter.StartDate + "_" + filter.EndDate + ".xlsx", nil
}

type fakeAdjustmentService struct {
	applied *attendance.ApplyAdjustmentRequest
	bulk    *attendance.BulkDayOffRequest
}

func (f *fakeAdjustmentService) ApplyAdjustment(ctx context.Context, req attendance.ApplyAdjustmentRequest) (attendance.AdjustmentResponse, error) {
	f.applied = &req
	return attendance.AdjustmentResponse{EmployeeID: req.EmployeeID, Date: req.Date, Status: attendance.Status(req.Status), AdjustedBy: req.AdjustedBy}, nil
}

func (f *fakeAdjustmentService) BulkAssignDayOff(ctx context.Context, req attendance.BulkDayOffRequest) (attendance.BulkDayOffResponse, error) {
	f.bulk = &req
	return attendance.BulkDayOffResponse{Status: attendance.Status(req.Status), Requested: 1, Applied: 1}, nil
}

func (f *fakeAdjustmentService) GetAdjustment(ctx context.Context, employeeID string, workDate string) (attendance.AdjustmentResponse, error) {
	return attendance.AdjustmentResponse{}, attendance.ErrAdjustmentNotFound
}

type routerFixture struct {
	router      *chi.Mux
	archive     storage.FileStorage
	jwtService  jwt.Service
	scans       *fakeScanService
	adjustments *fakeAdjustmentService
}

func setupRouter(t *testing.T) routerFixture {
	t.Helper()
	cfg := &config.Config{
		App:  config.AppConfig{Name: "hris-attendance-engine", Version: "test", Env: "test"},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	jwtService := jwt.NewJWTService(handlerTestSecret, "1h")
	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	scans := &fakeScanService{}
	adjustments := &fakeAdjustmentService{}

	router := NewRouter(cfg, jwtService, Handlers{
		Scan:            NewScanHandler(scans, archive),
		Shift:           NewShiftHandler(fakeShiftService{}),
		WorkCalculation: NewWorkCalculationHandler(fakeWorkCalculationService{}),
		Adjustment:      NewAdjustmentHandler(adjustments),
	})

	return routerFixture{router: router, archive: archive, jwtService: jwtService, scans: scans, adjustments: adjustments}
}

func (f routerFixture) token(t *testing.T, role user.Role) string {
	t.Helper()
	token, _, err := f.jwtService.GenerateAccessToken(user.Principal{UserID: "u-" + string(role), Email: string(role) + "@example.com", Role: role})
	require.NoError(t, err)
	return token
}

func (f routerFixture) do(t *testing.T, req *http.Request, token string) *httptest.ResponseRecorder {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_RequiresToken(t *testing.T) {
	f := setupRouter(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/shifts", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/shifts", nil), "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RejectsNonAccessTokens(t *testing.T) {
	f := setupRouter(t)

	_, refresh, err := f.jwtService.JWTAuth().Encode(map[string]interface{}{
		"user_id": "u-manager", "role": string(user.RoleManager), "type": "refresh",
	})
	require.NoError(t, err)
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/shifts", nil), refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, anonymous, err := f.jwtService.JWTAuth().Encode(map[string]interface{}{
		"role": string(user.RoleManager), "type": "access",
	})
	require.NoError(t, err)
	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/shifts", nil), anonymous)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_Permissions(t *testing.T) {
	f := setupRouter(t)
	employee := f.token(t, user.RoleEmployee)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/shifts", nil), employee)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeResponse(t, rec)["meta"].(map[string]interface{})["total_items"])

	rec = f.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/shifts", bytes.NewBufferString(`{"name":"Office"}`)), employee)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/work-calculation?start_date=2024-01-01&end_date=2024-01-02", nil), employee)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/attendance/adjustments/bulk-day-off", bytes.NewBufferString(`{}`)),
		f.token(t, user.RolePending))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestScanHandler_Import(t *testing.T) {
	f := setupRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "ATT2024.dat")
	require.NoError(t, err)
	_, err = part.Write([]byte("1001\t2024-01-15 08:00:00\t1\t0\t1\t0\n1001\t2024-01-15 17:00:00\t1\t1\t1\t0\n"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("format", "dat"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := f.do(t, req, f.token(t, user.RoleManager))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.NotNil(t, f.scans.imported)
	assert.Equal(t, "ATT2024.dat", f.scans.imported.FileName)
	assert.Equal(t, scan.FormatDAT, f.scans.imported.Format)
	require.NotNil(t, f.scans.imported.ImportedBy)
	assert.Equal(t, "u-manager", *f.scans.imported.ImportedBy)

	data := decodeResponse(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "batch-1", data["batch_id"])

	archived, err := f.archive.Download(context.Background(), "uploads/batch-1/ATT2024.dat")
	require.NoError(t, err)
	archived.Close()
}

func TestScanHandler_ImportMissingFile(t *testing.T) {
	f := setupRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("format", "dat"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := f.do(t, req, f.token(t, user.RoleManager))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, f.scans.imported)
}

func TestScanHandler_ListAndBatch(t *testing.T) {
	f := setupRouter(t)
	token := f.token(t, user.RoleOwner)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/scans?start_date=2024-01-15&end_date=2024-01-16&employee_codes=1001,,1002", nil), token)
	assert.Equal(t, http.StatusOK, rec.Code)
	meta := decodeResponse(t, rec)["meta"].(map[string]interface{})
	assert.Equal(t, "2024-01-15", meta["start_date"])
	assert.Equal(t, "2024-01-16", meta["end_date"])
	assert.Equal(t, float64(1), meta["total_items"])

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/scans?start_date=15-01-2024&end_date=2024-01-16", nil), token)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/scans/batches/missing", nil), token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShiftHandler(t *testing.T) {
	f := setupRouter(t)
	token := f.token(t, user.RoleManager)

	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/shifts", bytes.NewBufferString(`{"name":"Office"}`)), token)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/shifts", bytes.NewBufferString(`{"name":""}`)), token)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	details := decodeResponse(t, rec)["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Contains(t, details, "name")

	rec = f.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/shifts", bytes.NewBufferString(`{`)), token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/shifts/s9", nil), token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/shifts/s9", nil), token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/shifts?active_only=maybe", nil), token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/shifts/s1/preview", nil), token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWorkCalculationHandler(t *testing.T) {
	f := setupRouter(t)
	token := f.token(t, user.RoleManager)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/work-calculation?start_date=2024-01-15&end_date=2024-01-16", nil), token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/work-calculation?start_date=2024-01-16&end_date=2024-01-15", nil), token)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/work-calculation/export?start_date=2024-01-15&end_date=2024-01-16", nil), token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "work-calculation_2024-01-15_2024-01-16.xlsx")
	assert.Equal(t, "xlsx-bytes", rec.Body.String())
}

func TestAdjustmentHandler(t *testing.T) {
	f := setupRouter(t)
	token := f.token(t, user.RoleManager)

	body := `{"employee_id":"e1","date":"2024-01-15","status":"present","adjusted_by":"someone-else"}`
	rec := f.do(t, httptest.NewRequest(http.MethodPut, "/api/v1/attendance/adjustments", bytes.NewBufferString(body)), token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, f.adjustments.applied)
	assert.Equal(t, "u-manager", f.adjustments.applied.AdjustedBy)
	assert.Equal(t, "PRESENT", f.adjustments.applied.Status)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/attendance/adjustments?employee_id=e1&date=2024-01-15", nil), token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/attendance/adjustments?employee_id=e1", nil), token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bulk := `{"employee_ids":["e1"],"start_date":"2024-01-01","end_date":"2024-01-31","status":"DAY_OFF","weekdays":{"e1":["SAT","SUN"]}}`
	rec = f.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/attendance/adjustments/bulk-day-off", bytes.NewBufferString(bulk)), token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, f.adjustments.bulk)
	assert.Equal(t, "u-manager", f.adjustments.bulk.AdjustedBy)

	rec = f.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/attendance/adjustments/bulk-day-off", bytes.NewBufferString(`{"employee_ids":[]}`)), token)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
