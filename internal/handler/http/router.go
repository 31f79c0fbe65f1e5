package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/config"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type Handlers struct {
	Scan            ScanHandler
	Shift           ShiftHandler
	WorkCalculation WorkCalculationHandler
	Adjustment      AdjustmentHandler
}

func NewRouter(cfg *config.Config, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.IsDevelopment())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
		Skip: func(req *http.Request, respStatus int) bool {
			return req.URL.Path == "/" && respStatus == http.StatusOK
		},
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired)

		r.Route("/scans", func(r chi.Router) {
			r.With(middleware.RequirePermission(user.PermissionScanView)).Get("/", h.Scan.List)
			r.With(middleware.RequirePermission(user.PermissionScanView)).Get("/batches/{id}", h.Scan.GetBatch)
			r.With(middleware.RequirePermission(user.PermissionScanImport)).Post("/import", h.Scan.Import)
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionShiftView))
				r.Get("/", h.Shift.List)
				r.Get("/{id}", h.Shift.GetByID)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionShiftManage))
				r.Post("/", h.Shift.Create)
				r.Post("/validate", h.Shift.ValidateTemplate)
				r.Put("/{id}", h.Shift.Update)
				r.Delete("/{id}", h.Shift.Delete)
				r.Get("/{id}/preview", h.Shift.Preview)
			})
		})

		r.Route("/work-calculation", func(r chi.Router) {
			r.Use(middleware.RequirePermission(user.PermissionAttendanceViewAll))
			r.Get("/", h.WorkCalculation.Calculate)
			r.With(middleware.RequirePermission(user.PermissionReportsExport)).Get("/export", h.WorkCalculation.Export)
		})

		r.Route("/attendance/adjustments", func(r chi.Router) {
			r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/", h.Adjustment.Get)
			r.With(middleware.RequirePermission(user.PermissionAttendanceAdjust)).Put("/", h.Adjustment.Apply)
			r.With(middleware.RequireManager).Post("/bulk-day-off", h.Adjustment.BulkDayOff)
		})
	})

	return r
}
