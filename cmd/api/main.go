package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/attendance"
	scanService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/scan"
	shiftService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/shift"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.DatabaseURL()
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(dsn); err != nil {
			return err
		}
	}

	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	locker, closeLocker, err := newLocker(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeLocker()

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		return err
	}

	transactor := postgresql.NewTransactor(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	orgRepo := postgresql.NewOrganizationRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	scanSetRepo := postgresql.NewDailyScanSetRepository(db)
	importBatchRepo := postgresql.NewImportBatchRepository(db)
	adjustmentRepo := postgresql.NewAdjustmentRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	scanSvc := scanService.NewScanService(transactor, scanSetRepo, importBatchRepo)
	shiftSvc := shiftService.NewShiftService(transactor, shiftRepo, orgRepo, employeeRepo)
	reconciler := attendanceService.NewReconciler(attendanceService.NewCalculator(), cfg.Engine.Workers)
	workCalculationSvc := attendanceService.NewWorkCalculationService(employeeRepo, shiftRepo, scanSetRepo, adjustmentRepo, reconciler, cfg.Engine.MaxRangeDays)
	adjustmentSvc := attendanceService.NewAdjustmentService(adjustmentRepo, employeeRepo, locker)

	router := appHTTP.NewRouter(cfg, JWTService, appHTTP.Handlers{
		Scan:            appHTTP.NewScanHandler(scanSvc, fileStorage),
		Shift:           appHTTP.NewShiftHandler(shiftSvc),
		WorkCalculation: appHTTP.NewWorkCalculationHandler(workCalculationSvc),
		Adjustment:      appHTTP.NewAdjustmentHandler(adjustmentSvc),
	})

	scheduler := cron.NewScheduler()
	cron.NewInboxJobs(scanSvc, fileStorage, cfg.Scanner.InboxDir).RegisterJobs(scheduler, cfg.Scanner.PollInterval)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// newLocker uses Redis when REDIS_ADDR is set and in-process locks otherwise.
func newLocker(ctx context.Context, cfg config.RedisConfig) (keylock.Locker, func(), error) {
	if cfg.Addr == "" {
		slog.Warn("REDIS_ADDR not set, adjustment locks are local to this instance")
		return keylock.NewLocalLocker(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	locker := keylock.NewRedisLocker(rdb, keylock.RedisOptions{
		Prefix: "attendance-adjustment:",
		TTL:    cfg.LockTTL,
	})
	return locker, func() { rdb.Close() }, nil
}
