package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/config"
	appHTTP "github.com/cmlabs-hris/attendance-engine/internal/handler/http"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	sweepOnce := flag.Bool("sweep-once", false, "run the absence sweep once and exit instead of serving")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.SlogLevel(),
	})).With(
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	officeRepo := postgresql.NewOfficeRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	txManager := postgresql.NewTransactionManager(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	attendanceSvc := attendanceService.NewAttendanceService(
		txManager,
		attendanceRepo,
		shiftRepo,
		officeRepo,
		holidayRepo,
		attendanceService.Options{
			Location:          cfg.Location(),
			SweepLookbackDays: cfg.Attendance.SweepLookbackDays,
		},
	)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceSvc, cfg.Attendance.SweepInterval, cfg.Attendance.SweepTimeout).RegisterJobs(scheduler)

	if *sweepOnce {
		return scheduler.RunOnce(ctx)
	}

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AppName:        cfg.App.Name,
		AppVersion:     cfg.App.Version,
		Env:            cfg.App.Env,
		LogLevel:       cfg.App.SlogLevel(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestTimeout: cfg.App.RequestTimeout,
	}, JWTService, attendanceHandler)

	if cfg.Attendance.SweepEnabled {
		scheduler.Start()
		defer scheduler.Stop()
	} else {
		slog.Warn("Absence sweep is disabled")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "timezone", cfg.Location().String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
