package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aqlhr/aqlhr-backend-go/internal/config"
	"github.com/aqlhr/aqlhr-backend-go/internal/domain/calendar"
	"github.com/aqlhr/aqlhr-backend-go/internal/domain/holiday"
	appHTTP "github.com/aqlhr/aqlhr-backend-go/internal/handler/http"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/cache"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/cron"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/database"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/hijri"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/jwt"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/metrics"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/sse"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/ummalqura"
	"github.com/aqlhr/aqlhr-backend-go/internal/repository/postgresql"
	"github.com/aqlhr/aqlhr-backend-go/internal/repository/sqlite"
	calendarService "github.com/aqlhr/aqlhr-backend-go/internal/service/calendar"
	holidayService "github.com/aqlhr/aqlhr-backend-go/internal/service/holiday"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(slog.String("app", "aqlhr-calendar"), slog.String("env", cfg.App.Env)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	holidayRepo, closeDB, err := openHolidayRepository(ctx, cfg.Database, cfg.DatabaseURL())
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer closeDB()

	flags, closeCache, err := openFlagStore(ctx, cfg.Cache)
	if err != nil {
		log.Fatal("Error connecting to cache: ", err)
	}
	defer closeCache()

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.SSEExpiration)
	if err != nil {
		log.Fatal("Error creating JWT service: ", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(registry)

	converter := newConverter(cfg.Calendar)
	loc := calendarService.LoadLocation(cfg.App.Timezone)
	hub := sse.NewHub()

	holidaySvc := holidayService.NewHolidayService(holidayRepo, flags, converter, hub)

	calendarOpts := []calendarService.Option{
		calendarService.WithLocation(loc),
		calendarService.WithHolidayService(holidaySvc),
		calendarService.WithHub(hub),
		calendarService.WithMetrics(appMetrics),
	}
	if cfg.Calendar.AuthoritativeEnabled {
		calendarOpts = append(calendarOpts, calendarService.WithSource(
			ummalqura.NewClient(cfg.Calendar.AuthoritativeURL, cfg.Calendar.AuthoritativeTimeout),
		))
	} else {
		slog.Warn("Umm al-Qura source disabled, serving computed dates only")
	}
	calendarSvc := calendarService.NewCalendarService(converter, calendarOpts...)

	scheduler := cron.NewScheduler()
	cron.NewCalendarJobs(calendarSvc, cfg.Calendar.RefreshInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	calendarHandler := appHTTP.NewCalendarHandler(calendarSvc, JWTService)
	holidayHandler := appHTTP.NewHolidayHandler(holidaySvc, loc)

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		AllowedOrigins: cfg.App.AllowedOrigins,
		Env:            cfg.App.Env,
		Version:        version,
		LogLevel:       cfg.SlogLevel(),
	}, JWTService, appMetrics, calendarHandler, holidayHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server started", "port", cfg.App.Port, "version", version, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}

func newConverter(cfg config.CalendarConfig) calendar.Converter {
	if cfg.LegacyDriftCorrection {
		slog.Warn("Legacy Hijri drift correction enabled", "correction", hijri.LegacyDriftCorrection.Name)
		return hijri.NewConverter()
	}
	return hijri.NewConverter(hijri.WithCorrections())
}

func openHolidayRepository(ctx context.Context, cfg config.DatabaseConfig, dsn string) (holiday.HolidayRepository, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := database.NewSQLiteDB(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		repo, err := sqlite.NewHolidayRepository(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		slog.Info("Using SQLite holiday store", "path", cfg.SQLitePath)
		return repo, func() { db.Close() }, nil

	default:
		db, err := database.NewPostgreSQLDB(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		if err := postgresql.EnsureHolidaySchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		slog.Info("Using PostgreSQL holiday store", "host", cfg.Host, "database", cfg.Name)
		return postgresql.NewHolidayRepository(db), db.Close, nil
	}
}

func openFlagStore(ctx context.Context, cfg config.CacheConfig) (cache.FlagStore, func(), error) {
	if cfg.Driver != config.CacheRedis {
		return cache.NewMemoryFlagStore(), func() {}, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Using Redis seed flags", "addr", cfg.RedisAddr)
	return cache.NewRedisFlagStore(client), func() { client.Close() }, nil
}
