package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/auth"
	"workforce/internal/db"
	"workforce/internal/domain/attendance"
	"workforce/internal/domain/employee"
	"workforce/internal/domain/leave"
	"workforce/internal/domain/reports"
	"workforce/internal/domain/tasks"
	"workforce/internal/platform/cache"
	"workforce/internal/platform/config"
	"workforce/internal/platform/metrics"
	"workforce/internal/transport/http/api"
	attendancehandler "workforce/internal/transport/http/handlers/attendance"
	authhandler "workforce/internal/transport/http/handlers/auth"
	birthdayshandler "workforce/internal/transport/http/handlers/birthdays"
	employeehandler "workforce/internal/transport/http/handlers/employees"
	leavehandler "workforce/internal/transport/http/handlers/leave"
	reportshandler "workforce/internal/transport/http/handlers/reports"
	taskshandler "workforce/internal/transport/http/handlers/tasks"
	"workforce/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	Pool    *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
}

// New wires the whole application: database, migrations, seed data,
// services and routes. The returned App owns the pool; Close releases it.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	collector := metrics.New()

	authService := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL)
	leaveService := leave.NewService(leave.NewStore(pool), cache.NewMemory(), cfg.BalanceCacheTTL)
	employeeService := employee.NewService(employee.NewStore(pool))
	attendanceService := attendance.NewService(attendance.NewStore(pool))
	reportsService := reports.NewService(reports.NewStore(pool))
	tasksService := tasks.NewService(tasks.NewStore(pool))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authService).RegisterRoutes(r)
		employeehandler.NewHandler(employeeService, leaveService).RegisterRoutes(r)
		leavehandler.NewHandler(leaveService).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceService).RegisterRoutes(r)
		reportshandler.NewHandler(reportsService).RegisterRoutes(r)
		taskshandler.NewHandler(tasksService).RegisterRoutes(r)
		birthdayshandler.NewHandler(employeeService).RegisterRoutes(r)
	})

	return &App{
		Config:  cfg,
		Pool:    pool,
		Router:  router,
		Metrics: collector,
	}, nil
}

func (a *App) Close() {
	a.Pool.Close()
}

// Run builds the app from the environment and serves until the listener
// fails.
func Run() {
	cfg := config.Load()

	app, err := New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("workforce server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
