package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"costume-rental-backend/internal/api/grpc/interceptor"
	httpapi "costume-rental-backend/internal/api/http"
	"costume-rental-backend/internal/config"
	"costume-rental-backend/internal/jobs"
	"costume-rental-backend/internal/logger"
	"costume-rental-backend/internal/metrics"
	"costume-rental-backend/internal/migrations"
	"costume-rental-backend/internal/repository/postgres"
	"costume-rental-backend/internal/scheduler"
	"costume-rental-backend/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	migrate := flag.Bool("migrate", false, "Apply database migrations before serving")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Costume Rental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http_address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Rental policy", "max_days", cfg.Rental.MaxDays, "default_penalty_per_day", cfg.Rental.DefaultPenaltyPerDay)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if *migrate {
		if err := migrations.Up(db); err != nil {
			logger.Error("Failed to apply migrations", "error", err)
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		logger.Info("Database migrations applied")
	}

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	ctx := context.Background()
	penalty, err := service.LoadPenaltyConfig(ctx, store.SettingsRepository, cfg.DefaultPenalty())
	if err != nil {
		logger.Error("Failed to load penalty rate", "error", err)
		log.Fatalf("Failed to load penalty rate: %v", err)
	}

	ledgerSvc := service.NewInventoryLedger(store.InventoryRepository)
	rentalSvc := service.NewRentalService(
		store,
		store.RentalRepository,
		store.InventoryRepository,
		service.NewCustomerDirectory(store.CustomerRepository),
		service.NewActorDirectory(store.UserRepository),
		penalty,
		cfg.Rental.MaxDays,
	)
	sweeper := service.NewOverdueSweeper(store.RentalRepository)

	m := metrics.New()
	m.SetPenaltyRate(penalty.PerDay())

	// Returns are priced with this process's copy of the rate, so keep it in
	// step with updates made through other instances.
	rateRefresher, err := scheduler.NewScheduler(jobs.NewJobRunner(&jobs.Services{Penalty: penalty}, cfg, m))
	if err != nil {
		logger.Error("Failed to initialize penalty rate refresh", "error", err)
		log.Fatalf("Failed to initialize penalty rate refresh: %v", err)
	}

	// Set up HTTP API
	router := httpapi.NewRouter(httpapi.Handlers{
		Rentals:   httpapi.NewRentalHandler(rentalSvc, sweeper, m),
		Actors:    service.NewActorDirectory(store.UserRepository),
		Inventory: httpapi.NewInventoryHandler(ledgerSvc, m),
		Config:    httpapi.NewConfigHandler(rentalSvc, m),
	}, db, m)

	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Set up gRPC health server
	lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	loggingInterceptor := interceptor.NewLoggingInterceptor()
	s := grpc.NewServer(
		grpc.UnaryInterceptor(loggingInterceptor.Unary()),
		grpc.StreamInterceptor(loggingInterceptor.Stream()),
	)
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(s, healthSrv)

	// Register reflection service for grpcurl
	reflection.Register(s)

	go func() {
		logger.Info("gRPC health server listening", "address", cfg.GetGRPCAddress())
		if err := s.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
		}
	}()

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("HTTP server error: %v", err)
		}
	}()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	rateRefresher.Start()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down servers...")
	healthSrv.Shutdown()
	rateRefresher.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	s.GracefulStop()
	logger.Info("Servers stopped. Goodbye!")
}
