package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/Greggwolin/landscape-sub000/internal/adapter/http"
	"github.com/Greggwolin/landscape-sub000/internal/adapter/repository/postgres"
	"github.com/Greggwolin/landscape-sub000/internal/config"
	"github.com/Greggwolin/landscape-sub000/internal/domain"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/cashflow"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/metrics"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/sensitivity"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/solver"
)

func main() {
	// 1. Load configuration (.env is optional, for local runs)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Optional persistence: an empty DSN runs the engine purely in-memory
	var runs domain.AnalysisRunRepository
	if cfg.Database.DSN != "" {
		db, err := postgres.NewDB(cfg.Database.DSN)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		runs = postgres.NewAnalysisRunRepository(db)
		log.Println("Analysis run persistence enabled")
	}

	// 3. Initialize the engine services
	projector := cashflow.NewProjectionService()

	metricsService := metrics.NewService()
	metricsService.SolverOptions = solver.Options{
		Tolerance:     cfg.Solver.Tolerance,
		MaxIterations: cfg.Solver.MaxIterations,
		BracketLow:    cfg.Solver.BracketLow,
		BracketHigh:   cfg.Solver.BracketHigh,
	}

	sensitivityService := sensitivity.NewService(projector, metricsService, cfg.Sensitivity.Workers)

	thresholds := sensitivity.Thresholds{
		CriticalBps: cfg.Sensitivity.CriticalBps,
		HighBps:     cfg.Sensitivity.HighBps,
		MediumBps:   cfg.Sensitivity.MediumBps,
	}

	// 4. Start the API server
	apiServer := httpadapter.NewServer(projector, metricsService, sensitivityService, runs, thresholds, cfg.HTTP.APIToken)
	apiServer.AnnualizeDSCR = cfg.Metrics.AnnualizeDSCR

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: apiServer.Handler(),
	}

	go func() {
		log.Printf("Engine API listening on %s", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	waitForShutdown(srv)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(srv *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Printf("Received signal: %v. Shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
