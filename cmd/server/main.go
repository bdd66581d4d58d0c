package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rpattn/finsheet/internal/auth"
	"github.com/rpattn/finsheet/internal/config"
	"github.com/rpattn/finsheet/internal/db"
	"github.com/rpattn/finsheet/internal/fieldschema"
	"github.com/rpattn/finsheet/internal/ingestion"
	"github.com/rpattn/finsheet/internal/middleware"
	"github.com/rpattn/finsheet/internal/repository"
	"github.com/rs/cors"
)

func main() {
	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	cfg, err := config.Load(os.Getenv("FINSHEET_CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Create repositories
	var (
		runRepo repository.IngestionRunRepository
		logRepo repository.IngestionLogRepository
	)
	if cfg.Database.Enabled {
		conn, err := db.NewConnection(ctx, cfg.Database.Config)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer conn.Close()

		if err := db.RunMigrations(cfg.Database.Config); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		runRepo = repository.NewIngestionRunRepository(conn.Pool)
		logRepo = repository.NewIngestionLogRepository(conn.Pool)
	} else {
		log.Println("Database disabled, keeping ingestion runs in memory")
		store := repository.NewMemoryStore()
		runRepo = store.Runs()
		logRepo = store.Logs()
	}

	engine := ingestion.NewEngine(fieldschema.Default, cfg.Ingestion.PeriodSettings())
	service := ingestion.NewService(engine, runRepo, logRepo)
	ingestionHandler := ingestion.NewHTTPHandler(service, cfg.MaxUploadBytes())

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	apiHandler := middleware.LoggingMiddleware(
		auth.HeaderMiddleware(
			middleware.DataLoaderMiddleware(runRepo)(ingestionHandler),
		),
	)

	mux := http.NewServeMux()
	mux.Handle("/ingestions", corsHandler.Handler(apiHandler))
	mux.Handle("/ingestions/", corsHandler.Handler(apiHandler))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	// Create HTTP server
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting ingestion server on %s", addr)
		log.Printf("Upload endpoint available at http://localhost%s/ingestions", addr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
