// Command toastmasterd serves Toastmaster rounds over HTTP.
// Rounds are persisted to Postgres or SQLite so they survive restarts.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/toastmaster/toastmaster/internal/api"
	"github.com/toastmaster/toastmaster/internal/chef"
	"github.com/toastmaster/toastmaster/internal/platform"
	"github.com/toastmaster/toastmaster/internal/session"
	"github.com/toastmaster/toastmaster/pkg/config"
)

type daemonConfig struct {
	Port        string
	Dialect     string
	DatabaseURL string
	APIKey      string
	ConfigPath  string
	S3Endpoint  string
	CacheSize   int
}

func loadDaemonConfig() daemonConfig {
	return daemonConfig{
		Port:        envOrDefault("PORT", "8080"),
		Dialect:     envOrDefault("DB_DIALECT", string(platform.DialectSQLite)),
		DatabaseURL: envOrDefault("DATABASE_URL", filepath.Join(config.CacheDir(), "rounds.db")),
		APIKey:      os.Getenv("API_KEY"),
		ConfigPath:  os.Getenv("TOASTMASTER_CONFIG"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		CacheSize:   session.CacheSizeFromEnv(),
	}
}

func main() {
	// A missing .env is normal in production.
	_ = godotenv.Load()
	cfg := loadDaemonConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settings := config.DefaultConfig()
	if cfg.ConfigPath != "" {
		var err error
		if settings, err = config.Load(cfg.ConfigPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	engine, err := settings.Engine()
	if err != nil {
		log.Fatalf("scoring config: %v", err)
	}

	dialect, err := platform.ParseDialect(cfg.Dialect)
	if err != nil {
		log.Fatal(err)
	}
	db, err := platform.Open(ctx, dialect, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	critic, err := chef.New(ctx, settings, chef.Options{
		APIKey:     settings.APIKeyFromEnv(),
		S3Endpoint: cfg.S3Endpoint,
		Logger:     log.New(os.Stderr, "[critique] ", log.LstdFlags),
	})
	if err != nil {
		log.Fatalf("critic: %v", err)
	}

	rounds, err := session.NewService(session.Config{
		Store:        session.NewSQLStore(db, dialect),
		CacheSize:    cfg.CacheSize,
		Stages:       settings.StageSettings(),
		Engine:       engine,
		Critic:       critic,
		ToppingStage: settings.Stages.Topping,
	})
	if err != nil {
		log.Fatalf("session service: %v", err)
	}
	defer rounds.Close()

	if cfg.APIKey == "" {
		log.Println("API_KEY not set, round endpoints are unauthenticated")
	}
	handler := api.NewHandler(rounds, cfg.APIKey, log.New(os.Stderr, "[api] ", log.LstdFlags))

	r := chi.NewRouter()
	r.Get("/readyz", readyHandler(db))
	r.Mount("/", handler.Routes())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("starting toastmasterd on :%s (%s)", cfg.Port, dialect)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func readyHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "database unreachable"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
