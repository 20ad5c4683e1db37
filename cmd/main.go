// jobmate-alert-service
//
// Polls the configured job boards on a schedule, filters listings against
// the operator's search criteria, deduplicates against Redis, emails one
// digest per cycle, and — when AUTO_APPLY is on — prepares a capped number
// of application packages per day backed by an append-only history log in
// PostgreSQL.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"jobmate/alert-service/internal/config"
	"jobmate/alert-service/internal/cycle"
	"jobmate/alert-service/internal/db"
	"jobmate/alert-service/internal/enrich"
	"jobmate/alert-service/internal/gate"
	"jobmate/alert-service/internal/notify"
	"jobmate/alert-service/internal/packager"
	"jobmate/alert-service/internal/scheduler"
	"jobmate/alert-service/internal/source"
	"jobmate/alert-service/internal/store"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	_ = godotenv.Load() // best effort, env vars win

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[alert-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[alert-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[alert-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[alert-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[alert-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[alert-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[alert-service] Redis connected ✓")

	// ── Durable state ────────────────────────────────────────────────────────
	history := store.NewPostgresHistoryStore(pool)
	if err := history.EnsureSchema(ctx); err != nil {
		log.Fatalf("[alert-service] History schema: %v", err)
	}
	seen := store.NewRedisSeenStore(rdb)
	appGate := gate.New(history, cfg.MaxDailyApplications)

	// ── Collaborators ────────────────────────────────────────────────────────
	sources := []cycle.ListingSource{
		source.NewJSearchSource(cfg.JSearchAPIKey, cfg.JSearchAPIHost, cfg.RemoteOK, cfg.SourceRequestDelay),
		source.NewAdzunaSource(cfg.AdzunaAppID, cfg.AdzunaAppKey, cfg.AdzunaCountry, cfg.SourceRequestDelay),
	}
	notifier := notify.NewEmailNotifier(
		cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword,
		cfg.NotifyFrom, cfg.NotifyTo,
	)
	pkg := packager.NewFilePackager(cfg.ApplicationsDir, cfg.CoverLetterTemplate)

	var enricher cycle.Enricher
	if cfg.AnthropicAPIKey != "" {
		enricher = enrich.NewAnthropicEnricher(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.Skills)
	}

	coord := cycle.New(sources, seen, appGate, notifier, pkg, enricher, cfg.AutoApply)

	// ── Scheduler ────────────────────────────────────────────────────────────
	sched := scheduler.New(coord, cfg.Criteria(), cfg.Profile(), cfg.CheckIntervalMinutes)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[alert-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[alert-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[alert-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[alert-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[alert-service] Shutdown error: %v", err)
	}
	log.Println("[alert-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "alert-service",
		"version": version,
	})
}
