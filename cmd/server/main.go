/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the prayer-debt engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse flags
  2. Initialize SQLite store
  3. Resolve the reference time zone (stored record wins over flag)
  4. Build ledger, handler, router
  5. Start the day-transition scheduler
  6. Start server with graceful shutdown

CONFIGURATION:
  Flags, with environment fallbacks (via .env when present):
    -port / QADA_PORT  HTTP server port (default: 8080)
    -db   / QADA_DB    SQLite database path (default: qada.db,
                       ":memory:" for in-memory)
    -tz   / QADA_TZ    IANA time zone used until a debt record with a
                       user-assigned zone exists (default: UTC)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop the scheduler, stop accepting connections, wait
  for active requests (30s timeout), close the database, exit.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/miqat/qada-engine/api"
	"github.com/miqat/qada-engine/ledger"
	"github.com/miqat/qada-engine/qada"
	"github.com/miqat/qada-engine/store/sqlite"
)

func main() {
	// .env is optional; flags take precedence over environment.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	port := flag.Int("port", envInt("QADA_PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("QADA_DB", "qada.db"), "SQLite database path")
	tzName := flag.String("tz", envStr("QADA_TZ", "UTC"), "fallback IANA time zone")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// The user-assigned zone on the stored record is authoritative; the
	// flag only covers the time before the first calculation.
	loc, err := time.LoadLocation(*tzName)
	if err != nil {
		log.Fatalf("Invalid time zone %q: %v", *tzName, err)
	}
	if debt, err := store.LoadDebt(context.Background()); err == nil && debt != nil {
		if userLoc, err := qada.ResolveLocation(debt.PersonalData.Timezone); err == nil {
			loc = userLoc
		}
	}
	log.Printf("Reference time zone: %s", loc)

	// Wire the core
	led := ledger.New(store, loc)
	handler := api.NewHandler(store, led)
	router := api.NewRouter(handler)

	// Day-transition scheduler
	scheduler := api.NewDayTransitionScheduler(led)
	scheduler.Start()
	defer scheduler.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
