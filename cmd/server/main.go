package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/invoice-cli/internal/config"
	"github.com/diewo77/invoice-cli/internal/db"
	"github.com/diewo77/invoice-cli/internal/handlers"
	"github.com/joho/godotenv"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Open (and migrate) the database and exit")
	importFlag      = flag.String("import", "", "Import entities from a JSON file and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()

	ctx := context.Background()
	store, err := db.Open(ctx, cfg.Database.Path, db.Options{Debug: cfg.Database.Debug})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()
	log.Printf("Using database %s", store.Path())

	if *migrateOnlyFlag {
		m := store.Migration()
		log.Printf("Schema at version %d (was %d, %d step(s) applied)", m.To, m.From, m.Applied)
		return
	}

	if *importFlag != "" {
		if err := importFile(ctx, store, *importFlag); err != nil {
			store.Close()
			log.Fatalf("Import failed: %v", err)
		}
		return
	}

	read, write, idle := cfg.Server.Timeouts()
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      withLogging(NewApp(store, cfg, handlers.SMTPDialer)),
		ReadTimeout:  read,
		WriteTimeout: write,
		IdleTimeout:  idle,
	}

	go func() {
		log.Printf("Server starting on port %s (dev=%v)", cfg.Server.Port, cfg.App.Dev)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// importFile loads a bulk import document from disk.
func importFile(ctx context.Context, store *db.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	res, err := store.Import(ctx, f)
	if err != nil {
		return err
	}
	for table, ids := range res {
		log.Printf("Imported %d row(s) into %s", len(ids), table)
	}
	log.Printf("Import completed: %d row(s)", res.Count())
	return nil
}

// withLogging adds request logging middleware.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
