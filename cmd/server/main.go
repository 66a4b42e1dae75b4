package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/csg33k/workreports/internal/adapters/ledger"
	"github.com/csg33k/workreports/internal/adapters/pdf"
	sqliteadapter "github.com/csg33k/workreports/internal/adapters/sqlite"
	"github.com/csg33k/workreports/internal/config"
	"github.com/csg33k/workreports/internal/form"
	"github.com/csg33k/workreports/internal/handlers"
	"github.com/csg33k/workreports/internal/session"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("error loading .env file", "err", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := sqliteadapter.New(ctx, cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	reports := ledger.New(repo, ledger.Policy{Cutoff: cfg.OnTimeCutoff, Location: cfg.Location})
	sessions := session.New(func() *form.State {
		return form.New(reports, cfg.DefaultInputs)
	})
	go sessions.SweepEvery(ctx, time.Minute, cfg.SessionIdle)
	h := handlers.New(sessions, pdf.Exporter{})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}

	log.Printf("Reports running on http://localhost:%s", cfg.Port)
	log.Printf("Database: %s", cfg.DBPath)
	err = serve(ctx, srv, ln, 5*time.Second)
	if cerr := repo.Close(); cerr != nil {
		slog.Error("close database", "err", cerr)
	}
	if err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// serve runs srv on ln until ctx is cancelled, then waits for in-flight
// requests to finish (up to drain) before returning.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, drain time.Duration) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if serr := <-errc; err == nil && !errors.Is(serr, http.ErrServerClosed) {
		err = serr
	}
	return err
}
