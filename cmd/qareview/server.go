package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kalambet/qareview/internal/api"
	"github.com/kalambet/qareview/internal/config"
	"github.com/kalambet/qareview/internal/console"
	"github.com/kalambet/qareview/internal/kb"
	"github.com/kalambet/qareview/internal/storage"
	"github.com/kalambet/qareview/internal/view"
)

const (
	sessionIdle   = 12 * time.Hour
	sweepInterval = 10 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the review console (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("mcp") {
			cfg.Server.MCPEnabled, _ = cmd.Flags().GetBool("mcp")
		}
		return runServer(cfg)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show console and backend status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().Bool("mcp", false, "also serve MCP over stdio")
}

func runServer(cfg config.Config) error {
	logger := setupLogging(cfg.Log.Level)
	fmt.Fprintf(os.Stderr, "qareview version %s\n", version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	loc := cfg.Console.Location()
	gw := kb.New(cfg.Backend.BaseURL, logger)
	c := console.New(gw, store, console.Options{
		Datasets: kb.Datasets{
			Unreviewed: cfg.Backend.UnreviewedDatasetID,
			Reviewed:   cfg.Backend.ReviewedDatasetID,
		},
		PageSize:           cfg.Console.PageSize,
		FlushConcurrency:   cfg.Console.FlushConcurrency,
		CountConcurrency:   cfg.Console.CountConcurrency,
		RecheckDelay:       cfg.Console.RecheckDelayDuration(),
		DuplicateThreshold: cfg.Console.DuplicateThreshold,
		Location:           loc,
	}, logger)

	renderer, err := view.New(loc)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	sessions := console.NewSessions(c.NewState)

	handler := api.NewConsoleHandler(api.ConsoleDeps{
		Console:  c,
		Sessions: sessions,
		Renderer: renderer,
		Journal:  store,
		Logger:   logger,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go sweepSessions(ctx, sessions, logger)

	if cfg.Server.MCPEnabled {
		mcpSrv := api.NewMCPServer(api.MCPDeps{
			Gateway:   gw,
			Journal:   store,
			Threshold: cfg.Console.DuplicateThreshold,
			Location:  loc,
		})
		stdioSrv := server.NewStdioServer(mcpSrv)
		go func() {
			if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("MCP stdio server error", "error", err)
			}
		}()
		slog.Info("MCP server started (stdio transport)")
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "qareview listening on http://%s (backend %s)\n", addr, cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func sweepSessions(ctx context.Context, sessions *console.Sessions, logger *slog.Logger) {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := sessions.Sweep(sessionIdle); n > 0 {
				logger.Debug("idle sessions dropped", "count", n, "live", sessions.Len())
			}
		}
	}
}

func showStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port))
	if err != nil {
		printStatus("Console", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			printStatus("Console", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Console", "error (HTTP %d)", resp.StatusCode)
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	gw := kb.New(cfg.Backend.BaseURL, slog.New(slog.DiscardHandler))
	if segs, _, err := gw.ListUnreviewed(reqCtx); err != nil {
		printStatus("Backend", "unreachable at %s (%v)", cfg.Backend.BaseURL, err)
	} else {
		printStatus("Backend", "reachable at %s", cfg.Backend.BaseURL)
		printStatus("Unreviewed", "%d", len(segs))
		if total, err := gw.TotalReviewed(reqCtx); err == nil {
			printStatus("Reviewed", "%d", total)
		}
		if today, err := gw.TodayCount(reqCtx); err == nil {
			printStatus("Today", "%d", today)
		}
	}

	if store, err := storage.Open(cfg.Storage.DataDir); err == nil {
		midnight := startOfDay(time.Now().In(cfg.Console.Location()))
		if n, err := store.CountActions("", midnight); err == nil {
			printStatus("Journal today", "%d actions", n)
		}
		store.Close()
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
