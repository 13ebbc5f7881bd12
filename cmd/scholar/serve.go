package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hyperjump/scholar/internal/embedding"
	"github.com/hyperjump/scholar/internal/llm"
	"github.com/hyperjump/scholar/internal/server"
	"github.com/hyperjump/scholar/internal/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Serve search, ask, ingest and status over HTTP. The server starts even when
nothing has been ingested; queries return 503 until an ingestion completes.
With --watch, the data directory is re-ingested whenever a paper is added,
changed or removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), a, watch)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "re-ingest when the data directory changes")
	return cmd
}

func runServe(ctx context.Context, a *app, watch bool) error {
	e, err := a.newEmbedder()
	if err != nil {
		return err
	}
	defer e.Close()

	live, err := newLiveRetriever(ctx, a, e)
	if err != nil {
		return err
	}
	defer live.Close()

	ingester := a.newIndexer(e, true)
	opts := []server.Option{server.WithIngester(ingester, live.reload)}
	if chat, err := llm.New(&a.cfg.LLM); err != nil {
		a.logger.Warn("ask endpoint disabled", zap.Error(err))
	} else {
		opts = append(opts, server.WithChatModel(chat))
	}
	srv := server.NewServer(live.current(), a.cfg, a.logger, opts...)

	if watch {
		w := newIngestWatcher(a, e, func(ctx context.Context) error {
			ret, err := live.reload(ctx)
			if err != nil {
				return err
			}
			srv.SetRetriever(ret)
			return nil
		})
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// newIngestWatcher returns a watcher over the data directory that rebuilds
// both indexes and then calls after.
func newIngestWatcher(a *app, e embedding.Embedder, after func(ctx context.Context) error) *watcher.Watcher {
	idx := a.newIndexer(e, true)
	dir := a.cfg.DataDir
	return watcher.NewWatcher(dir, func(ctx context.Context) error {
		report, err := idx.Ingest(ctx, dir)
		if err != nil {
			return err
		}
		a.logger.Info("re-ingestion complete",
			zap.Int("files", report.Files),
			zap.Int("chunks", report.Chunks),
			zap.Duration("duration", report.Duration))
		if after == nil {
			return nil
		}
		return after(ctx)
	}, watcher.WithLogger(a.logger), watcher.WithDebounce(a.cfg.Watch.Debounce))
}
