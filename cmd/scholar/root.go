package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hyperjump/scholar/internal/config"
	"github.com/hyperjump/scholar/internal/embedding"
	"github.com/hyperjump/scholar/internal/errs"
	"github.com/hyperjump/scholar/internal/indexer"
	"github.com/hyperjump/scholar/internal/search"
	"github.com/hyperjump/scholar/internal/server"
	"github.com/hyperjump/scholar/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	defaultConfigPath = "config.yaml"
	defaultEnvPath    = ".env"
)

// app carries the flags shared by every command and what they resolve to.
type app struct {
	configPath string
	envPath    string
	debug      bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "scholar",
		Short: "Hybrid semantic and keyword retrieval over research papers",
		Long: `scholar indexes a directory of PDF research papers and answers questions
from them. Ingestion builds a dense vector index and a BM25 keyword index from
the same chunks; queries consult both and merge the results.

Run 'scholar ingest' once, then 'scholar search' or 'scholar ask'.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath, "config file path (missing file = defaults)")
	cmd.PersistentFlags().StringVar(&a.envPath, "env", defaultEnvPath, "dotenv file with API keys")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(newIngestCmd(a))
	cmd.AddCommand(newSearchCmd(a))
	cmd.AddCommand(newAskCmd(a))
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newWatchCmd(a))
	cmd.AddCommand(newStatusCmd(a))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// setup loads the environment file and config and builds the logger. It runs
// before every command except version.
func (a *app) setup(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(a.envPath); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.debug {
		cfg.Debug = true
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) newEmbedder() (embedding.Embedder, error) {
	e, err := embedding.New(&a.cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return e, nil
}

func (a *app) newIndexer(e embedding.Embedder, rebuild bool) *indexer.Indexer {
	opts := []indexer.IndexerOption{indexer.WithLogger(a.logger)}
	if rebuild {
		opts = append(opts, indexer.WithRebuild())
	}
	return indexer.NewIndexer(a.cfg, e, opts...)
}

func (a *app) openRetriever(ctx context.Context, e embedding.Embedder) (*search.Retriever, error) {
	return search.Open(ctx, a.cfg, e, search.WithLogger(a.logger))
}

// liveRetriever owns the retriever of a long-running process. It starts empty
// when nothing has been ingested and is opened or reloaded after each ingestion.
type liveRetriever struct {
	app      *app
	embedder embedding.Embedder

	mu  sync.Mutex
	ret *search.Retriever
}

func newLiveRetriever(ctx context.Context, a *app, e embedding.Embedder) (*liveRetriever, error) {
	l := &liveRetriever{app: a, embedder: e}
	ret, err := a.openRetriever(ctx, e)
	switch {
	case err == nil:
		l.ret = ret
	case errors.Is(err, errs.ErrIndexNotFound):
		a.logger.Warn("no index yet; queries fail until ingestion runs", zap.Error(err))
	default:
		return nil, err
	}
	return l, nil
}

// current returns the retriever, or a nil interface when none is open.
func (l *liveRetriever) current() server.Retriever {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ret == nil {
		return nil
	}
	return l.ret
}

func (l *liveRetriever) reload(ctx context.Context) (server.Retriever, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ret != nil {
		if err := l.ret.Reload(ctx); err != nil {
			return nil, fmt.Errorf("failed to reload indexes: %w", err)
		}
		return l.ret, nil
	}
	ret, err := l.app.openRetriever(ctx, l.embedder)
	if err != nil {
		return nil, err
	}
	l.ret = ret
	return ret, nil
}

func (l *liveRetriever) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ret == nil {
		return nil
	}
	return l.ret.Close()
}
