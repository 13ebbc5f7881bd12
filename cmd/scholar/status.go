package main

import (
	"github.com/hyperjump/scholar/internal/cli"
	"github.com/hyperjump/scholar/internal/search"
	"github.com/hyperjump/scholar/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newStatusCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the data directory and index files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := cli.ParseFormat(format)
			if err != nil {
				return err
			}
			st, err := storage.Inspect(a.cfg)
			if err != nil {
				return err
			}
			out := cli.StatusOutput{Status: st}
			if st.Ingested() {
				out.Index = a.indexStats(cmd)
			}
			return cli.WriteStatus(cmd.OutOrStdout(), out, f)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "text", "output format: text or json")
	return cmd
}

// indexStats opens both indexes to count their entries. Failures are logged
// and leave the counts out of the report.
func (a *app) indexStats(cmd *cobra.Command) *search.Stats {
	e, err := a.newEmbedder()
	if err != nil {
		a.logger.Warn("status: embedder unavailable", zap.Error(err))
		return nil
	}
	defer e.Close()
	ret, err := a.openRetriever(cmd.Context(), e)
	if err != nil {
		a.logger.Warn("status: indexes could not be opened", zap.Error(err))
		return nil
	}
	defer ret.Close()
	stats, err := ret.Stats(cmd.Context())
	if err != nil {
		a.logger.Warn("status: counting entries failed", zap.Error(err))
		return nil
	}
	return &stats
}
