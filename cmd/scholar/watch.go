package main

import (
	"fmt"

	"github.com/hyperjump/scholar/internal/cli"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Ingest the data directory now and again whenever it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := a.newEmbedder()
			if err != nil {
				return err
			}
			defer e.Close()

			report, err := a.newIndexer(e, true).Ingest(ctx, a.cfg.DataDir)
			if err != nil {
				return err
			}
			if err := cli.WriteIngestReport(cmd.OutOrStdout(), report, cli.OutputText); err != nil {
				return err
			}

			w := newIngestWatcher(a, e, nil)
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", a.cfg.DataDir)
			<-ctx.Done()
			return nil
		},
	}
	return cmd
}
