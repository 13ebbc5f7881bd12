package main

import (
	"github.com/hyperjump/scholar/internal/cli"
	"github.com/spf13/cobra"
)

func newIngestCmd(a *app) *cobra.Command {
	var (
		format  string
		rebuild bool
	)
	cmd := &cobra.Command{
		Use:   "ingest [dir]",
		Short: "Build the vector and keyword indexes from a directory of papers",
		Long: `Load every supported file in dir (default: data_dir from config), split it
into chunks and index them. The keyword index is always rebuilt. Vector rows are
appended to the existing store unless --rebuild is given, which replaces it
(required after changing the embedding model).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := cli.ParseFormat(format)
			if err != nil {
				return err
			}
			dir := a.cfg.DataDir
			if len(args) == 1 {
				dir = args[0]
			}
			e, err := a.newEmbedder()
			if err != nil {
				return err
			}
			defer e.Close()

			report, err := a.newIndexer(e, rebuild).Ingest(cmd.Context(), dir)
			if err != nil {
				return err
			}
			return cli.WriteIngestReport(cmd.OutOrStdout(), report, f)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "text", "output format: text or json")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "replace the vector store instead of appending to it")
	return cmd
}
