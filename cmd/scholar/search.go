package main

import (
	"strings"

	"github.com/hyperjump/scholar/internal/cli"
	"github.com/hyperjump/scholar/internal/models"
	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		topK   int
		format string
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Retrieve the chunks most relevant to a query",
		Long: `Search both indexes and print the merged, deduplicated chunks.
The query is all remaining arguments joined by spaces.

Examples:
  scholar search self-attention
  scholar search "positional encoding" --top-k 10
  scholar search BM25 --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := cli.ParseFormat(format)
			if err != nil {
				return err
			}
			query := &models.SearchQuery{Query: strings.TrimSpace(strings.Join(args, " "))}
			if cmd.Flags().Changed("top-k") {
				query.TopK = &topK
			}
			k, err := query.Validate(a.cfg.Search.DefaultTopK, a.cfg.Search.MaxTopK)
			if err != nil {
				return err
			}

			e, err := a.newEmbedder()
			if err != nil {
				return err
			}
			defer e.Close()
			ret, err := a.openRetriever(cmd.Context(), e)
			if err != nil {
				return err
			}
			defer ret.Close()

			res, err := ret.Search(cmd.Context(), query.Query, k)
			if err != nil {
				return err
			}
			return cli.WriteSearchResults(cmd.OutOrStdout(), cli.SearchOutput{
				RetrievalResult: res,
				Suggestion:      ret.Suggest(query.Query),
			}, f)
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of chunks to return (default from config)")
	cmd.Flags().StringVarP(&format, "output", "o", "text", "output format: text or json")
	return cmd
}
