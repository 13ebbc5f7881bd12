package main

import (
	"fmt"
	"strings"

	"github.com/hyperjump/scholar/internal/cli"
	"github.com/hyperjump/scholar/internal/llm"
	"github.com/hyperjump/scholar/internal/models"
	"github.com/spf13/cobra"
)

func newAskCmd(a *app) *cobra.Command {
	var (
		topK   int
		format string
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the indexed papers",
		Long: `Retrieve the chunks most relevant to the question and pass them to the
configured language model (GROQ_API_KEY must be set for the default provider).`,
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

			chat, err := llm.New(&a.cfg.LLM)
			if err != nil {
				return fmt.Errorf("failed to initialize language model: %w", err)
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

			resp, err := llm.NewAsker(ret, chat, llm.WithLogger(a.logger)).Ask(cmd.Context(), query.Query, k)
			if err != nil {
				return err
			}
			return cli.WriteAskResponse(cmd.OutOrStdout(), resp, f)
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of chunks given to the model (default from config)")
	cmd.Flags().StringVarP(&format, "output", "o", "text", "output format: text or json")
	return cmd
}
