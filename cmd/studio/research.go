package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thewell/content-studio/internal/db"
	"github.com/thewell/content-studio/internal/llm"
	"github.com/thewell/content-studio/internal/research"
)

func newResearchCmd(a *app) *cobra.Command {
	var (
		urls      []string
		feeds     []string
		search    bool
		summarize bool
		asJSON    bool
		save      bool
	)
	cmd := &cobra.Command{
		Use:   "research QUERY",
		Short: "Gather industry material for a topic",
		Long: `Fetch pages and scan industry feeds for items matching a query, then optionally
condense the findings into talking points with the LLM (--summarize).

Feeds default to the config file's feeds. --search adds Google Custom Search
results when GOOGLE_SEARCH_API_KEY and GOOGLE_SEARCH_CX are set. --save stores
the run in the database at DATABASE_URL.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			query := strings.Join(args, " ")
			if !cmd.Flags().Changed("feed") {
				feeds = a.cfg.Feeds
			}

			var client llm.Client
			if summarize {
				if a.cfg.APIKey == "" {
					return fmt.Errorf("--summarize requires GEMINI_API_KEY")
				}
				var err error
				if client, err = llm.NewClient(ctx, nil, a.cfg.APIKey); err != nil {
					return fmt.Errorf("failed to create LLM client: %w", err)
				}
				defer client.Close()
			}

			var database *db.DB
			if save {
				if a.cfg.DatabaseURL == "" {
					return fmt.Errorf("--save requires DATABASE_URL")
				}
				var err error
				if database, err = db.Connect(ctx, a.cfg.DatabaseURL); err != nil {
					return err
				}
				defer database.Close()
			}

			researcher, err := a.researcher(ctx, client)
			if err != nil {
				return err
			}
			result, runErr := researcher.Run(ctx, research.Request{
				Query:     query,
				URLs:      urls,
				Feeds:     feeds,
				Search:    search,
				Summarize: summarize,
			})

			if database != nil {
				run := research.ToRun(query, result, runErr, nil, time.Now())
				if err := database.SaveResearchRun(ctx, run); err != nil {
					return err
				}
				a.logger.Info("saved research run", zap.String("id", run.ID.String()), zap.String("status", run.Status))
			}
			if runErr != nil {
				return runErr
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			a.printer.PrintResearch(result)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&urls, "url", "u", nil, "Pages to fetch (repeatable)")
	cmd.Flags().StringSliceVar(&feeds, "feed", nil, "RSS/Atom feeds to scan (default: config feeds)")
	cmd.Flags().BoolVar(&search, "search", false, "Add web search results")
	cmd.Flags().BoolVar(&summarize, "summarize", false, "Summarize findings into talking points")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "Store the run in the database")
	return cmd
}
