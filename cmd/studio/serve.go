package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thewell/content-studio/internal/assembly"
	"github.com/thewell/content-studio/internal/chat"
	"github.com/thewell/content-studio/internal/config"
	"github.com/thewell/content-studio/internal/db"
	"github.com/thewell/content-studio/internal/llm"
	"github.com/thewell/content-studio/internal/printing"
	"github.com/thewell/content-studio/internal/research"
	"github.com/thewell/content-studio/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		port    int
		migrate bool
		pdf     bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start an HTTP server that exposes the optimizer, charts, document assembly,
copywriting, chat and research over REST.

DATABASE_URL and JWT_SECRET are required. GEMINI_API_KEY enables the LLM
endpoints; GOOGLE_SEARCH_API_KEY and GOOGLE_SEARCH_CX enable research search.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL environment variable is required")
			}
			if !cmd.Flags().Changed("port") {
				port = a.cfg.Port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			database, err := db.Connect(ctx, a.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer database.Close()
			if migrate {
				if err := database.Migrate(ctx); err != nil {
					return err
				}
			}

			jwtCfg, err := config.NewJWTConfig()
			if err != nil {
				return err
			}
			codeCfg, err := config.NewLoginCodeConfig()
			if err != nil {
				return err
			}

			var client llm.Client
			if a.cfg.APIKey != "" {
				client, err = llm.NewClient(ctx, nil, a.cfg.APIKey)
				if err != nil {
					return fmt.Errorf("failed to create LLM client: %w", err)
				}
				defer client.Close()
			} else {
				a.logger.Warn("GEMINI_API_KEY not set; copy, design and chat endpoints are disabled")
			}

			researcher, err := a.researcher(ctx, client)
			if err != nil {
				return err
			}

			deps := server.Deps{
				Store:      database,
				Brand:      &a.brand,
				JWT:        jwtCfg,
				LoginCodes: codeCfg,
				LLM:        client,
				Sessions:   chat.NewMemoryStore(a.cfg.ChatHistory),
				Researcher: researcher,
				Logger:     a.logger.Named("server"),
			}
			if pdf || a.cfg.ChromePath != "" {
				deps.Printer = a.chrome()
			}

			srv, err := server.New(server.Config{Port: port}, deps)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}
			defer srv.Close()

			a.logger.Info("starting server", zap.Int("port", port), zap.Bool("pdf", deps.Printer != nil), zap.Bool("llm", client != nil))
			return srv.Start(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply database migrations before serving")
	cmd.Flags().BoolVar(&pdf, "pdf", false, "Enable PDF documents through headless Chrome")
	return cmd
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL environment variable is required")
			}
			database, err := db.Connect(cmd.Context(), a.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date")
			return nil
		},
	}
}

// chrome returns a headless Chrome printer for the configured binary.
func (a *app) chrome() *printing.Chrome {
	return printing.NewChrome(a.brand, printing.Options{ExecPath: a.cfg.ChromePath}, a.logger.Named("printing"))
}

// researcher builds a Researcher from config. Search is enabled when the
// Google Custom Search credentials are present.
func (a *app) researcher(ctx context.Context, client llm.Client) (*research.Researcher, error) {
	opts := research.Options{
		Concurrency:    a.cfg.FetchConcurrency,
		UseBrowser:     a.cfg.UseBrowser,
		ExcludeDomains: []string{a.brand.Domain},
		LLM:            client,
		Logger:         a.logger.Named("research"),
	}
	key, cx := os.Getenv("GOOGLE_SEARCH_API_KEY"), os.Getenv("GOOGLE_SEARCH_CX")
	if key != "" && cx != "" {
		searcher, err := research.NewGoogleSearcher(ctx, key, cx)
		if err != nil {
			return nil, err
		}
		opts.Searcher = searcher
	}
	return research.New(opts), nil
}

var _ assembly.Printer = (*printing.Chrome)(nil)
