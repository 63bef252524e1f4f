package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/thewell/content-studio/internal/brand"
	"github.com/thewell/content-studio/internal/config"
	"github.com/thewell/content-studio/internal/observability"
)

const defaultLocalStore = ".studio/sections.db"

// app carries what every command shares once flags are parsed.
type app struct {
	configPath string
	verbose    bool

	cfg     config.Config
	brand   brand.Config
	logger  *zap.Logger
	printer *observability.Printer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "studio",
		Short: "Content Studio for The Well",
		Long: `Content Studio turns authored sections into brand-consistent social posts, charts,
print pages, slide decks and PDFs, and serves the same operations over a REST API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a JSON config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newOptimizeCmd(a),
		newScanCmd(a),
		newChartCmd(a),
		newSectionsCmd(a),
		newAssembleCmd(a),
		newResearchCmd(a),
		newDraftCmd(a),
	)
	return root
}

// init loads configuration, the brand and the logger. Config file values win;
// the environment and built-in defaults fill the gaps.
func (a *app) init(out, errOut io.Writer) error {
	cfg := &config.Config{}
	if a.configPath != "" {
		loaded, err := config.LoadConfig(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	merged := cfg.MergeWithDefaults(config.Config{
		LocalStore:  defaultLocalStore,
		OutputDir:   ".",
		Format:      "print",
		Port:        8080,
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	})
	if err := merged.Validate(); err != nil {
		return err
	}
	a.cfg = merged

	b, err := brand.Load(merged.BrandFile)
	if err != nil {
		return err
	}
	a.brand = b

	logCfg := zap.NewProductionConfig()
	if a.verbose || merged.Verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := logCfg.Build(zap.ErrorOutput(zapcore.AddSync(errOut)))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger.With(zap.String("firm", b.FirmName))
	a.printer = observability.NewPrinter(out, b)
	return nil
}

// readContent takes copy from --in, then the arguments, then stdin.
func readContent(cmd *cobra.Command, args []string, path string) (string, error) {
	var text string
	switch {
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		text = string(data)
	case len(args) > 0:
		text = strings.Join(args, " ")
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no content given (pass text, --in or stdin)")
	}
	return text, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
