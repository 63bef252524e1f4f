package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/thewell/content-studio/internal/assembly"
	"github.com/thewell/content-studio/internal/localstore"
	"github.com/thewell/content-studio/internal/types"
)

func newAssembleCmd(a *app) *cobra.Command {
	var (
		format    string
		title     string
		outFile   string
		ids       []string
		storePath string
	)
	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Build a branded document from stored sections",
		Long: `Assemble stored sections into a print-ready HTML page (print), a PowerPoint
deck (slides) or a PDF (pdf, requires Chrome). Sections are ordered by their
display order; --ids restricts the document to specific sections.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format == "" {
				format = a.cfg.Format
			}
			f, err := assembly.ParseFormat(format)
			if err != nil {
				return err
			}
			if title == "" {
				title = a.cfg.Title
			}
			if storePath == "" {
				storePath = a.cfg.LocalStore
			}

			store, err := localstore.Open(storePath)
			if err != nil {
				return err
			}
			defer store.Close()

			var records []types.ContentRecord
			if len(ids) > 0 {
				parsed := make([]uuid.UUID, len(ids))
				for i, s := range ids {
					if parsed[i], err = uuid.Parse(s); err != nil {
						return fmt.Errorf("invalid section ID %q: %w", s, err)
					}
				}
				records, err = store.GetSections(cmd.Context(), parsed)
				if err == nil && len(records) != len(parsed) {
					err = fmt.Errorf("%d of %d sections not found in %s", len(parsed)-len(records), len(parsed), store.Path())
				}
			} else {
				records, err = store.ListSections(cmd.Context())
			}
			if err != nil {
				return err
			}

			opts := assembly.Options{Logger: a.logger.Named("assembly")}
			if f == assembly.FormatPDF {
				opts.Printer = a.chrome()
			}
			doc, err := assembly.New(a.brand, opts).Assemble(cmd.Context(), records, f, title)
			if err != nil {
				return err
			}

			path := outFile
			if path == "" {
				path = filepath.Join(a.cfg.OutputDir, doc.Filename())
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}
			if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
				return fmt.Errorf("failed to write document: %w", err)
			}
			a.printer.PrintDocument(doc, path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Document format: print, slides or pdf (default: config format)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Document title (default: config title)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file (default: <output_dir>/<title>.<ext>)")
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Section IDs to include (default: all)")
	cmd.Flags().StringVar(&storePath, "store", "", "Local section store (default: config local_store)")
	return cmd
}
