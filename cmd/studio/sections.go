package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thewell/content-studio/internal/localstore"
	"github.com/thewell/content-studio/internal/schemas"
	"github.com/thewell/content-studio/internal/types"
)

func newSectionsCmd(a *app) *cobra.Command {
	var storePath string
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "Manage content sections in the local store",
		Long: `Import, list and delete the content sections that documents are assembled
from. Sections live in a local SQLite file (see --store) so documents can be
built without a database server.`,
	}
	cmd.PersistentFlags().StringVar(&storePath, "store", "", "Local section store (default: config local_store)")

	open := func() (*localstore.Store, error) {
		path := storePath
		if path == "" {
			path = a.cfg.LocalStore
		}
		return localstore.Open(path)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "Import sections from a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := readSectionFile(args[0])
			if err != nil {
				return err
			}
			// Validate everything before writing anything.
			for i := range reqs {
				if err := reqs[i].Validate(); err != nil {
					return fmt.Errorf("section %d: %w", i+1, err)
				}
				if err := schemas.ValidateContentData(reqs[i].SectionType, reqs[i].ContentData); err != nil {
					return fmt.Errorf("section %d (%s): %w", i+1, reqs[i].Title, err)
				}
			}

			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			for _, req := range reqs {
				record := &types.ContentRecord{
					SectionType:  req.SectionType,
					Title:        strings.TrimSpace(req.Title),
					Body:         types.DecodeSectionBody(req.SectionType, req.ContentData),
					DisplayOrder: req.DisplayOrder,
				}
				if err := store.SaveSection(cmd.Context(), record); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", record.ID, record.Title)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d section(s) into %s\n", len(reqs), store.Path())
			return nil
		},
	})

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored sections in display order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.ListSections(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			for _, r := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %3d  %-22s %s (updated %s)\n",
					r.ID, r.DisplayOrder, r.SectionType, r.Title, humanize.Time(r.UpdatedAt))
			}
			return nil
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "Print sections as JSON")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a stored section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid section ID %q: %w", args[0], err)
			}
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			deleted, err := store.DeleteSection(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("section %s not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted section %s\n", id)
			return nil
		},
	})
	return cmd
}

// readSectionFile reads a list of sections. YAML files are converted to JSON
// so content_data reaches the schema validator unchanged.
func readSectionFile(path string) ([]types.CreateSectionRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sections file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc []map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse sections YAML: %w", err)
		}
		if data, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("failed to convert sections YAML: %w", err)
		}
	}

	var reqs []types.CreateSectionRequest
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, fmt.Errorf("failed to parse sections JSON: %w", err)
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%s contains no sections", path)
	}
	return reqs, nil
}
