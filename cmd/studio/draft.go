package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thewell/content-studio/internal/copywriting"
	"github.com/thewell/content-studio/internal/llm"
	"github.com/thewell/content-studio/internal/optimizer"
)

func newDraftCmd(a *app) *cobra.Command {
	var (
		req      copywriting.DraftRequest
		platform string
		kind     string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "draft TOPIC",
		Short: "Write platform-ready copy with the LLM",
		Long: `Draft copy about a topic for one platform. Drafts that trip the compliance rules
get one rewrite; the result is optimized for the platform and printed with any
remaining findings. Requires GEMINI_API_KEY.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.APIKey == "" {
				return fmt.Errorf("GEMINI_API_KEY environment variable is required")
			}
			client, err := llm.NewClient(cmd.Context(), nil, a.cfg.APIKey)
			if err != nil {
				return fmt.Errorf("failed to create LLM client: %w", err)
			}
			defer client.Close()

			writer, err := copywriting.New(client, a.brand, a.logger.Named("copywriting"))
			if err != nil {
				return err
			}

			req.Topic = strings.Join(args, " ")
			req.Platform = optimizer.PlatformID(platform)
			req.ContentType = optimizer.ContentType(kind)
			draft, err := writer.DraftCopy(cmd.Context(), req)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), draft)
			}
			a.printer.PrintDraft(draft)
			return nil
		},
	}
	cmd.Flags().StringVarP(&platform, "platform", "p", string(optimizer.LinkedIn), "Target platform")
	cmd.Flags().StringVar(&req.Audience, "audience", "", "Audience description (default: "+copywriting.DefaultAudience+")")
	cmd.Flags().StringVar(&req.Tone, "tone", "", "Tone of voice (default: "+copywriting.DefaultTone+")")
	cmd.Flags().StringVarP(&kind, "type", "t", string(optimizer.ContentPost), "Content type: post or article")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the draft as JSON")
	return cmd
}
