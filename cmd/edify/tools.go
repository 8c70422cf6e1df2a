package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/ai"
	"github.com/edify-labs/edify/internal/catalog"
	"github.com/edify-labs/edify/internal/config"
	"github.com/edify-labs/edify/internal/llm"
	"github.com/edify-labs/edify/internal/logging"
	"github.com/edify-labs/edify/internal/tools"
	"github.com/edify-labs/edify/internal/tools/toolset"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			reg := toolset.Default()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SLUG\tNAME\tSTATUS")
			for _, e := range cat.Tools {
				status := "coming soon"
				if e.Implemented && reg.Has(e.Slug) {
					status = "available"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Slug, e.Name, status)
			}
			return tw.Flush()
		},
	}
}

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <tool-slug> <input.json>",
		Short: "Run a tool once against the configured model and print the result as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug, path := args[0], args[1]

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.ValidateLLM(); err != nil {
				return err
			}
			log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			reg := toolset.Default()
			tool, ok := reg.Get(slug)
			if !ok {
				return fmt.Errorf("unknown or unavailable tool %q", slug)
			}

			body, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			in, err := tool.DecodeJSON(body)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			provider, err := llm.New(ctx, llm.ConfigFrom(cfg), log)
			if err != nil {
				return err
			}
			client := ai.NewClient(provider, ai.Options{
				Temperature:  cfg.LLM.Temperature,
				MaxTokens:    cfg.LLM.MaxTokens,
				Timeout:      cfg.LLM.Timeout,
				NativeSchema: cfg.LLM.NativeSchema,
			}, log)
			runner := tools.NewRunner(client, reg, nil, log)

			start := time.Now()
			out, err := runner.Generate(ctx, slug, in)
			if err != nil {
				return err
			}
			log.Debug("generation complete",
				zap.String("tool", slug),
				zap.Duration("duration", time.Since(start)),
				zap.Int("total_tokens", out.Usage.TotalTokens))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
