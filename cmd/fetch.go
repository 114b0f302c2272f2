package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/jinhak-lab/admitscan/internal/llmparse"
	"github.com/jinhak-lab/admitscan/internal/pipeline"
	"github.com/jinhak-lab/admitscan/internal/store"
	"github.com/jinhak-lab/admitscan/pkg/adiga"
	"github.com/jinhak-lab/admitscan/pkg/anthropic"
)

var (
	fetchDryRun      bool
	fetchUniversity  string
	fetchDelaySecs   int
	fetchForceLLM    bool
	fetchInteractive bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and extract admission records for the configured universities",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if len(cfg.Universities) == 0 {
			return eris.New("no universities configured")
		}

		fetcher, err := adiga.NewClient(adiga.Config{
			Endpoint:   cfg.Source.Endpoint,
			CSRFToken:  cfg.Source.CSRFToken,
			Cookie:     cfg.Source.Cookie,
			CycleParam: cfg.Source.CycleParam,
			TrackParam: cfg.Source.TrackParam,
			Timeout:    cfg.Source.Timeout(),
		})
		if err != nil {
			return err
		}

		var llm pipeline.LLMParser
		if cfg.Anthropic.Key != "" {
			llm = llmparse.NewExtractor(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic)
		}

		var st store.Store
		if !fetchDryRun {
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return err
			}
		}

		summary, runErr := pipeline.New(cfg, fetcher, llm, st).Run(ctx, pipeline.Options{
			DryRun:      fetchDryRun,
			Filter:      fetchUniversity,
			Delay:       time.Duration(fetchDelaySecs) * time.Second,
			ForceLLM:    fetchForceLLM,
			Interactive: fetchInteractive,
		})

		// The summary renders even when the run died mid-way.
		if summary != nil {
			summary.Render(os.Stdout)
		}
		return runErr
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchDryRun, "dry-run", false, "parse only, do not persist")
	fetchCmd.Flags().StringVar(&fetchUniversity, "university", "", "only universities whose name contains this substring")
	fetchCmd.Flags().IntVar(&fetchDelaySecs, "delay", 0, "override the inter-request delay in seconds")
	fetchCmd.Flags().BoolVar(&fetchForceLLM, "llm", false, "skip the rule parser, extract with the LLM only")
	fetchCmd.Flags().BoolVar(&fetchInteractive, "interactive", false, "review each university's records before saving")
	rootCmd.AddCommand(fetchCmd)
}
