package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jinhak-lab/admitscan/internal/estimator"
)

var estimateUniversity string

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Recompute cut100 estimates over all persisted records",
	Long:  "Runs the threshold estimator as a separate pass: loads every stored record, computes per-university average competition, and writes a cut100 estimate for each record with both observed cuts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		res, err := estimator.NewRunner(st, estimator.FromConfig(cfg.Estimator)).Run(ctx, estimateUniversity)
		if err != nil {
			return err
		}

		fmt.Printf("scanned %d records: %d updated, %d skipped\n", res.Scanned, res.Updated, res.Skipped)
		return nil
	},
}

func init() {
	estimateCmd.Flags().StringVar(&estimateUniversity, "university", "", "only estimate universities whose name contains this substring")
	rootCmd.AddCommand(estimateCmd)
}
