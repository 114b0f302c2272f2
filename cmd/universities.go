package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jinhak-lab/admitscan/internal/store"
)

var universitiesCmd = &cobra.Command{
	Use:   "universities",
	Short: "List configured universities and their persisted records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		summaries, err := st.ListUniversities(ctx)
		if err != nil {
			return err
		}
		byName := make(map[string]store.UniversitySummary, len(summaries))
		for _, u := range summaries {
			byName[u.Name] = u
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"University", "Code", "Records", "Years"})
		for _, u := range cfg.Universities {
			records, years := 0, "-"
			if s, ok := byName[u.Name]; ok {
				records = s.Records
				years = fmt.Sprintf("%d", s.MinYear)
				if s.MaxYear != s.MinYear {
					years = fmt.Sprintf("%d-%d", s.MinYear, s.MaxYear)
				}
			}
			t.AppendRow(table.Row{u.Name, u.Code, records, years})
		}
		// Stored universities dropped from the config still show up.
		for _, s := range summaries {
			if !configured(s.Name) {
				years := fmt.Sprintf("%d", s.MinYear)
				if s.MaxYear != s.MinYear {
					years = fmt.Sprintf("%d-%d", s.MinYear, s.MaxYear)
				}
				t.AppendRow(table.Row{s.Name, "-", s.Records, years})
			}
		}
		t.Render()
		return nil
	},
}

func configured(name string) bool {
	for _, u := range cfg.Universities {
		if u.Name == name {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(universitiesCmd)
}
