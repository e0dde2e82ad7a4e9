package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/storage"
)

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print question counts by category and by month",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			url := a.cfg.QueryLogURL
			if url == "" {
				url = a.cfg.DatabaseURL
			}
			ql, err := storage.OpenQueryLog(ctx, url)
			if err != nil {
				return err
			}
			defer ql.Close()

			cats, err := ql.CategoryCounts(ctx)
			if err != nil {
				return err
			}
			months, err := ql.MonthlyCounts(ctx)
			if err != nil {
				return err
			}
			totals, err := ql.MonthlyTotals(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tCOUNT")
			for _, c := range cats {
				fmt.Fprintf(tw, "%s\t%d\n", c.Category, c.Count)
			}
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "MONTH\tCATEGORY\tCOUNT")
			for _, m := range months {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", m.YearMonth, m.Category, m.Count)
			}
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "MONTH\tTOTAL")
			for _, m := range totals {
				fmt.Fprintf(tw, "%s\t%d\n", m.YearMonth, m.Count)
			}
			return tw.Flush()
		},
	}
}
