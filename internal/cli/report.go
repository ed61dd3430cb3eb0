package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fatali-fataliyev/mood_ledger/internal/analytics"
	"github.com/fatali-fataliyev/mood_ledger/internal/budget"
	"github.com/fatali-fataliyev/mood_ledger/internal/config"
	"github.com/fatali-fataliyev/mood_ledger/internal/ledger"
)

func newReportCmd(cfg *config.Config) *cobra.Command {
	var monthFlag string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the month summary, budget usage and trend warning",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()

			month := a.tracker.CurrentMonth()
			if monthFlag != "" {
				if month, err = ledger.ParseMonthKey(monthFlag); err != nil {
					return fmt.Errorf("invalid --month: %w", err)
				}
			}

			report, err := a.tracker.MonthReport(cmd.Context(), month)
			if err != nil {
				return err
			}
			warning, err := a.tracker.Trend(cmd.Context())
			if err != nil {
				return err
			}
			writeReport(cmd.OutOrStdout(), report, warning)
			return nil
		},
	}
	cmd.Flags().StringVar(&monthFlag, "month", "", "month to report as YYYY-MM (default current month)")
	return cmd
}

func money(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

func writeReport(w io.Writer, report budget.MonthReport, warning analytics.TrendWarning) {
	s := report.Summary
	fmt.Fprintf(w, "Month: %s\n", s.Month)
	fmt.Fprintf(w, "Total: %s across %s\n", money(s.Total), pluralRecords(s.RecordCount))
	if s.TopCategory != "" {
		fmt.Fprintf(w, "Top category: %s\n", s.TopCategory)
	}
	fmt.Fprintf(w, "Mood: %s. %s\n", s.DominantMood, s.MoodSummary)

	fmt.Fprintln(w, "Budget:")
	for _, b := range report.Budget {
		flag := ""
		if b.OverBudget {
			flag = "  OVER"
		}
		fmt.Fprintf(w, "  %-14s %12s / %-12s %3d%%%s\n", b.Category, money(b.Used), money(b.Ceiling), b.PercentUsed, flag)
	}

	if msg := warning.Message(); msg != "" {
		fmt.Fprintf(w, "Warning: %s\n", msg)
	}
}

func pluralRecords(n int) string {
	if n == 1 {
		return "1 record"
	}
	return humanize.Comma(int64(n)) + " records"
}
