package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fatali-fataliyev/mood_ledger/internal/config"
	"github.com/fatali-fataliyev/mood_ledger/internal/contextutil"
)

func newResetCmd(cfg *config.Config) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all records and budgets, then restore the sample records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("reset deletes all data, pass --yes to confirm")
			}
			a, err := openApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.tracker.ResetData(contextutil.WithTraceID(cmd.Context(), "")); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Data reset, sample records restored.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm deleting all data")
	return cmd
}
