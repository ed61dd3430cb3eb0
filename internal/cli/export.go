package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fatali-fataliyev/mood_ledger/internal/config"
)

func newExportCmd(cfg *config.Config) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all records as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()

			if output == "" || output == "-" {
				return a.tracker.ExportCSV(cmd.Context(), cmd.OutOrStdout())
			}

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := a.tracker.ExportCSV(cmd.Context(), file); err != nil {
				file.Close()
				return err
			}
			return file.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
