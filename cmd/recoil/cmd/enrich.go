package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/recoilapp/recoil"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fill missing fields on store records from the feed",
	Long: `Enrich matches store records against the feed and fills any fields
they lack, geocoding addresses gained along the way. Fields the store
already holds are never overwritten.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := buildClient()
		if err != nil {
			return err
		}

		days, _ := cmd.Flags().GetInt("days")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		report, _ := cmd.Flags().GetString("report")

		res, err := client.Enrich(cmd.Context(),
			recoil.WithPassWindow(time.Duration(days)*24*time.Hour),
			recoil.WithDryRun(dryRun),
		)
		if err != nil {
			return err
		}
		if report != "" {
			if err := res.SaveReport(reportPath(report, res)); err != nil {
				return err
			}
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	enrichCmd.Flags().Int("days", 30, "store snapshot lookback window in days")
	enrichCmd.Flags().Bool("dry-run", false, "compute mutations without transmitting them")
	enrichCmd.Flags().String("report", "", "write a YAML pass report to this path")
	rootCmd.AddCommand(enrichCmd)
}
