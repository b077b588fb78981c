package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/recoilapp/recoil"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a reconciliation pass against the record store",
	Long: `Sync fetches the feed and a windowed store snapshot, partitions the
feed into new and existing records, and transmits the resulting create and
update mutations. With --notify, new records also trigger a push
notification to subscribers. Be careful with that one.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := buildClient()
		if err != nil {
			return err
		}

		days, _ := cmd.Flags().GetInt("days")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		report, _ := cmd.Flags().GetString("report")

		opts := []recoil.SyncOption{
			recoil.WithPassWindow(time.Duration(days) * 24 * time.Hour),
			recoil.WithDryRun(dryRun),
		}
		if cmd.Flags().Changed("notify") {
			notify, _ := cmd.Flags().GetBool("notify")
			opts = append(opts, recoil.WithNotify(notify))
		}

		res, err := client.Sync(cmd.Context(), opts...)
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
	syncCmd.Flags().Int("days", 30, "store snapshot lookback window in days")
	syncCmd.Flags().Bool("notify", false, "send a push notification when new records land")
	syncCmd.Flags().Bool("dry-run", false, "compute mutations without transmitting them")
	syncCmd.Flags().Bool("strict-identity", false, "require populated fields for identity matches")
	syncCmd.Flags().String("report", "", "write a YAML pass report to this path")

	_ = viper.BindPFlag("sync.days", syncCmd.Flags().Lookup("days"))
	_ = viper.BindPFlag("sync.strict_identity", syncCmd.Flags().Lookup("strict-identity"))

	rootCmd.AddCommand(syncCmd)
}
