package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recoilapp/recoil"
	"github.com/recoilapp/recoil/pkg/errors"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Rebuild the store collection from the full feed",
	Long: `Reload emits a create for every feed row, bypassing identity matching.
It is meant for populating an empty collection; running it against a
populated store duplicates every record.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		yes, _ := cmd.Flags().GetBool("yes")

		if !dryRun && !yes {
			if !confirm(cmd, "This creates a record for EVERY feed row. Continue? [y/N] ") {
				return errors.New("reload aborted")
			}
		}

		client, err := buildClient()
		if err != nil {
			return err
		}
		res, err := client.Reload(cmd.Context(), recoil.WithDryRun(dryRun))
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	},
}

// confirm prompts on stdout and reads a single line from stdin.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	reloadCmd.Flags().Bool("dry-run", false, "compute mutations without transmitting them")
	reloadCmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	rootCmd.AddCommand(reloadCmd)
}
