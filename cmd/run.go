package cmd

import (
	"fmt"

	"github.com/bucu0368/Webhook-Create/webhookcreate"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [flags]",
	Short: "Starts the bot, the admin API and (optionally) the webhook server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		bot, err := webhookcreate.New(cfg)
		if err != nil {
			return fmt.Errorf("error creating bot: %w", err)
		}
		if err = bot.Run(cmd.Context()); err != nil {
			return fmt.Errorf("error running bot: %w", err)
		}
		return nil
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(runCmd)
}
