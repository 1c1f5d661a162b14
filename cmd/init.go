package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ragdesk/ragdesk/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize ragdesk configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure ragdesk and generates a .ragdesk.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
