package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ragdesk",
	Short: "AI customer support assistant with retrieval-augmented answers",
	Long: `Ragdesk ingests your support documents into a semantic vector store and
answers customer questions grounded in them. It classifies each message's
intent, hands off to human agents, opens helpdesk tickets, and registers
sales leads through the configured CRM.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".ragdesk.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
