package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ideaflow/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize ideaflow configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose providers, document paths, language and duplicate threshold, and writes a .ideaflow.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
