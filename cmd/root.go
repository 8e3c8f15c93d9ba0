package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ideaflow/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ideaflow",
	Short: "Turn raw ideas into backlog user stories, skipping duplicates",
	Long: `ideaflow reads an ideas document and a user story backlog, checks every
idea that still needs refinement against existing stories and ideas, marks
duplicates, and drafts formal user stories for the rest with an LLM.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.FileName, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
