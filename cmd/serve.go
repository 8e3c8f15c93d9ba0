package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/ideaflow/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing read-only backlog tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer func() { _ = log.Sync() }()

		p, err := buildPipeline(cfg, log)
		if err != nil {
			return err
		}

		mcpserver.Version = Version
		fmt.Fprintf(os.Stderr, "ideaflow MCP server started on stdio (ideas=%s, backlog=%s, engine=%s)\n",
			cfg.IdeasFile, cfg.BacklogFile, p.engine.Name())

		srv := mcpserver.NewServer(mcpserver.Deps{
			IdeasPath:   cfg.IdeasFile,
			BacklogPath: cfg.BacklogFile,
			Vocabulary:  p.vocab,
			Engine:      p.engine,
			Embedder:    p.embedder,
			Logger:      log,
		})
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
