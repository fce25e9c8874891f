package main

import (
	"github.com/spf13/cobra"

	"github.com/njchilds90/gowick"
	"github.com/njchilds90/gowick/internal/mcpserver"
	"github.com/njchilds90/gowick/internal/metrics"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the gowick tools over MCP stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := metrics.New()
		opts := append(cfg.EngineOptions(), gowick.WithLogger(logger), gowick.WithObserver(m))
		return mcpserver.New(gowick.NewSession(opts...), logger, m).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
