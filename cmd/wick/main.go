// Command wick runs derivation files through the Wick engine and serves the
// gowick tools over MCP stdio.
//
// Usage:
//
//	wick contract -f ccsd.yaml --format latex
//	wick contract -f ccsd.yaml --watch
//	wick mcp
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/njchilds90/gowick"
	"github.com/njchilds90/gowick/internal/config"
	"github.com/njchilds90/gowick/internal/logging"
)

var (
	cfgPath string
	verbose bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wick",
	Short: "Derive many-body equations with Wick's theorem",
	Long: `wick contracts products of second-quantized operators and groups the
result into residual equations. Derivations are YAML files that declare
orbital spaces, named operators and the expression to contract.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return err
		}
		level, _ := logging.ParseLevel(cfg.Log.Level)
		if verbose {
			level = logging.LevelDebug
		}
		logger = logging.New(logging.Config{Level: level, JSON: cfg.Log.JSON, Service: "wick", Output: os.Stderr})
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gowick version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "wick", gowick.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
