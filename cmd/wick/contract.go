package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gowick"
	"github.com/njchilds90/gowick/internal/derivation"
)

var (
	derivationPath string
	outputFormat   string
	watchFile      bool
	watchDebounce  time.Duration
)

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Contract a derivation file and print its equations",
	Long: `contract reads a derivation file, contracts its expression and prints
the result followed by the residual equations grouped by rank key.
With --watch the file is re-run every time it is saved.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		run := func() error { return runDerivation(ctx, cmd.OutOrStdout(), derivationPath, outputFormat) }
		if !watchFile {
			return run()
		}
		if err := run(); err != nil {
			logger.Error("derivation failed", "file", derivationPath, "error", err)
		}
		return watch(ctx, derivationPath, watchDebounce, func() {
			if err := run(); err != nil {
				logger.Error("derivation failed", "file", derivationPath, "error", err)
			}
		})
	},
}

var spacesCmd = &cobra.Command{
	Use:   "spaces",
	Short: "Print the orbital spaces a derivation declares",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := derivation.Load(derivationPath)
		if err != nil {
			return err
		}
		c := gowick.NewSpaceContext()
		if err := d.Declare(c); err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), c.String())
		return nil
	},
}

func runDerivation(ctx context.Context, out io.Writer, path, format string) error {
	d, err := derivation.Load(path)
	if err != nil {
		return err
	}
	start := time.Now()
	res, err := derivation.Run(ctx, d, append(cfg.EngineOptions(), gowick.WithLogger(logger))...)
	if err != nil {
		return err
	}
	text, err := res.Render(format)
	if err != nil {
		return err
	}
	logger.Info("derivation done",
		"file", path,
		"terms", res.Expression.Len(),
		"equations", len(res.Equations),
		"contractions", res.Stats.Elementary+res.Stats.Composite,
		"elapsed", time.Since(start))
	_, err = io.WriteString(out, text)
	return err
}

func init() {
	for _, c := range []*cobra.Command{contractCmd, spacesCmd} {
		c.Flags().StringVarP(&derivationPath, "file", "f", "", "derivation file (YAML)")
		_ = c.MarkFlagRequired("file")
	}
	contractCmd.Flags().StringVar(&outputFormat, "format", "text", "output format: text, latex or json")
	contractCmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "re-run when the file changes")
	contractCmd.Flags().DurationVar(&watchDebounce, "debounce", 200*time.Millisecond, "quiet period before a re-run")
	rootCmd.AddCommand(contractCmd, spacesCmd)
}
