package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lualens/lualens/internal/config"
	"github.com/lualens/lualens/internal/logutil"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lualens",
	Short: "lualens - Call graph profiler for Lua scripts",
	Long: `lualens instruments every function reachable from a Lua state's
globals and records wall-clock timings for each call.

It answers "where does the time go?" with per-function call counts,
min/max/total durations, and caller-to-callee edge timings, and can
persist sessions for later inspection over an HTTP API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logutil.ConfigureLogger(verbose)

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./lualens.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func GetConfig() *config.Config {
	return cfg
}
