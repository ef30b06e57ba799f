// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gemaraproj/variants-mcp/internal/config"
	"github.com/gemaraproj/variants-mcp/internal/logger"
)

// Version is set at build time with -ldflags.
var Version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCmd creates the root command for variants-mcp.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "variants-mcp",
		Short:         "Normalize raw model responses into identified content items",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newNormalizeCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// load resolves the config file and flag overrides, then builds the logger.
func (o *rootOptions) load() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
		if err := cfg.Validate(); err != nil {
			return config.Config{}, nil, err
		}
	}
	if cfg.Server.Version == "dev" {
		cfg.Server.Version = Version
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("variants-mcp %s\n", Version)
		},
	}
}
