package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/hasbyte1/go-live-collections/internal/script"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// config is read from the environment; flags override it.
type config struct {
	LogVerbosity int    `env:"LIVECOLL_LOG_VERBOSITY" envDefault:"0"`
	Output       string `env:"LIVECOLL_OUTPUT" envDefault:"text"`
}

func parseEnv() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	var cfg config

	root := &cobra.Command{
		Use:          "livecoll",
		Short:        "Replay list mutation scripts against live collection registers",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			fromEnv, err := parseEnv()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("output") {
				cfg.Output = fromEnv.Output
			}
			if cfg.Output != outputText && cfg.Output != outputJSON {
				return fmt.Errorf("unknown output format %q", cfg.Output)
			}
			// glog reads its settings from the standard flag set
			_ = flag.Set("logtostderr", "true")
			if !cmd.Flags().Changed("v") {
				_ = flag.Set("v", strconv.Itoa(fromEnv.LogVerbosity))
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&cfg.Output, "output", "o", outputText, "output format: text or json")
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	root.AddCommand(newReplayCmd(&cfg), newMetricsCmd())
	return root
}

func loadScript(path string) (*script.Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := script.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
