package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/hasbyte1/go-live-collections/collections"
	"github.com/hasbyte1/go-live-collections/internal/script"
)

func newMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <script.yaml>",
		Short: "Replay a script and print the register metrics in Prometheus text format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScript(args[0])
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			r, err := script.NewRunner(s, collections.NewMetrics(reg))
			if err != nil {
				return err
			}
			defer r.Close()
			if _, err := r.Run(); err != nil {
				return err
			}

			families, err := reg.Gather()
			if err != nil {
				return fmt.Errorf("gather metrics: %w", err)
			}
			for _, mf := range families {
				if _, err := expfmt.MetricFamilyToText(cmd.OutOrStdout(), mf); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
