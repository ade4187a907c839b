package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zeusync/tiltbox/internal/config"
	"github.com/zeusync/tiltbox/internal/injector"
)

var (
	flagConfig   string
	flagFrames   int
	flagSource   string
	flagTrace    string
	flagLogLevel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tiltbox",
		Short: "Tilt a plate of dice with a device's orientation sensors",
		Long: `tiltbox drives a small rigid-body plate from device orientation and
acceleration readings. Large pose jumps are split into bounded sub-steps so
the simulation stays stable.

Readings come from a synthetic wobble generator or a recorded YAML trace.`,
		SilenceUsage: true,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation",
		RunE:  run,
	}
	runCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "YAML config file (defaults are used when empty)")
	runCmd.Flags().IntVar(&flagFrames, "frames", -1, "Stop after this many frames, 0 runs until interrupted")
	runCmd.Flags().StringVar(&flagSource, "source", "", "Sensor source: synthetic, replay or none")
	runCmd.Flags().StringVar(&flagTrace, "trace", "", "YAML trace file for the replay source")
	runCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
	configCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "YAML config file (defaults are used when empty)")

	rootCmd.AddCommand(runCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if flagConfig == "" {
		return config.Default(), nil
	}
	return config.Load(flagConfig)
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagFrames >= 0 {
		cfg.MaxFrames = flagFrames
	}
	if flagSource != "" {
		cfg.Sensor.Source = flagSource
	}
	if flagTrace != "" {
		cfg.Sensor.TracePath = flagTrace
		if flagSource == "" {
			cfg.Sensor.Source = config.SourceReplay
		}
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if err = cfg.Validate(); err != nil {
		return err
	}

	a, cleanup, err := injector.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("build simulation: %w", err)
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stopCh)
	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return a.Run(ctx)
}
