package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ivlev/photoreel/internal/config"
)

func newConfigCommand(opts *options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(opts))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		targetPath string
		overwrite  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !overwrite {
				if _, err := os.Stat(targetPath); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", targetPath)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}
			if err := config.Write(config.Default(), targetPath); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", targetPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "photoreel.yaml", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing file")
	return cmd
}

func newConfigShowCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "output:     %s\n", cfg.OutputDir)
			fmt.Fprintf(out, "border:     %d (stills x%d, reel x%d)\n", cfg.Border, config.StillBorderMultiplier, config.ReelBorderMultiplier)
			fmt.Fprintf(out, "zoom:       %s\n", cfg.ZoomMode)
			fmt.Fprintf(out, "background: %s\n", cfg.Background)
			rc := cfg.ReelConfig()
			fmt.Fprintf(out, "reel:       %dx%d @ %d fps, %.3fs/image (%d frames), %s\n",
				cfg.Reel.Width, cfg.Reel.Height, rc.FPS, rc.SecondsPerImage, rc.FramesPerImage(), rc.Codec)
			return nil
		},
	}
}
