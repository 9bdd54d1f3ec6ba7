package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ivlev/photoreel/internal/config"
	"github.com/ivlev/photoreel/internal/engine"
)

func newExportCommand(opts *options, use, short string, steps ...config.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd.Flags(), steps)
			if err != nil {
				return err
			}

			project, err := engine.NewProject(cfg)
			if err != nil {
				return err
			}

			bar := newProgressBar(len(steps), use)
			if bar != nil {
				project.OnProgress = func(fraction float64, step engine.StepResult) {
					_ = bar.Set(int(fraction*float64(len(steps)) + 0.5))
				}
			}

			report, err := project.Run(cmd.Context())
			if bar != nil {
				_ = bar.Finish()
				fmt.Fprintln(os.Stderr)
			}
			if report != nil {
				out := cmd.OutOrStdout()
				for _, s := range report.Steps {
					if s.Err == nil {
						fmt.Fprintf(out, "[+] %s: %d file(s)\n", s.Kind, len(s.Paths))
					}
				}
			}
			return err
		},
	}
	bindExportFlags(cmd.Flags(), opts)
	return cmd
}

// newProgressBar returns nil when stderr is not a terminal, so piped and
// CI output stays plain log lines.
func newProgressBar(steps int, desc string) *progressbar.ProgressBar {
	fd := os.Stderr.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return nil
	}
	return progressbar.NewOptions(steps,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("[>] "+desc),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
