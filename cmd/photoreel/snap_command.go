package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/photoreel/internal/config"
	"github.com/ivlev/photoreel/internal/timeline"
)

func newSnapCommand() *cobra.Command {
	var (
		fps     int
		seconds float64
		images  int
	)

	cmd := &cobra.Command{
		Use:   "snap",
		Short: "Show the whole-frame duration a reel setting renders to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fps <= 0 {
				return fmt.Errorf("fps must be > 0, got %d", fps)
			}
			snapped := timeline.ClampSecondsPerImage(seconds, fps)
			frames := timeline.FramesPerImage(snapped, fps)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%.3fs per image = %d frames @ %d fps\n", snapped, frames, fps)
			if images > 0 {
				total := timeline.Time{Frame: int64(frames) * int64(images), FPS: fps}
				fmt.Fprintf(out, "%d images = %d frames, %.3fs\n", images, total.Frame, total.Seconds())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "Reel frame rate")
	cmd.Flags().Float64Var(&seconds, "seconds", config.DefaultSecondsPerImage, "Requested seconds per image")
	cmd.Flags().IntVarP(&images, "images", "n", 0, "Number of images, to print the reel length")
	return cmd
}
