package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ivlev/photoreel/internal/focus"
	"github.com/ivlev/photoreel/internal/source"
)

func newManifestCommand() *cobra.Command {
	var (
		target  string
		autoPan bool
	)

	cmd := &cobra.Command{
		Use:   "manifest <folder>",
		Short: "Seed a manifest from a folder scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			images, err := source.Scan(args[0])
			if err != nil {
				return err
			}
			if target == "" {
				target = filepath.Join(args[0], "manifest.yaml")
			}

			out := cmd.OutOrStdout()
			dec := source.FileDecoder{}
			det := focus.NewDetector()
			for i := range images {
				size, err := source.NaturalSize(images[i].Path)
				if err != nil {
					fmt.Fprintf(out, "[!] %s: %v\n", filepath.Base(images[i].Path), err)
					images[i].Enabled = false
					continue
				}
				if autoPan {
					if src, err := dec.Decode(images[i].Path); err == nil {
						if off, ok := det.Suggest(src, 1080.0/1350.0); ok {
							images[i].OffsetX, images[i].OffsetY = off.X, off.Y
						}
					}
				}
				fmt.Fprintf(out, "%3d  %-32s %5dx%-5d (%.2f, %.2f)\n", i+1, filepath.Base(images[i].Path), size.X, size.Y, images[i].OffsetX, images[i].OffsetY)
			}

			if err := source.WriteManifest(&source.Manifest{Version: "1", Images: images}, target); err != nil {
				return fmt.Errorf("write manifest: %w", err)
			}
			fmt.Fprintf(out, "[+] Wrote %d images to %s\n", len(images), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "path", "p", "", "Destination (default <folder>/manifest.yaml)")
	cmd.Flags().BoolVar(&autoPan, "auto-pan", false, "Store suggested offsets")
	return cmd
}
