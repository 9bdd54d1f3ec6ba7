package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ivlev/photoreel/internal/config"
	"github.com/ivlev/photoreel/internal/logger"
)

// options are the flags shared by every export command. Only flags the
// user set override the config file.
type options struct {
	configPath string
	verbose    bool

	input      string
	manifest   string
	output     string
	border     int
	zoom       string
	background string
	autoPan    bool
	stats      bool
	fps        int
	seconds    float64
	codec      string
	ffmpeg     string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "photoreel",
		Short:         "Export photo sets as square and 4:5 stills and a 9:16 reel",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetVerbose(opts.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(newExportCommand(opts, "export", "Write square stills, 4:5 stills and the reel", config.KindSquare, config.KindPortrait, config.KindReel))
	rootCmd.AddCommand(newExportCommand(opts, "square", "Write the 1080x1080 stills", config.KindSquare))
	rootCmd.AddCommand(newExportCommand(opts, "portrait", "Write the 1080x1350 stills", config.KindPortrait))
	rootCmd.AddCommand(newExportCommand(opts, "reel", "Write the 9:16 reel video", config.KindReel))
	rootCmd.AddCommand(newSnapCommand())
	rootCmd.AddCommand(newManifestCommand())
	rootCmd.AddCommand(newConfigCommand(opts))

	return rootCmd
}

func bindExportFlags(fs *pflag.FlagSet, opts *options) {
	def := config.Default()
	fs.StringVarP(&opts.input, "input", "i", "", "Folder of images or a single image/PDF")
	fs.StringVarP(&opts.manifest, "manifest", "m", "", "YAML manifest with order, enabled flags and offsets")
	fs.StringVarP(&opts.output, "output", "o", def.OutputDir, "Export root folder")
	fs.IntVar(&opts.border, "border", def.Border, "Border width before the per-output multiplier")
	fs.StringVar(&opts.zoom, "zoom", def.ZoomMode, "Zoom mode: fit, fill")
	fs.StringVar(&opts.background, "background", def.Background, "Border colour (#RRGGBB)")
	fs.BoolVar(&opts.autoPan, "auto-pan", false, "Suggest offsets for centred images")
	fs.BoolVar(&opts.stats, "stats", false, "Print a performance report and append to benchmark.log")
	fs.IntVar(&opts.fps, "fps", def.Reel.FPS, "Reel frame rate")
	fs.Float64Var(&opts.seconds, "seconds", def.Reel.SecondsPerImage, "Seconds each image is held in the reel")
	fs.StringVar(&opts.codec, "codec", def.Reel.Codec, "Reel codec: h264, hevc, mjpeg")
	fs.StringVar(&opts.ffmpeg, "ffmpeg", "", "Path to the ffmpeg binary")
}

// resolve loads the config file and applies the flags the user set.
func (o *options) resolve(fs *pflag.FlagSet, steps []config.Kind) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}

	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("input", func() { cfg.InputPath = o.input })
	set("manifest", func() { cfg.ManifestPath = o.manifest })
	set("output", func() { cfg.OutputDir = o.output })
	set("border", func() { cfg.Border = o.border })
	set("zoom", func() { cfg.ZoomMode = o.zoom })
	set("background", func() { cfg.Background = o.background })
	set("auto-pan", func() { cfg.AutoPan = o.autoPan })
	set("stats", func() { cfg.ShowStats = o.stats })
	set("fps", func() { cfg.Reel.FPS = o.fps })
	set("seconds", func() { cfg.Reel.SecondsPerImage = o.seconds })
	set("codec", func() { cfg.Reel.Codec = o.codec })
	set("ffmpeg", func() { cfg.Reel.FFmpegPath = o.ffmpeg })

	cfg.Steps = steps
	cfg.BuildVersion = version
	return cfg, cfg.Validate()
}
