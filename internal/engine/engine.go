// Package engine runs one export: it lays out the export root and drives
// the still and reel steps as independent units.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/photoreel/internal/config"
	"github.com/ivlev/photoreel/internal/focus"
	"github.com/ivlev/photoreel/internal/logger"
	"github.com/ivlev/photoreel/internal/reel"
	"github.com/ivlev/photoreel/internal/source"
	"github.com/ivlev/photoreel/internal/still"
	"github.com/ivlev/photoreel/internal/system"
	"github.com/ivlev/photoreel/internal/video"
)

var log = logger.Log

// StepResult is the outcome of one requested deliverable.
type StepResult struct {
	Kind    config.Kind
	Paths   []string
	Reel    *reel.Result
	Err     error
	Elapsed time.Duration
}

// Progress is called once per finished step with the fraction of
// requested steps that are done.
type Progress func(fraction float64, step StepResult)

// Project bundles the inputs of one export run.
type Project struct {
	Config  config.Config
	Images  []source.Image
	Decoder source.Decoder
	Opener  video.Opener

	FFmpegPath   string
	OnProgress   Progress
	BenchmarkLog string
	// ReadyTimeout overrides the reel assembler default when non-zero.
	ReadyTimeout time.Duration
}

// NewProject loads the images named by cfg (manifest first, then folder
// scan) and picks the video encoder.
func NewProject(cfg config.Config) (*Project, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var images []source.Image
	if cfg.ManifestPath != "" {
		m, err := source.ReadManifest(cfg.ManifestPath)
		if err != nil {
			return nil, err
		}
		images = m.Images
	} else {
		var err error
		images, err = source.Scan(cfg.InputPath)
		if err != nil {
			return nil, err
		}
	}

	ffmpeg := system.FindFFmpeg(cfg.Reel.FFmpegPath)
	if cfg.HasStep(config.KindReel) && ffmpeg == "" && cfg.Reel.Codec != "mjpeg" {
		log.Warnf("[!] ffmpeg not found, the reel falls back to Motion JPEG")
	}

	return &Project{
		Config:       cfg,
		Images:       images,
		Decoder:      source.FileDecoder{DPI: cfg.DPI},
		Opener:       video.NewOpener(cfg.ReelConfig().Codec, ffmpeg),
		FFmpegPath:   ffmpeg,
		BenchmarkLog: "benchmark.log",
	}, nil
}

// Run produces every requested step. A failing step never stops the
// others; the returned error joins the hard failures only.
func (p *Project) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	if err := os.MkdirAll(p.Config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create export root: %w", err)
	}

	images := source.Ordered(p.Images)
	if len(images) == 0 {
		return nil, fmt.Errorf("no enabled images")
	}
	if p.Config.AutoPan {
		images = p.autoPan(images)
	}

	log.Infof("[*] Export: %d images -> %s", len(images), p.Config.OutputDir)

	steps := p.steps()
	results := make([]StepResult, len(steps))
	var (
		mu   sync.Mutex
		done int
	)

	var g errgroup.Group
	for i, kind := range steps {
		g.Go(func() error {
			res := p.runStep(ctx, kind, images)
			results[i] = res

			mu.Lock()
			done++
			fraction := float64(done) / float64(len(steps))
			if p.OnProgress != nil {
				p.OnProgress(fraction, res)
			}
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	report := &Report{
		Build:  p.Config.BuildVersion,
		Input:  p.inputName(),
		Images: len(images),
		Steps:  results,
		Total:  time.Since(start),
		Memory: system.Memory(),
	}
	if p.Config.HasStep(config.KindReel) {
		report.Encoder = p.Opener.Name()
		report.FrameBytes = system.CanvasBytes(p.Config.Reel.Width, p.Config.Reel.Height)
	}
	p.measureReel(report)

	if p.Config.ShowStats {
		report.Print(os.Stdout)
		if p.BenchmarkLog != "" {
			if err := report.Append(p.BenchmarkLog); err != nil {
				log.Warnf("[!] cannot write %s: %v", p.BenchmarkLog, err)
			}
		}
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Kind, r.Err))
		}
	}
	return report, errors.Join(errs...)
}

func (p *Project) steps() []config.Kind {
	var out []config.Kind
	for _, k := range []config.Kind{config.KindSquare, config.KindPortrait, config.KindReel} {
		if p.Config.HasStep(k) {
			out = append(out, k)
		}
	}
	return out
}

func (p *Project) runStep(ctx context.Context, kind config.Kind, images []source.Image) StepResult {
	start := time.Now()
	res := StepResult{Kind: kind}

	switch kind {
	case config.KindReel:
		a := reel.New(p.Opener, p.Decoder)
		if p.ReadyTimeout > 0 {
			a.ReadyTimeout = p.ReadyTimeout
		}
		path := a.OutputPath(p.Config.OutputDir)
		r, err := a.Assemble(ctx, images, p.Config.Export(kind), p.Config.ReelConfig(), path)
		res.Reel, res.Err = r, err
		if err == nil {
			res.Paths = []string{r.Path}
			log.Infof("[+] Reel: %s (%d frames, %.2fs)", r.Path, r.Frames, r.Duration.Seconds())
		}
	default:
		dir := filepath.Join(p.Config.OutputDir, kind.Dir())
		paths, err := still.ExportBatch(ctx, images, p.Config.Export(kind), p.Decoder, dir)
		res.Paths, res.Err = paths, err
		if err == nil {
			log.Infof("[+] %s: %d/%d images -> %s", kind.Dir(), len(paths), len(images), dir)
		}
	}

	res.Elapsed = time.Since(start)
	if res.Err != nil {
		log.Errorf("[!] %s failed: %v", kind, res.Err)
	}
	return res
}

// autoPan fills in a suggested offset for every image the user left
// centred. Images that cannot be decoded are left for the steps to skip.
func (p *Project) autoPan(images []source.Image) []source.Image {
	w, h := config.KindPortrait.CanvasSize()
	aspect := float64(w) / float64(h)
	det := focus.NewDetector()

	out := make([]source.Image, len(images))
	copy(out, images)
	for i := range out {
		if out[i].HasOffset() {
			continue
		}
		src, err := p.Decoder.Decode(out[i].Path)
		if err != nil {
			continue
		}
		if off, ok := det.Suggest(src, aspect); ok {
			out[i].OffsetX, out[i].OffsetY = off.X, off.Y
			log.Debugf("[*] auto-pan %s: (%.2f, %.2f)", filepath.Base(out[i].Path), off.X, off.Y)
		}
	}
	return out
}

func (p *Project) inputName() string {
	if p.Config.ManifestPath != "" {
		return filepath.Base(p.Config.ManifestPath)
	}
	return filepath.Base(p.Config.InputPath)
}

// measureReel reads back the produced reel size and, when ffprobe is
// available, its container duration.
func (p *Project) measureReel(r *Report) {
	for _, s := range r.Steps {
		if s.Reel == nil {
			continue
		}
		if fi, err := os.Stat(s.Reel.Path); err == nil {
			r.ReelBytes = uint64(fi.Size())
		}
		r.ReelDuration = s.Reel.Duration
		if p.FFmpegPath != "" && p.Opener.Ext() == "mp4" {
			if d, err := system.ProbeDuration(p.FFmpegPath, s.Reel.Path); err == nil {
				r.ProbedDuration = d
			}
		}
	}
}
