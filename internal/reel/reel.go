// Package reel assembles the portrait slideshow video: one encoder
// session, every enabled image held for a whole number of frames.
package reel

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/photoreel/internal/config"
	"github.com/ivlev/photoreel/internal/frame"
	"github.com/ivlev/photoreel/internal/logger"
	"github.com/ivlev/photoreel/internal/source"
	"github.com/ivlev/photoreel/internal/timeline"
	"github.com/ivlev/photoreel/internal/video"
)

var log = logger.Log

var (
	ErrSessionOpen  = errors.New("cannot open encoder session")
	ErrBackpressure = errors.New("encoder stayed busy")
	ErrWrite        = errors.New("encoder rejected frame")
	ErrFinalize     = errors.New("encoder finalization failed")
)

// State is the assembler lifecycle.
type State int

const (
	Idle State = iota
	SessionOpen
	Writing
	Finalizing
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SessionOpen:
		return "session-open"
	case Writing:
		return "writing"
	case Finalizing:
		return "finalizing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Defaults for the readiness wait.
const (
	DefaultPollInterval = 2 * time.Millisecond
	DefaultReadyTimeout = 30 * time.Second
)

// Result describes a completed reel.
type Result struct {
	Path     string
	Images   int
	Skipped  int
	Frames   int64
	Duration time.Duration
}

// Assembler drives one encoder session per Assemble call.
type Assembler struct {
	Opener  video.Opener
	Decoder source.Decoder

	PollInterval time.Duration
	ReadyTimeout time.Duration
	// OnState observes transitions; it may be nil.
	OnState func(State)

	state State
}

// New builds an assembler with the default wait settings.
func New(opener video.Opener, dec source.Decoder) *Assembler {
	return &Assembler{
		Opener:       opener,
		Decoder:      dec,
		PollInterval: DefaultPollInterval,
		ReadyTimeout: DefaultReadyTimeout,
	}
}

// State returns the state reached by the last Assemble call.
func (a *Assembler) State() State {
	return a.state
}

func (a *Assembler) transition(s State) {
	a.state = s
	log.Debugf("[*] reel: %s", s)
	if a.OnState != nil {
		a.OnState(s)
	}
}

// OutputPath is the deterministic reel location inside an export root.
func (a *Assembler) OutputPath(root string) string {
	return filepath.Join(root, config.KindReel.Dir()+"."+a.Opener.Ext())
}

// Assemble renders images (already ordered and enabled) into one video
// at path. Images that cannot be decoded or that leave nothing to draw
// are skipped. Cancelling ctx stops between frames; the session is still
// finalized and the partial file removed. Any other write failure aborts
// the session.
func (a *Assembler) Assemble(ctx context.Context, images []source.Image, ec config.ExportConfig, rc config.ReelConfig, path string) (*Result, error) {
	a.state = Idle
	if rc.FPS <= 0 {
		a.transition(Failed)
		return nil, fmt.Errorf("%w: fps must be > 0", ErrSessionOpen)
	}

	perImage := rc.FramesPerImage()
	sess, err := a.Opener.Open(ctx, video.Settings{
		Path:             path,
		Width:            ec.Width,
		Height:           ec.Height,
		FPS:              rc.FPS,
		Bitrate:          rc.Bitrate,
		Codec:            rc.Codec,
		KeyframeInterval: rc.FPS,
	})
	if err != nil {
		a.transition(Failed)
		os.Remove(path)
		return nil, fmt.Errorf("%w: %v", ErrSessionOpen, err)
	}
	a.transition(SessionOpen)

	res := &Result{Path: path}
	cursor := timeline.NewCursor(rc.FPS)
	a.transition(Writing)
	writeErr := a.writeAll(ctx, sess, images, ec, perImage, cursor, res)

	a.transition(Finalizing)
	var finishErr error
	if writeErr != nil && !errors.Is(writeErr, ctx.Err()) {
		// Stalled or failing encoders are torn down, not drained.
		if err := sess.Abort(); err != nil {
			log.Debugf("[!] reel: abort: %v", err)
		}
	} else {
		finishErr = sess.Finish()
	}

	res.Frames = cursor.Frames()
	res.Duration = cursor.Elapsed()

	switch {
	case writeErr != nil:
		a.transition(Failed)
		os.Remove(path)
		return nil, writeErr
	case finishErr != nil:
		a.transition(Failed)
		os.Remove(path)
		return nil, fmt.Errorf("%w: %v", ErrFinalize, finishErr)
	case res.Images == 0:
		a.transition(Failed)
		os.Remove(path)
		return nil, fmt.Errorf("%w: no image could be rendered", ErrFinalize)
	}
	a.transition(Completed)
	return res, nil
}

func (a *Assembler) writeAll(ctx context.Context, sess video.Session, images []source.Image, ec config.ExportConfig, perImage int, cursor *timeline.Cursor, res *Result) error {
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return err
		}

		src, err := a.Decoder.Decode(img.Path)
		if err != nil {
			log.Warnf("[!] reel: skipping %s: %v", filepath.Base(img.Path), err)
			res.Skipped++
			continue
		}
		buf, err := a.synthesize(src, img, ec, sess.PixelFormat())
		if err != nil {
			log.Warnf("[!] reel: skipping %s: %v", filepath.Base(img.Path), err)
			res.Skipped++
			continue
		}

		err = a.hold(ctx, sess, buf, perImage, cursor)
		buf.Release()
		if err != nil {
			return err
		}
		res.Images++
		log.Debugf("[>] reel: %d/%d %s", i+1, len(images), filepath.Base(img.Path))
	}
	return nil
}

func (a *Assembler) synthesize(src image.Image, img source.Image, ec config.ExportConfig, format frame.Format) (*frame.Buffer, error) {
	return frame.Synthesize(src, img.Offset(), ec, format)
}

// hold pushes buf perImage times, waiting for the session each time.
func (a *Assembler) hold(ctx context.Context, sess video.Session, buf *frame.Buffer, perImage int, cursor *timeline.Cursor) error {
	for n := 0; n < perImage; n++ {
		if err := a.waitReady(ctx, sess); err != nil {
			return err
		}
		pts := cursor.Now()
		if err := sess.Append(buf, pts); err != nil {
			return fmt.Errorf("%w at %.3fs: %v", ErrWrite, pts.Seconds(), err)
		}
		cursor.Advance(1)
	}
	return nil
}

// waitReady polls with a short sleep until the session accepts data.
func (a *Assembler) waitReady(ctx context.Context, sess video.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sess.Ready() {
		return nil
	}
	poll := a.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	timeout := a.ReadyTimeout
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w for %v", ErrBackpressure, timeout)
		case <-ticker.C:
			if sess.Ready() {
				return nil
			}
		}
	}
}
