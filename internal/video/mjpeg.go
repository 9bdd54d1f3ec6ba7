package video

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"os"

	"github.com/icza/mjpeg"

	"github.com/ivlev/photoreel/internal/frame"
	"github.com/ivlev/photoreel/internal/timeline"
)

// mjpegQuality is the fixed JPEG quality of every AVI frame.
const mjpegQuality = 90

// MJPEGOpener writes Motion JPEG AVI files without external tools.
type MJPEGOpener struct{}

func (o *MJPEGOpener) Ext() string  { return "avi" }
func (o *MJPEGOpener) Name() string { return "mjpeg" }

func (o *MJPEGOpener) Open(ctx context.Context, s Settings) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Width <= 0 || s.Height <= 0 || s.FPS <= 0 {
		return nil, fmt.Errorf("invalid track %dx%d@%d", s.Width, s.Height, s.FPS)
	}
	w, err := mjpeg.New(s.Path, int32(s.Width), int32(s.Height), int32(s.FPS))
	if err != nil {
		return nil, fmt.Errorf("create avi: %w", err)
	}
	return &mjpegSession{w: w, path: s.Path, fps: s.FPS}, nil
}

// mjpegSession encodes synchronously, so it is always ready. A held
// image is JPEG-encoded once and the bytes reused for its repeats.
type mjpegSession struct {
	w    mjpeg.AviWriter
	path string
	fps  int
	next int64

	last     *frame.Buffer
	lastJPEG []byte
	finished bool
}

func (s *mjpegSession) PixelFormat() frame.Format { return frame.RGBA }

func (s *mjpegSession) Ready() bool { return !s.finished }

func (s *mjpegSession) Append(buf *frame.Buffer, pts timeline.Time) error {
	if s.finished {
		return ErrFinished
	}
	if pts.FPS != s.fps || pts.Frame != s.next {
		return fmt.Errorf("%w: got frame %d@%d, want %d@%d", ErrOutOfOrder, pts.Frame, pts.FPS, s.next, s.fps)
	}

	if buf != s.last {
		img := buf.Image()
		if img == nil {
			return fmt.Errorf("%w: %q", frame.ErrUnsupportedFormat, buf.Format)
		}
		var out bytes.Buffer
		if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: mjpegQuality}); err != nil {
			return fmt.Errorf("encode frame %d: %w", pts.Frame, err)
		}
		s.last, s.lastJPEG = buf, out.Bytes()
	}

	if err := s.w.AddFrame(s.lastJPEG); err != nil {
		return fmt.Errorf("add frame %d: %w", pts.Frame, err)
	}
	s.next++
	return nil
}

func (s *mjpegSession) Abort() error {
	if s.finished {
		return nil
	}
	s.finished = true
	s.last, s.lastJPEG = nil, nil
	return s.w.Close()
}

func (s *mjpegSession) Finish() error {
	if s.finished {
		return ErrFinished
	}
	s.finished = true
	s.last, s.lastJPEG = nil, nil
	if err := s.w.Close(); err != nil {
		return fmt.Errorf("close avi: %w", err)
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("output not created: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("output file is empty")
	}
	return nil
}
