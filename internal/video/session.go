// Package video holds the encoder sessions the reel assembler drives: an
// ffmpeg rawvideo pipe for H.264/HEVC and a pure-Go Motion JPEG writer.
package video

import (
	"context"
	"errors"

	"github.com/ivlev/photoreel/internal/frame"
	"github.com/ivlev/photoreel/internal/timeline"
)

var (
	// ErrNotReady is returned by Append when the session queue is full.
	ErrNotReady = errors.New("encoder not ready for more data")
	// ErrOutOfOrder is returned when a frame timestamp is not the next one.
	ErrOutOfOrder = errors.New("frame timestamp out of order")
	// ErrFinished is returned by Append after Finish.
	ErrFinished = errors.New("session already finished")
)

// Settings configures the single video track of a session.
type Settings struct {
	Path             string
	Width, Height    int
	FPS              int
	Bitrate          int
	Codec            string
	KeyframeInterval int
}

// Session is one open output container with one video track.
type Session interface {
	// PixelFormat is the layout Append expects.
	PixelFormat() frame.Format
	// Ready reports whether Append would accept a frame now.
	Ready() bool
	// Append queues buf at pts. The session takes its own reference when
	// it holds the buffer beyond the call.
	Append(buf *frame.Buffer, pts timeline.Time) error
	// Finish marks the track finished, closes the container and waits
	// for finalization. The error carries the encoder diagnostics. An
	// encoder that stops consuming data fails Finish instead of hanging
	// it.
	Finish() error
	// Abort tears the session down without finalizing the container. It
	// is a no-op after Finish.
	Abort() error
}

// Opener creates sessions; opening creates or truncates Settings.Path.
type Opener interface {
	Open(ctx context.Context, s Settings) (Session, error)
	// Ext is the container extension written by this opener.
	Ext() string
	// Name identifies the encoder in logs.
	Name() string
}

// NewOpener chooses the ffmpeg pipe when a binary is available and the
// codec is not mjpeg, otherwise the built-in Motion JPEG writer.
func NewOpener(codec, ffmpegPath string) Opener {
	if codec == "mjpeg" || ffmpegPath == "" {
		return &MJPEGOpener{}
	}
	return &FFmpegOpener{FFmpegPath: ffmpegPath, Codec: codec}
}
