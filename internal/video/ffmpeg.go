package video

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/ivlev/photoreel/internal/frame"
	"github.com/ivlev/photoreel/internal/logger"
	"github.com/ivlev/photoreel/internal/system"
	"github.com/ivlev/photoreel/internal/timeline"
)

// QueueDepth bounds how many frames wait for the ffmpeg pipe.
const QueueDepth = 4

// DefaultDrainTimeout bounds how long Finish waits for ffmpeg to take the
// queued frames before the process is killed.
const DefaultDrainTimeout = 10 * time.Second

// waitDelay bounds cmd.Wait once the process is gone but a child still
// holds its output pipes.
const waitDelay = 2 * time.Second

// FFmpegOpener starts ffmpeg reading raw RGBA frames from stdin.
type FFmpegOpener struct {
	FFmpegPath string
	Codec      string
	// Encoder overrides hardware detection, e.g. "libx264".
	Encoder string
	// DrainTimeout overrides DefaultDrainTimeout.
	DrainTimeout time.Duration
}

func (o *FFmpegOpener) Ext() string { return "mp4" }

func (o *FFmpegOpener) Name() string {
	return "ffmpeg/" + o.encoder()
}

func (o *FFmpegOpener) encoder() string {
	if o.Encoder == "" {
		o.Encoder = system.BestEncoder(o.FFmpegPath, o.Codec)
	}
	return o.Encoder
}

// Open starts the process. The process is not bound to ctx: once started
// it is always finalized through Finish so the container is closed.
func (o *FFmpegOpener) Open(ctx context.Context, s Settings) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Width <= 0 || s.Height <= 0 || s.FPS <= 0 {
		return nil, fmt.Errorf("invalid track %dx%d@%d", s.Width, s.Height, s.FPS)
	}

	args := BuildArgs(s, o.encoder())
	logger.Log.Debugf("[*] ffmpeg %s", strings.Join(args, " "))

	cmd := exec.Command(o.FFmpegPath, args...)
	stderr := &tailBuffer{max: 8 << 10}
	cmd.Stdout = io.Discard
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start: %w", err)
	}

	drain := o.DrainTimeout
	if drain <= 0 {
		drain = DefaultDrainTimeout
	}
	sess := &ffmpegSession{
		cmd:    cmd,
		stdin:  stdin,
		stderr: stderr,
		path:   s.Path,
		fps:    s.FPS,
		drain:  drain,
		queue:  make(chan *frame.Buffer, QueueDepth),
		done:   make(chan struct{}),
	}
	go sess.pump()
	return sess, nil
}

// BuildArgs assembles the ffmpeg command line for one track.
func BuildArgs(s Settings, encoder string) []string {
	gop := s.KeyframeInterval
	if gop <= 0 {
		gop = s.FPS
	}
	args := []string{
		"-hide_banner",
		"-y",
		"-f", "rawvideo",
		"-pixel_format", string(frame.RGBA),
		"-video_size", fmt.Sprintf("%dx%d", s.Width, s.Height),
		"-framerate", fmt.Sprintf("%d", s.FPS),
		"-i", "-",
		"-an",
		"-vf", "scale=out_color_matrix=bt709:out_range=tv,format=yuv420p",
		"-c:v", encoder,
		"-g", fmt.Sprintf("%d", gop),
		"-keyint_min", fmt.Sprintf("%d", gop),
	}

	bitrate := fmt.Sprintf("%dk", s.Bitrate/1000)
	switch encoder {
	case "h264_videotoolbox", "hevc_videotoolbox":
		args = append(args, "-b:v", bitrate, "-realtime", "false")
	case "h264_nvenc", "hevc_nvenc":
		args = append(args, "-rc", "vbr", "-b:v", bitrate, "-maxrate", bitrate)
	default: // libx264, libx265
		args = append(args, "-b:v", bitrate, "-maxrate", bitrate, "-bufsize", fmt.Sprintf("%dk", 2*s.Bitrate/1000), "-preset", "medium")
	}
	if strings.HasPrefix(encoder, "hevc") || encoder == "libx265" {
		args = append(args, "-tag:v", "hvc1")
	}

	args = append(args,
		"-colorspace", "bt709",
		"-color_primaries", "bt709",
		"-color_trc", "bt709",
		"-movflags", "+faststart",
		s.Path,
	)
	return args
}

type ffmpegSession struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *tailBuffer
	path   string
	fps    int
	drain  time.Duration

	queue chan *frame.Buffer
	done  chan struct{}
	next  int64

	mu       sync.Mutex
	writeErr error
	finished bool
}

func (s *ffmpegSession) PixelFormat() frame.Format { return frame.RGBA }

func (s *ffmpegSession) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.finished && s.writeErr == nil && len(s.queue) < cap(s.queue)
}

func (s *ffmpegSession) Append(buf *frame.Buffer, pts timeline.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return ErrFinished
	}
	if s.writeErr != nil {
		return s.writeErr
	}
	if buf.Format != frame.RGBA {
		return fmt.Errorf("%w: %q", frame.ErrUnsupportedFormat, buf.Format)
	}
	if pts.FPS != s.fps || pts.Frame != s.next {
		return fmt.Errorf("%w: got frame %d@%d, want %d@%d", ErrOutOfOrder, pts.Frame, pts.FPS, s.next, s.fps)
	}

	buf.Retain()
	select {
	case s.queue <- buf:
		s.next++
		return nil
	default:
		buf.Release()
		return ErrNotReady
	}
}

// pump owns stdin: it writes queued frames in order and drops the
// reference of each one once it is on the pipe.
func (s *ffmpegSession) pump() {
	defer close(s.done)
	for buf := range s.queue {
		s.mu.Lock()
		failed := s.writeErr != nil
		s.mu.Unlock()
		if !failed {
			if _, err := s.stdin.Write(buf.Pix); err != nil {
				s.mu.Lock()
				s.writeErr = fmt.Errorf("write frame: %w", err)
				s.mu.Unlock()
			}
		}
		buf.Release()
	}
}

// close marks the session finished and ends the queue. It reports false
// when the session was already closed.
func (s *ffmpegSession) close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return false
	}
	s.finished = true
	close(s.queue)
	return true
}

// kill stops ffmpeg and unblocks a pump stuck in stdin.Write, then reaps
// the process.
func (s *ffmpegSession) kill() {
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.stdin.Close()
	<-s.done
	s.cmd.Wait()
}

func (s *ffmpegSession) Abort() error {
	if !s.close() {
		return nil
	}
	s.kill()
	return nil
}

func (s *ffmpegSession) Finish() error {
	if !s.close() {
		return ErrFinished
	}

	timer := time.NewTimer(s.drain)
	defer timer.Stop()
	select {
	case <-s.done:
	case <-timer.C:
		s.kill()
		return fmt.Errorf("ffmpeg stopped reading frames for %v: %s", s.drain, strings.TrimSpace(s.stderr.String()))
	}

	closeErr := s.stdin.Close()
	waitErr := s.cmd.Wait()

	s.mu.Lock()
	writeErr := s.writeErr
	s.mu.Unlock()

	switch {
	case waitErr != nil:
		return fmt.Errorf("ffmpeg: %v: %s", waitErr, strings.TrimSpace(s.stderr.String()))
	case writeErr != nil:
		return writeErr
	case closeErr != nil:
		return fmt.Errorf("close stdin: %w", closeErr)
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

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
