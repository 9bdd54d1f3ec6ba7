package system

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// FindFFmpeg resolves the ffmpeg binary: an explicit path first, then
// PATH, then the usual install locations. It returns "" when none exists.
func FindFFmpeg(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	name := "ffmpeg"
	if runtime.GOOS == "windows" {
		name = "ffmpeg.exe"
	}
	if path, err := exec.LookPath(name); err == nil {
		return path
	}

	var common []string
	switch runtime.GOOS {
	case "darwin":
		common = []string{"/opt/homebrew/bin/ffmpeg", "/usr/local/bin/ffmpeg", "/opt/local/bin/ffmpeg"}
	case "linux":
		common = []string{"/usr/bin/ffmpeg", "/usr/local/bin/ffmpeg"}
	case "windows":
		common = []string{`C:\ffmpeg\bin\ffmpeg.exe`, `C:\Program Files\ffmpeg\bin\ffmpeg.exe`}
	}
	for _, p := range common {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// BestEncoder picks a hardware encoder for codec when ffmpeg lists one,
// falling back to the software encoder.
func BestEncoder(ffmpegPath, codec string) string {
	var candidates []string
	software := "libx264"
	switch codec {
	case "hevc", "h265":
		candidates = []string{"hevc_videotoolbox", "hevc_nvenc"}
		software = "libx265"
	default:
		candidates = []string{"h264_videotoolbox", "h264_nvenc"}
	}
	if ffmpegPath == "" {
		return software
	}

	out, err := exec.Command(ffmpegPath, "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return software
	}
	listing := string(out)
	for _, enc := range candidates {
		if strings.Contains(listing, " "+enc+" ") {
			return enc
		}
	}
	return software
}

// ProbeDuration asks ffprobe (next to ffmpeg) for a container duration.
func ProbeDuration(ffmpegPath, mediaPath string) (time.Duration, error) {
	probe := "ffprobe"
	if ffmpegPath != "" {
		probe = filepath.Join(filepath.Dir(ffmpegPath), strings.Replace(filepath.Base(ffmpegPath), "ffmpeg", "ffprobe", 1))
	}
	cmd := exec.Command(probe, "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", mediaPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
