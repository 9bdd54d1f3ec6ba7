package system

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindFFmpegExplicit(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	if got := FindFFmpeg(bin); got != bin {
		t.Errorf("FindFFmpeg(%q) = %q", bin, got)
	}
	if got := FindFFmpeg(filepath.Join(dir, "missing")); got != "" {
		t.Errorf("missing binary resolved to %q", got)
	}
}

func TestBestEncoderWithoutFFmpeg(t *testing.T) {
	if got := BestEncoder("", "h264"); got != "libx264" {
		t.Errorf("h264 fallback = %q", got)
	}
	if got := BestEncoder("", "hevc"); got != "libx265" {
		t.Errorf("hevc fallback = %q", got)
	}
}

func TestMemoryAndCanvasBytes(t *testing.T) {
	if got := CanvasBytes(1080, 1920); got != 1080*1920*4 {
		t.Errorf("CanvasBytes = %d", got)
	}
	if got := CanvasBytes(0, 10); got != 0 {
		t.Errorf("CanvasBytes(0, 10) = %d", got)
	}
	snap := Memory()
	if snap.Total != 0 && snap.Available > snap.Total {
		t.Errorf("available %d exceeds total %d", snap.Available, snap.Total)
	}
}
