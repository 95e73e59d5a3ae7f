package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ToolError reports a non-zero exit from ffmpeg or ffprobe, carrying the
// captured tool output for diagnostics.
type ToolError struct {
	Tool   string
	Output string
	Err    error
}

func (e *ToolError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, out)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Probe returns the duration of an audio file in seconds using ffprobe.
func Probe(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, &ToolError{Tool: "ffprobe", Output: string(out), Err: err}
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: parse duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return dur, nil
}

// Cut extracts durSec seconds starting at startSec from src into dst as a
// stream copy (no re-encode). A failed cut removes dst so a partial file is
// never left behind looking like a complete chunk.
func Cut(ctx context.Context, src, dst string, startSec, durSec float64) error {
	// ffmpeg -y -i src -ss start -t dur -acodec copy dst
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", src,
		"-ss", formatSeconds(startSec),
		"-t", formatSeconds(durSec),
		"-acodec", "copy",
		dst,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(dst)
		return &ToolError{Tool: "ffmpeg", Output: string(out), Err: err}
	}
	return nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
