package media

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/mizuleaf/callscope/internal/domain"
)

const (
	// MaxClipDurationMs caps one clip at 10 minutes.
	MaxClipDurationMs = 10 * 60 * 1000

	ffmpegTimeout = 5 * time.Minute
)

// ExtractClip re-encodes the [startMs, endMs) window of inputPath into a
// web-friendly mp4 at outputPath. The ffmpeg process is killed when it
// exceeds the fixed timeout. Validation happens before ffmpeg is invoked.
func ExtractClip(ctx context.Context, inputPath string, startMs, endMs int64, outputPath string) (string, error) {
	if startMs < 0 {
		return "", domain.ValidationError{Reason: "startMs must be >= 0"}
	}
	if endMs <= startMs {
		return "", domain.ValidationError{Reason: "endMs must be greater than startMs"}
	}
	durationMs := endMs - startMs
	if durationMs > MaxClipDurationMs {
		return "", domain.ValidationError{Reason: fmt.Sprintf("clip duration %dms exceeds maximum %dms", durationMs, MaxClipDurationMs)}
	}
	if inputPath == outputPath {
		return "", domain.ValidationError{Reason: "input and output paths must be different"}
	}

	ctx, cancel := context.WithTimeout(ctx, ffmpegTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", formatSeconds(startMs),
		"-t", formatSeconds(durationMs),
		"-i", inputPath,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-preset", "ultrafast",
		"-crf", "23",
		"-movflags", "+faststart",
		"-y",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("ffmpeg timed out after %s", ffmpegTimeout)
		}
		return "", fmt.Errorf("ffmpeg failed: %v: %s", err, string(output))
	}

	return outputPath, nil
}

func formatSeconds(ms int64) string {
	return fmt.Sprintf("%.3f", float64(ms)/1000)
}
