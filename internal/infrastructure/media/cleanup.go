package media

import (
	"log/slog"
	"os"
)

// CleanupFiles deletes temporary files best-effort. It runs in finally-style
// contexts, so it logs failures instead of returning them and treats a
// missing file as already cleaned up.
func CleanupFiles(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		err := os.Remove(path)
		if err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to delete temp file", "path", path, "error", err)
		}
	}
}
