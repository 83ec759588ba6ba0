package usecase

import (
	"io"
	"os"
	"path/filepath"
)

// moveFile renames src to dst, creating parent directories. Falls back to
// copy-and-remove when src and dst are on different filesystems (temp dirs
// often are).
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dst)
		return err
	}

	return os.Remove(src)
}
