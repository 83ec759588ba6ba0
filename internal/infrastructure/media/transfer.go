package media

import "context"

// Transfer bundles the package-level media operations behind one value so
// callers can swap them out in tests.
type Transfer struct{}

func NewTransfer() Transfer {
	return Transfer{}
}

func (Transfer) DownloadVideo(ctx context.Context, url, outputPath, accessToken string) error {
	return DownloadVideo(ctx, url, outputPath, accessToken)
}

func (Transfer) ExtractClip(ctx context.Context, inputPath string, startMs, endMs int64, outputPath string) (string, error) {
	return ExtractClip(ctx, inputPath, startMs, endMs, outputPath)
}

func (Transfer) Cleanup(paths ...string) {
	CleanupFiles(paths...)
}
