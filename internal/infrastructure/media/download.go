package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mizuleaf/callscope/internal/domain"
)

const (
	// MaxFileSize is the download ceiling: 2GB.
	MaxFileSize = 2 * 1024 * 1024 * 1024

	downloadTimeout = 30 * time.Minute
)

// allowedDomains is the download allow-list: the meeting platform, its
// government variant, and the storage provider. Everything else is refused
// before any network traffic happens.
var allowedDomains = []string{
	"zoom.us",
	"zoomgov.com",
	"supabase.co",
	"supabase.com",
}

var privateRangePattern = regexp.MustCompile(`^172\.(1[6-9]|2[0-9]|3[0-1])\.`)

// IsAllowedURL reports whether a download URL passes the SSRF guard:
// HTTPS only, no loopback or RFC1918 hosts, allow-listed domain.
func IsAllowedURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "https" {
		return false
	}

	hostname := u.Hostname()
	if hostname == "localhost" ||
		strings.HasPrefix(hostname, "127.") ||
		strings.HasPrefix(hostname, "10.") ||
		strings.HasPrefix(hostname, "192.168.") ||
		privateRangePattern.MatchString(hostname) {
		return false
	}

	for _, domain := range allowedDomains {
		if hostname == domain || strings.HasSuffix(hostname, "."+domain) {
			return true
		}
	}
	return false
}

// DownloadVideo streams a remote video to outputPath. The transfer is bounded
// by MaxFileSize (checked against content-length up front AND against bytes
// actually received, since chunked responses carry no length) and by a fixed
// wall-clock timeout. On any failure the partial file is removed.
func DownloadVideo(ctx context.Context, rawURL, outputPath, accessToken string) error {
	if !IsAllowedURL(rawURL) {
		return domain.ValidationError{Reason: "invalid or disallowed URL"}
	}
	return fetchToFile(ctx, http.DefaultClient, rawURL, outputPath, accessToken, MaxFileSize)
}

// fetchToFile streams the response body to outputPath, bounded by maxBytes.
// The caller has already vetted the URL.
func fetchToFile(ctx context.Context, client *http.Client, rawURL, outputPath, accessToken string, maxBytes int64) error {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download video: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to download video: %s", resp.Status)
	}

	if resp.ContentLength > maxBytes {
		return fmt.Errorf("file too large: %d bytes exceeds %d bytes limit", resp.ContentLength, maxBytes)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}

	// LimitReader one byte past the cap so an overrun is distinguishable
	// from a transfer that is exactly at the limit.
	written, err := io.Copy(out, io.LimitReader(resp.Body, maxBytes+1))
	closeErr := out.Close()

	if err == nil && written > maxBytes {
		err = fmt.Errorf("download exceeded %d bytes limit", maxBytes)
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(outputPath)
		return err
	}

	return nil
}
