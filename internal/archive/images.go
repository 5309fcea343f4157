package archive

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// maxImageBytes caps a single image download.
const maxImageBytes = 20 << 20

// mimeExtensions maps declared image MIME types to file extensions.
var mimeExtensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/jpg":     ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// DownloadImages persists each distinct image source into dir, named by a
// contiguous 3-digit sequence (img_001.ext, img_002.ext, ...). A single
// image's failure is logged and its sequence number reused, so the
// surviving files stay contiguously numbered; failures never abort the
// batch. Returns the number of files written.
func DownloadImages(ctx context.Context, client *http.Client, pageURL string, sources []string, dir string, verbose bool) int {
	seen := make(map[string]bool, len(sources))
	seq := 1
	count := 0

	for _, src := range sources {
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true

		if err := ctx.Err(); err != nil {
			break
		}

		data, ext, err := fetchImage(ctx, client, pageURL, src)
		if err != nil {
			if verbose {
				log.Printf("[ARCHIVE] image skipped (%s): %v", truncateSource(src), err)
			}
			continue
		}

		name := fmt.Sprintf("img_%03d%s", seq, ext)
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			if verbose {
				log.Printf("[ARCHIVE] image write failed (%s): %v", name, err)
			}
			continue
		}
		seq++
		count++
	}
	return count
}

// fetchImage resolves one image source to bytes plus a file extension.
// Inline data URLs are decoded locally; everything else is resolved against
// the page URL and fetched over HTTP.
func fetchImage(ctx context.Context, client *http.Client, pageURL, src string) ([]byte, string, error) {
	if strings.HasPrefix(src, "data:") {
		return decodeDataURL(src)
	}

	resolved, err := resolveImageURL(pageURL, src)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read body: %w", err)
	}

	ext := extensionFor(resolved, resp.Header.Get("Content-Type"))
	return data, ext, nil
}

// resolveImageURL turns src into an absolute http(s) URL relative to the
// page it appeared on, handling protocol-relative //host/path forms.
func resolveImageURL(pageURL, src string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}

	if strings.HasPrefix(src, "//") {
		scheme := base.Scheme
		if scheme == "" {
			scheme = "https"
		}
		src = scheme + ":" + src
	}

	ref, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("invalid image URL: %w", err)
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", resolved.Scheme)
	}
	return resolved.String(), nil
}

// decodeDataURL decodes an inline data URL payload (base64 or
// percent-encoded) and infers the extension from the declared MIME type.
func decodeDataURL(src string) ([]byte, string, error) {
	rest := strings.TrimPrefix(src, "data:")
	comma := strings.Index(rest, ",")
	if comma < 0 {
		return nil, "", fmt.Errorf("malformed data URL")
	}

	meta := rest[:comma]
	payload := rest[comma+1:]

	mimeType := meta
	isBase64 := false
	if idx := strings.Index(meta, ";"); idx >= 0 {
		mimeType = meta[:idx]
		isBase64 = strings.Contains(meta[idx:], "base64")
	}

	var data []byte
	var err error
	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode base64 payload: %w", err)
		}
	} else {
		decoded, err := url.QueryUnescape(payload)
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode payload: %w", err)
		}
		data = []byte(decoded)
	}

	ext, ok := mimeExtensions[strings.ToLower(mimeType)]
	if !ok {
		ext = ".bin"
	}
	return data, ext, nil
}

// extensionFor picks a file extension from the URL path, falling back to
// the response content type.
func extensionFor(imageURL, contentType string) string {
	if u, err := url.Parse(imageURL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); ext != "" {
			switch ext {
			case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg":
				return ext
			}
		}
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	if ext, ok := mimeExtensions[strings.TrimSpace(strings.ToLower(contentType))]; ok {
		return ext
	}
	return ".bin"
}

func truncateSource(src string) string {
	if len(src) > 80 {
		return src[:77] + "..."
	}
	return src
}
