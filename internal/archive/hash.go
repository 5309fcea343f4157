package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// maxTitleInFolder bounds the readable part of an output folder name.
const maxTitleInFolder = 60

// ShortHash returns a stable 12-hex-character digest of url: the first six
// bytes of its SHA-256. Long enough to make collisions between distinct
// article URLs negligible, short enough to keep folder names readable.
func ShortHash(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:6])
}

// FolderName builds a filesystem-safe output folder name from a truncated,
// sanitized title plus the URL's short hash. The hash guarantees uniqueness
// when two articles share a title.
func FolderName(title, url string) string {
	sanitized := sanitizeTitle(title)
	if sanitized == "" {
		sanitized = "article"
	}
	return sanitized + "_" + ShortHash(url)
}

// sanitizeTitle replaces characters that are unsafe in file names and
// truncates to maxTitleInFolder characters.
func sanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune('_')
		default:
			// Non-ASCII letters stay; punctuation and path separators go.
			if r > 127 {
				b.WriteRune(r)
			}
		}
	}
	runes := []rune(b.String())
	if len(runes) > maxTitleInFolder {
		runes = runes[:maxTitleInFolder]
	}
	return strings.Trim(string(runes), "_")
}
