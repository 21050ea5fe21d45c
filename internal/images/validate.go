package images

import "strings"

// nonImageExtensions lists file types that occasionally appear in media
// attachments but can never render as a lead image.
var nonImageExtensions = []string{
	".pdf", ".doc", ".docx", ".zip", ".mp4", ".avi", ".mp3",
}

// ValidImageURL reports whether raw is usable as a lead-image URL: absolute
// http(s) or protocol-relative, not a known non-image file type, not a
// loopback address, and long enough to be a real URL. Root-relative paths are
// rejected outright; without a base domain there is nothing to resolve them
// against.
func ValidImageURL(raw string) bool {
	if raw == "" || len(raw) < 10 {
		return false
	}

	if !strings.HasPrefix(raw, "http://") &&
		!strings.HasPrefix(raw, "https://") &&
		!strings.HasPrefix(raw, "//") {
		return false
	}

	lower := strings.ToLower(raw)
	if strings.Contains(lower, "localhost") || strings.Contains(lower, "127.0.0.1") {
		return false
	}

	// Strip query and fragment before the extension check.
	path := lower
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, ext := range nonImageExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}

	return true
}

// NormalizeImageURL rewrites protocol-relative URLs to https. Anything else
// passes through unchanged.
func NormalizeImageURL(raw string) string {
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	return raw
}

// acceptImageURL combines validation and normalization: it returns the
// normalized URL and true when raw is usable, "" and false otherwise.
func acceptImageURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if !ValidImageURL(raw) {
		return "", false
	}
	return NormalizeImageURL(raw), true
}
