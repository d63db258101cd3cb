package domain

import "strings"

// placeholderVideoPath is written by the upload form before a file is chosen
const placeholderVideoPath = "/creatives/"

var videoExtensions = []string{".mp4", ".mov", ".webm", ".ogg", ".avi", ".mkv"}

// IsValidVideoPath reports whether a creative's video field points at
// something playable: a remote http(s) URL or a path with a known video
// extension. The upload placeholder path never counts.
func IsValidVideoPath(path string) bool {
	if path == "" || path == placeholderVideoPath {
		return false
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return true
	}
	lower := strings.ToLower(path)
	for _, ext := range videoExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
