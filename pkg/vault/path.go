package vault

import (
	"path/filepath"
	"strings"
)

// maxStemLen bounds the sanitized title so the joined path stays well under
// common filesystem path-length limits once the extension is appended.
const maxStemLen = 190

// illegalChars are characters not allowed in file names on at least one
// of the supported host filesystems
const illegalChars = `/\:*?"<>|`

// FilePath derives the relative note path for a title. It is a pure
// function: deterministic, total, and never panics for any string input.
// Two titles that differ only in illegal characters or beyond the
// truncation bound collide; the later write wins.
func FilePath(folder, title string) string {
	return filepath.Join(folder, sanitizeTitle(title)+".md")
}

// sanitizeTitle strips characters illegal in file names and truncates the
// result to maxStemLen runes
func sanitizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if r < 0x20 || strings.ContainsRune(illegalChars, r) {
			continue
		}
		b.WriteRune(r)
	}

	stem := strings.TrimSpace(b.String())
	runes := []rune(stem)
	if len(runes) > maxStemLen {
		stem = string(runes[:maxStemLen])
	}
	return stem
}
