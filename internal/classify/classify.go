// Package classify maps a file's name and MIME type to the display tag
// shown on its card. The mapping is a pure function: total, deterministic,
// and free of I/O, so tags never need to be recomputed once stored.
package classify

import (
	"path/filepath"
	"strings"
)

// Tag is a display label and its color token.
type Tag struct {
	Title string
	Color string
}

// Color tokens understood by the UI layer.
const (
	ColorGray   = "gray"
	ColorBlue   = "blue"
	ColorGreen  = "green"
	ColorRed    = "red"
	ColorPurple = "purple"
	ColorOrange = "orange"
	ColorYellow = "yellow"
)

// DefaultTag is the catch-all applied when no rule matches.
var DefaultTag = Tag{Title: "File", Color: ColorGray}

var imageExts = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {}, ".bmp": {}, ".svg": {}, ".ico": {},
}

var audioExts = map[string]struct{}{
	".mp3": {}, ".wav": {}, ".ogg": {}, ".flac": {}, ".m4a": {},
}

var videoExts = map[string]struct{}{
	".mp4": {}, ".mkv": {}, ".mov": {}, ".avi": {}, ".webm": {},
}

var archiveExts = map[string]struct{}{
	".zip": {}, ".rar": {}, ".7z": {}, ".tar": {}, ".gz": {}, ".tgz": {},
}

var sheetExts = map[string]struct{}{
	".xls": {}, ".xlsx": {}, ".csv": {}, ".ods": {},
}

var textExts = map[string]struct{}{
	".txt": {}, ".md": {}, ".rtf": {}, ".log": {},
}

var codeExts = map[string]struct{}{
	".go": {}, ".js": {}, ".ts": {}, ".py": {}, ".java": {}, ".c": {}, ".cpp": {}, ".rs": {}, ".rb": {}, ".sh": {}, ".sql": {},
}

// Ext returns the lower-cased extension of name, including the dot, or ""
// when the name has none.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// File classifies a file by name and MIME type. Rules run top-down: MIME
// category first (image/audio/video), then document types, then
// extension-only fallbacks for empty or generic MIME types, then the
// catch-all.
func File(name, mimeType string) Tag {
	ext := Ext(name)
	mt := strings.ToLower(strings.TrimSpace(mimeType))

	// MIME-category rules with extension refinement inside the category.
	switch {
	case strings.HasPrefix(mt, "image/"):
		if ext == ".svg" || mt == "image/svg+xml" {
			return Tag{Title: "Vector", Color: ColorGreen}
		}
		return Tag{Title: "Image", Color: ColorGreen}
	case strings.HasPrefix(mt, "audio/"):
		return Tag{Title: "Audio", Color: ColorPurple}
	case strings.HasPrefix(mt, "video/"):
		return Tag{Title: "Video", Color: ColorOrange}
	}

	// Well-known document types by MIME or extension.
	switch {
	case mt == "application/pdf" || ext == ".pdf":
		return Tag{Title: "PDF", Color: ColorRed}
	case strings.Contains(mt, "word") || ext == ".doc" || ext == ".docx":
		return Tag{Title: "Word", Color: ColorBlue}
	case strings.Contains(mt, "spreadsheet") || strings.Contains(mt, "excel"):
		return Tag{Title: "Sheet", Color: ColorGreen}
	case strings.Contains(mt, "zip") || strings.Contains(mt, "compressed"):
		return Tag{Title: "Archive", Color: ColorYellow}
	}

	// Extension-only fallbacks cover empty or generic MIME types.
	switch {
	case hasExt(imageExts, ext):
		return Tag{Title: "Image", Color: ColorGreen}
	case hasExt(audioExts, ext):
		return Tag{Title: "Audio", Color: ColorPurple}
	case hasExt(videoExts, ext):
		return Tag{Title: "Video", Color: ColorOrange}
	case hasExt(sheetExts, ext):
		return Tag{Title: "Sheet", Color: ColorGreen}
	case hasExt(archiveExts, ext):
		return Tag{Title: "Archive", Color: ColorYellow}
	case strings.HasPrefix(mt, "text/") || hasExt(textExts, ext):
		return Tag{Title: "Text", Color: ColorBlue}
	case hasExt(codeExts, ext):
		return Tag{Title: "Code", Color: ColorPurple}
	}

	return DefaultTag
}

func hasExt(set map[string]struct{}, ext string) bool {
	_, ok := set[ext]
	return ok
}
