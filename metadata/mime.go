package metadata

import (
	"mime"
	"path/filepath"
	"strings"
)

// ExtensionToMIME maps file extensions (without dot) to MIME types.
// Consulted before the system MIME database so results do not depend on the host.
var ExtensionToMIME = map[string]string{
	// Text
	"txt": "text/plain", "log": "text/plain", "ini": "text/plain", "cfg": "text/plain",
	"md": "text/markdown", "markdown": "text/markdown",
	"csv": "text/csv", "tsv": "text/tab-separated-values",
	"html": "text/html", "htm": "text/html",
	"css":  "text/css",
	"xml":  "application/xml",
	"json": "application/json",
	"yaml": "application/yaml", "yml": "application/yaml",
	"toml": "application/toml",
	"rtf":  "application/rtf",
	// Source
	"py": "text/x-python",
	"go": "text/x-go",
	"js": "text/javascript", "mjs": "text/javascript",
	"ts":   "text/x-typescript",
	"java": "text/x-java",
	"c":    "text/x-c", "h": "text/x-c",
	"cpp": "text/x-c++", "hpp": "text/x-c++",
	"sh":  "application/x-sh",
	"sql": "application/sql",
	// Documents
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"odt":  "application/vnd.oasis.opendocument.text",
	"epub": "application/epub+zip",
	// Images
	"png": "image/png", "jpg": "image/jpeg", "jpeg": "image/jpeg",
	"gif": "image/gif", "bmp": "image/bmp", "webp": "image/webp",
	"svg": "image/svg+xml", "ico": "image/vnd.microsoft.icon",
	"tif": "image/tiff", "tiff": "image/tiff", "heic": "image/heic",
	// Audio / video
	"mp3": "audio/mpeg", "wav": "audio/x-wav", "ogg": "audio/ogg", "flac": "audio/flac",
	"mp4": "video/mp4", "mov": "video/quicktime", "avi": "video/x-msvideo",
	"mkv": "video/x-matroska", "webm": "video/webm",
	// Archives
	"zip": "application/zip", "tar": "application/x-tar", "gz": "application/gzip",
	"7z": "application/x-7z-compressed", "rar": "application/vnd.rar",
	"dmg": "application/x-apple-diskimage", "iso": "application/x-iso9660-image",
	"exe": "application/vnd.microsoft.portable-executable",
}

// GuessType returns the best-guess MIME type for a file path based on its extension.
// Returns "" when the extension is unknown.
func GuessType(filePath string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	if ext == "" {
		return ""
	}
	if mimeType, ok := ExtensionToMIME[ext]; ok {
		return mimeType
	}

	// System table; drop parameters such as "; charset=utf-8"
	mimeType := mime.TypeByExtension("." + ext)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}
