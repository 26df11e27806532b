package rewrite

import (
	"bytes"
	"image"
	"net/http"

	// Registered so DecodeConfig can sniff the formats the stdlib
	// does not know about.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// mimeExtensions maps known image media types to file extensions used
// when naming uploaded objects. Unknown types fall back to ".jpg".
var mimeExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/bmp":     ".bmp",
	"image/tiff":    ".tif",
}

// formatMedia maps image.DecodeConfig format names to media types.
var formatMedia = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
}

// extensionFor returns the object-name extension for a media type.
func extensionFor(contentType string) string {
	if ext, ok := mimeExtensions[contentType]; ok {
		return ext
	}
	return ".jpg"
}

// DetectMediaType determines the media type of resource bytes, used
// when the package manifest does not declare one. Image formats are
// identified by their headers; anything else falls back to generic
// content sniffing.
func DetectMediaType(data []byte) string {
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		if mt, ok := formatMedia[format]; ok {
			return mt
		}
	}
	return http.DetectContentType(data)
}
