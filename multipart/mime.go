package multipart

import (
	"bytes"
	"path/filepath"
)

// Content types understood by the image API.
const (
	MIMEPNG         = "image/png"
	MIMEJPEG        = "image/jpeg"
	MIMEWebP        = "image/webp"
	MIMEOctetStream = "application/octet-stream"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// MIMEFromFilename infers a content type from the file extension.
// Matching is case-sensitive; unknown or missing extensions map to
// application/octet-stream and the API decides whether to accept the file.
func MIMEFromFilename(name string) string {
	switch filepath.Ext(name) {
	case ".png":
		return MIMEPNG
	case ".jpg", ".jpeg":
		return MIMEJPEG
	case ".webp":
		return MIMEWebP
	default:
		return MIMEOctetStream
	}
}

// MIMEFromBytes sniffs the content type from leading magic numbers.
// Used for data read from stdin, where there is no filename to go on.
func MIMEFromBytes(data []byte) string {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		return MIMEPNG
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return MIMEWebP
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return MIMEJPEG
	default:
		return MIMEOctetStream
	}
}

// ExtFromMIME returns the file extension (without dot) for a content type.
func ExtFromMIME(contentType string) string {
	switch contentType {
	case MIMEPNG:
		return "png"
	case MIMEJPEG:
		return "jpg"
	case MIMEWebP:
		return "webp"
	default:
		return "bin"
	}
}
