package core

import "github.com/dustin/go-humanize"

// Binary size units.
const (
	KiB int64 = 1 << 10
	MiB int64 = 1 << 20
	GiB int64 = 1 << 30
)

// MaxResponseBytes caps how much of an API response body is read.
// Ten 1536x1024 PNGs in base64 fit comfortably.
const MaxResponseBytes = 100 * MiB

// FormatBytes renders a byte count for logs and reports in binary units,
// e.g. "512 B", "1.5 KiB", "100 MiB". Negative counts render as "0 B".
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
