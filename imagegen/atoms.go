// Package imagegen talks to the OpenAI image API and writes the results.
//
// atoms.go contains pure helper functions with no I/O.
package imagegen

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// promptPrefixBytes is how much of the prompt is considered for a filename.
	promptPrefixBytes = 32

	// promptPrefixWords is the maximum number of words kept in a filename.
	promptPrefixWords = 5

	// fallbackPrefix is used when the prompt yields no usable characters.
	fallbackPrefix = "imgen"
)

// PromptPrefix derives a short, filesystem-safe filename prefix from a prompt.
//
// The first 32 bytes (cut back to a rune boundary) are split on whitespace.
// ASCII characters other than letters and digits are dropped, ASCII letters
// are lowercased and non-ASCII runes are kept as-is. Up to five non-empty
// words are joined with "_".
//
// This is a pure function with no side effects.
//
// Example:
//
//	PromptPrefix("A cute baby otter, floating!") // "a_cute_baby_otter_floating"
//	PromptPrefix("!!!")                          // "imgen"
func PromptPrefix(prompt string) string {
	head := prompt[:floorRuneBoundary(prompt, promptPrefixBytes)]

	words := make([]string, 0, promptPrefixWords)
	for _, field := range strings.Fields(head) {
		var b strings.Builder
		for _, r := range field {
			switch {
			case r >= utf8.RuneSelf:
				b.WriteRune(r)
			case r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)):
				b.WriteRune(unicode.ToLower(r))
			}
		}
		if b.Len() == 0 {
			continue
		}
		words = append(words, b.String())
		if len(words) == promptPrefixWords {
			break
		}
	}

	if len(words) == 0 {
		return fallbackPrefix
	}
	return strings.Join(words, "_")
}

// floorRuneBoundary returns the largest index <= n that starts a rune in s.
func floorRuneBoundary(s string, n int) int {
	if n >= len(s) {
		return len(s)
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}

// Output formats accepted by the generations endpoint.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatWebP = "webp"
)

// FileExtension returns the extension (without dot) used for saved images
// of the given output format. Unknown formats fall back to png.
func FileExtension(format string) string {
	switch strings.ToLower(format) {
	case FormatJPEG, "jpg":
		return "jpeg"
	case FormatWebP:
		return "webp"
	default:
		return "png"
	}
}

// IsValidOutputFormat reports whether format is one the API can produce.
func IsValidOutputFormat(format string) bool {
	switch format {
	case FormatPNG, FormatJPEG, FormatWebP:
		return true
	default:
		return false
	}
}

// IsLocalEndpoint reports whether the endpoint's host is a loopback or
// private-network address, or localhost.
//
// Example:
//
//	IsLocalEndpoint("http://localhost:1234")     // true
//	IsLocalEndpoint("http://127.0.0.1:8080")     // true
//	IsLocalEndpoint("http://192.168.1.100:5000") // true
//	IsLocalEndpoint("https://api.openai.com/v1") // false
func IsLocalEndpoint(endpoint string) bool {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified())
}

// ValidateBaseURL checks that the API key will only be sent over HTTPS,
// except to local endpoints used for testing and proxies.
func ValidateBaseURL(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("imagegen: invalid base URL %q: %w", baseURL, err)
	}
	switch {
	case u.Host == "":
		return fmt.Errorf("imagegen: invalid base URL %q: missing host", baseURL)
	case u.Scheme == "https":
		return nil
	case u.Scheme == "http" && IsLocalEndpoint(baseURL):
		return nil
	default:
		return fmt.Errorf("imagegen: refusing to send the API key to %q: HTTPS is required for non-local endpoints", baseURL)
	}
}
