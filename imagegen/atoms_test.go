package imagegen

import (
	"strings"
	"testing"
)

func TestPromptPrefix(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		expected string
	}{
		{
			name:     "simple prompt",
			prompt:   "A cute baby otter",
			expected: "a_cute_baby_otter",
		},
		{
			name:     "punctuation is dropped",
			prompt:   "Hello, world! It's me.",
			expected: "hello_world_its_me",
		},
		{
			name:     "at most five words",
			prompt:   "one two three four five six seven",
			expected: "one_two_three_four_five",
		},
		{
			name:     "only the first 32 bytes are considered",
			prompt:   "abcdefghi abcdefghi abcdefghi abcdefghi",
			expected: "abcdefghi_abcdefghi_abcdefghi_ab",
		},
		{
			name:     "empty prompt falls back",
			prompt:   "",
			expected: "imgen",
		},
		{
			name:     "only symbols falls back",
			prompt:   "!!! ??? ...",
			expected: "imgen",
		},
		{
			name:     "symbol-only words are skipped",
			prompt:   "cat - dog",
			expected: "cat_dog",
		},
		{
			name:     "non-ASCII runes are kept",
			prompt:   "Été à Paris",
			expected: "Été_à_paris",
		},
		{
			name:     "cut falls back to a rune boundary",
			prompt:   strings.Repeat("a", 31) + "é",
			expected: strings.Repeat("a", 31),
		},
		{
			name:     "newlines and tabs split words",
			prompt:   "red\tfox\njumps",
			expected: "red_fox_jumps",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PromptPrefix(tt.prompt)
			if result != tt.expected {
				t.Errorf("PromptPrefix(%q) = %q, expected %q", tt.prompt, result, tt.expected)
			}
		})
	}
}

func TestFloorRuneBoundary(t *testing.T) {
	s := "aé" // 'é' occupies bytes 1 and 2
	tests := []struct {
		n        int
		expected int
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 3},
		{10, 3},
	}

	for _, tt := range tests {
		if got := floorRuneBoundary(s, tt.n); got != tt.expected {
			t.Errorf("floorRuneBoundary(%q, %d) = %d, expected %d", s, tt.n, got, tt.expected)
		}
	}
}

func TestFileExtension(t *testing.T) {
	tests := []struct {
		format   string
		expected string
	}{
		{"png", "png"},
		{"jpeg", "jpeg"},
		{"jpg", "jpeg"},
		{"JPEG", "jpeg"},
		{"webp", "webp"},
		{"", "png"},
		{"tiff", "png"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := FileExtension(tt.format); got != tt.expected {
				t.Errorf("FileExtension(%q) = %q, expected %q", tt.format, got, tt.expected)
			}
		})
	}
}

func TestIsValidOutputFormat(t *testing.T) {
	for _, f := range []string{"png", "jpeg", "webp"} {
		if !IsValidOutputFormat(f) {
			t.Errorf("IsValidOutputFormat(%q) = false, expected true", f)
		}
	}
	for _, f := range []string{"", "jpg", "PNG", "gif"} {
		if IsValidOutputFormat(f) {
			t.Errorf("IsValidOutputFormat(%q) = true, expected false", f)
		}
	}
}

func TestIsLocalEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		expected bool
	}{
		{"empty string returns false", "", false},
		{"localhost", "http://localhost:1234", true},
		{"localhost uppercase", "http://LOCALHOST:1234/v1", true},
		{"loopback IPv4", "http://127.0.0.1:8080", true},
		{"loopback IPv6", "http://[::1]:8080", true},
		{"private 192.168", "http://192.168.1.100:5000", true},
		{"private 10.x", "http://10.0.0.5", true},
		{"OpenAI is not local", "https://api.openai.com/v1", false},
		{"hostname containing 10. is not local", "https://api10.example.com", false},
		{"public IP", "http://8.8.8.8", false},
		{"no scheme", "localhost:1234", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLocalEndpoint(tt.endpoint); got != tt.expected {
				t.Errorf("IsLocalEndpoint(%q) = %v, expected %v", tt.endpoint, got, tt.expected)
			}
		})
	}
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"https OpenAI", "https://api.openai.com/v1", false},
		{"https proxy", "https://proxy.example.com/openai", false},
		{"http localhost", "http://localhost:8080/v1", false},
		{"http loopback", "http://127.0.0.1:4010", false},
		{"http public host", "http://api.openai.com/v1", true},
		{"missing host", "https:///v1", true},
		{"not a URL", "://bad", true},
		{"ftp scheme", "ftp://localhost/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseURL(tt.baseURL)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBaseURL(%q) error = %v, wantErr %v", tt.baseURL, err, tt.wantErr)
			}
		})
	}
}
