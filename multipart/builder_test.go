package multipart

import (
	"bytes"
	"io"
	stdmultipart "mime/multipart"
	"strings"
	"testing"
)

func TestNewBoundary(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		b := NewBoundary()
		if len(b) != BoundaryLength {
			t.Fatalf("len(NewBoundary()) = %d, want %d", len(b), BoundaryLength)
		}
		for _, c := range b {
			if !strings.ContainsRune(boundaryAlphabet, c) {
				t.Fatalf("boundary %q contains non-alphanumeric rune %q", b, c)
			}
		}
		if seen[b] {
			t.Fatalf("duplicate boundary %q", b)
		}
		seen[b] = true
	}
}

func TestNew_UsesRandomBoundary(t *testing.T) {
	b := New()
	if len(b.Boundary()) != BoundaryLength {
		t.Errorf("Boundary() length = %d, want %d", len(b.Boundary()), BoundaryLength)
	}
}

func TestBuild_Empty(t *testing.T) {
	body := NewWithBoundary("xyz").Build()

	if got, want := string(body.Bytes), "--xyz--\r\n"; got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
	if got, want := body.ContentType, "multipart/form-data; boundary=xyz"; got != want {
		t.Errorf("ContentType = %q, want %q", got, want)
	}
}

func TestBuild_TextParts(t *testing.T) {
	b := NewWithBoundary("testboundary123")
	b.AddText("prompt", "A test prompt")
	b.AddText("model", "gpt-image-1")

	body := b.Build()

	want := "--testboundary123\r\n" +
		"Content-Disposition: form-data; name=\"prompt\"\r\n\r\n" +
		"A test prompt\r\n" +
		"--testboundary123\r\n" +
		"Content-Disposition: form-data; name=\"model\"\r\n\r\n" +
		"gpt-image-1\r\n" +
		"--testboundary123--\r\n"

	if string(body.Bytes) != want {
		t.Errorf("Build() mismatch\n got: %q\nwant: %q", body.Bytes, want)
	}
}

func TestBuild_OtterScenario(t *testing.T) {
	png := []byte("\x89PNG...")

	b := NewWithBoundary("B1")
	b.AddText("prompt", "A cute baby otter")
	b.AddText("model", "gpt-image-1")
	b.AddFile("image[]", "cat.png", "image/png", png)

	body := b.Build()

	want := []byte("--B1\r\n" +
		"Content-Disposition: form-data; name=\"prompt\"\r\n\r\n" +
		"A cute baby otter\r\n" +
		"--B1\r\n" +
		"Content-Disposition: form-data; name=\"model\"\r\n\r\n" +
		"gpt-image-1\r\n" +
		"--B1\r\n" +
		"Content-Disposition: form-data; name=\"image[]\"; filename=\"cat.png\"\r\n" +
		"Content-Type: image/png\r\n\r\n" +
		"\x89PNG...\r\n" +
		"--B1--\r\n")

	if !bytes.Equal(body.Bytes, want) {
		t.Errorf("Build() mismatch\n got: %q\nwant: %q", body.Bytes, want)
	}
	if body.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", body.Len(), len(want))
	}
}

func TestBuild_Framing(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder)
	}{
		{"single text", func(b *Builder) { b.AddText("a", "1") }},
		{"single file", func(b *Builder) { b.AddFile("f", "x.bin", MIMEOctetStream, []byte{0, 1, 2}) }},
		{"mixed", func(b *Builder) {
			b.AddFile("image[]", "a.png", MIMEPNG, []byte("aaa"))
			b.AddText("n", "2")
			b.AddFile("mask", "m.png", MIMEPNG, nil)
		}},
		{"empty value", func(b *Builder) { b.AddText("quality", "") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewWithBoundary("BOUNDARY")
			tt.build(b)
			body := string(b.Build().Bytes)

			if !strings.HasPrefix(body, "--BOUNDARY\r\n") {
				t.Errorf("body does not start with opening boundary: %q", body)
			}
			if !strings.HasSuffix(body, "--BOUNDARY--\r\n") {
				t.Errorf("body does not end with closing boundary: %q", body)
			}
			if strings.Count(body, "--BOUNDARY--") != 1 {
				t.Errorf("closing boundary must appear exactly once: %q", body)
			}
		})
	}
}

func TestBuild_PartSubstrings(t *testing.T) {
	b := NewWithBoundary("zz")
	b.AddText("size", "1024x1024")
	b.AddFile("mask", "stdin.webp", MIMEWebP, []byte("RIFFdataWEBP"))
	body := string(b.Build().Bytes)

	wantText := "Content-Disposition: form-data; name=\"size\"\r\n\r\n1024x1024\r\n"
	if !strings.Contains(body, wantText) {
		t.Errorf("body missing text part %q", wantText)
	}

	wantFile := "Content-Disposition: form-data; name=\"mask\"; filename=\"stdin.webp\"\r\n" +
		"Content-Type: image/webp\r\n\r\nRIFFdataWEBP\r\n"
	if !strings.Contains(body, wantFile) {
		t.Errorf("body missing file part %q", wantFile)
	}
}

func TestBuild_PreservesInsertionOrder(t *testing.T) {
	b := NewWithBoundary("ord")
	b.AddFile("image[]", "first.png", MIMEPNG, []byte("1"))
	b.AddText("prompt", "p")
	b.AddFile("image[]", "second.png", MIMEPNG, []byte("2"))
	body := string(b.Build().Bytes)

	first := strings.Index(body, "first.png")
	prompt := strings.Index(body, `name="prompt"`)
	second := strings.Index(body, "second.png")
	if !(first < prompt && prompt < second) {
		t.Errorf("parts out of order: first=%d prompt=%d second=%d", first, prompt, second)
	}
}

func TestBuild_SingleUse(t *testing.T) {
	b := NewWithBoundary("once")
	b.AddText("a", "b")
	_ = b.Build()

	if got := string(b.Build().Bytes); got != "--once--\r\n" {
		t.Errorf("second Build() = %q, want empty body", got)
	}
}

// TestBuild_ReadableByStdlib checks the encoder against the standard
// library's multipart reader, the same parser Go HTTP servers use.
func TestBuild_ReadableByStdlib(t *testing.T) {
	b := New()
	b.AddText("prompt", "two otters")
	b.AddText("n", "1")
	b.AddFile("image[]", "a.png", MIMEPNG, append([]byte{}, pngSignature...))
	b.AddFile("image[]", "b.jpg", MIMEJPEG, []byte{0xFF, 0xD8, 0xFF})
	body := b.Build()

	r := stdmultipart.NewReader(body.Reader(), b.Boundary())

	type seenPart struct {
		name, filename, contentType, data string
	}
	var got []seenPart
	for {
		p, err := r.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextPart() error: %v", err)
		}
		data, err := io.ReadAll(p)
		if err != nil {
			t.Fatalf("ReadAll() error: %v", err)
		}
		got = append(got, seenPart{p.FormName(), p.FileName(), p.Header.Get("Content-Type"), string(data)})
	}

	want := []seenPart{
		{"prompt", "", "", "two otters"},
		{"n", "", "", "1"},
		{"image[]", "a.png", MIMEPNG, string(pngSignature)},
		{"image[]", "b.jpg", MIMEJPEG, "\xFF\xD8\xFF"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d parts, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("part %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
