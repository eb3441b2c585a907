// Package multipart assembles multipart/form-data request bodies for the
// image edit endpoint.
//
// builder.go contains the Builder that serializes text and file parts into
// a single in-memory body. The output is byte-exact and does not depend on
// mime/multipart, so tests can assert on the full wire format.
package multipart

import (
	"bytes"
	"io"
	"math/rand/v2"
)

// BoundaryLength is the number of characters in a generated boundary.
const BoundaryLength = 30

const boundaryAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const crlf = "\r\n"

// NewBoundary returns a random alphanumeric boundary of BoundaryLength chars.
//
// The boundary is not checked against part contents. With 62^30 possible
// values a collision with real image data is not a practical concern.
func NewBoundary() string {
	b := make([]byte, BoundaryLength)
	for i := range b {
		b[i] = boundaryAlphabet[rand.IntN(len(boundaryAlphabet))]
	}
	return string(b)
}

// partKind distinguishes text parts from file parts.
type partKind int

const (
	textPart partKind = iota
	filePart
)

// part is one named field of the form. Fields not used by a kind are empty.
type part struct {
	kind        partKind
	name        string
	value       string
	filename    string
	contentType string
	data        []byte
}

// Body is a fully serialized multipart body and the Content-Type header
// value that announces its boundary.
type Body struct {
	Bytes       []byte
	ContentType string
}

// Reader returns a reader over the body bytes.
func (b Body) Reader() io.Reader {
	return bytes.NewReader(b.Bytes)
}

// Len returns the body size in bytes.
func (b Body) Len() int {
	return len(b.Bytes)
}

// Builder collects parts in insertion order and serializes them on Build.
//
// A Builder is single use: Build releases the collected parts, so a second
// Build yields an empty body with the same boundary.
type Builder struct {
	boundary string
	parts    []part
}

// New creates a Builder with a random boundary.
func New() *Builder {
	return NewWithBoundary(NewBoundary())
}

// NewWithBoundary creates a Builder that uses the given boundary.
// The boundary must not appear in any part and should be alphanumeric.
func NewWithBoundary(boundary string) *Builder {
	return &Builder{boundary: boundary}
}

// Boundary returns the boundary used by this builder.
func (b *Builder) Boundary() string {
	return b.boundary
}

// AddText appends a text field. Name and value are written verbatim.
func (b *Builder) AddText(name, value string) {
	b.parts = append(b.parts, part{
		kind:  textPart,
		name:  name,
		value: value,
	})
}

// AddFile appends a file field with an explicit filename and content type.
// The data slice is referenced, not copied, and must not be modified until
// Build returns.
func (b *Builder) AddFile(name, filename, contentType string, data []byte) {
	b.parts = append(b.parts, part{
		kind:        filePart,
		name:        name,
		filename:    filename,
		contentType: contentType,
		data:        data,
	})
}

// Build serializes all parts followed by the closing boundary.
func (b *Builder) Build() Body {
	var buf bytes.Buffer
	buf.Grow(b.sizeHint())

	for _, p := range b.parts {
		buf.WriteString("--" + b.boundary + crlf)

		switch p.kind {
		case textPart:
			buf.WriteString(`Content-Disposition: form-data; name="` + p.name + `"` + crlf)
			buf.WriteString(crlf)
			buf.WriteString(p.value)
		case filePart:
			buf.WriteString(`Content-Disposition: form-data; name="` + p.name + `"; filename="` + p.filename + `"` + crlf)
			buf.WriteString("Content-Type: " + p.contentType + crlf)
			buf.WriteString(crlf)
			buf.Write(p.data)
		}
		buf.WriteString(crlf)
	}

	buf.WriteString("--" + b.boundary + "--" + crlf)
	b.parts = nil

	return Body{
		Bytes:       buf.Bytes(),
		ContentType: "multipart/form-data; boundary=" + b.boundary,
	}
}

// sizeHint estimates the serialized size so Build allocates once.
func (b *Builder) sizeHint() int {
	n := len(b.boundary) + 8
	for _, p := range b.parts {
		n += len(b.boundary) + 128 + len(p.name) + len(p.filename) + len(p.contentType)
		n += len(p.value) + len(p.data)
	}
	return n
}
