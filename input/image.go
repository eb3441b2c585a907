package input

import (
	"io"
	"path/filepath"

	"imgen/multipart"
)

// Image is a classified image or mask token: a file or stdin.
type Image struct {
	Source
}

// ImageData is an image read into memory, ready to attach to a multipart body.
type ImageData struct {
	Bytes       []byte
	Filename    string
	ContentType string
}

// ParseImage classifies an image token. Literal text is rejected.
func ParseImage(token string) (Image, error) {
	return parseImageArg("image", token)
}

// ParseMask classifies a mask token with the same rules as ParseImage.
func ParseMask(token string) (Image, error) {
	return parseImageArg("mask", token)
}

// ParseImages classifies every token and stops at the first error.
func ParseImages(tokens []string) ([]Image, error) {
	images := make([]Image, 0, len(tokens))
	for _, token := range tokens {
		img, err := ParseImage(token)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func parseImageArg(arg, token string) (Image, error) {
	src, err := classify(token, false)
	if err != nil {
		return Image{}, &ArgError{Arg: arg, Value: token, Err: err}
	}
	return Image{Source: src}, nil
}

// Read loads the image. Files get their content type from the extension and
// keep their base name; stdin data is sniffed and named stdin.<ext>.
func (img Image) Read(stdin io.Reader) (ImageData, error) {
	data, err := img.read(stdin)
	if err != nil {
		return ImageData{}, err
	}

	if img.Kind == Stdin {
		contentType := multipart.MIMEFromBytes(data)
		return ImageData{
			Bytes:       data,
			Filename:    "stdin." + multipart.ExtFromMIME(contentType),
			ContentType: contentType,
		}, nil
	}

	return ImageData{
		Bytes:       data,
		Filename:    filepath.Base(img.Value),
		ContentType: multipart.MIMEFromFilename(img.Value),
	}, nil
}
