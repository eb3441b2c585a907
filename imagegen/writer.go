// writer.go implements the Writer that stores generated images on disk or
// streams them to stdout.
package imagegen

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"imgen/input"
	"imgen/logging"

	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

// StdoutPath is the Path reported for images written to stdout.
const StdoutPath = "-"

// Writer saves the images of a Response to their output target.
type Writer struct {
	outputDir string
	stdout    io.Writer
	logger    *logging.Logger
}

// WriterConfig holds configuration for the Writer.
type WriterConfig struct {
	// OutputDir is where automatically named files go
	// Default: "."
	OutputDir string

	// Stdout receives raw image bytes for "-o -"
	// Default: os.Stdout
	Stdout io.Writer

	Logger *logging.Logger
}

// NewWriter creates a Writer.
func NewWriter(cfg WriterConfig) *Writer {
	w := &Writer{
		outputDir: cfg.OutputDir,
		stdout:    cfg.Stdout,
		logger:    cfg.Logger,
	}
	if w.outputDir == "" {
		w.outputDir = "."
	}
	if w.stdout == nil {
		w.stdout = os.Stdout
	}
	if w.logger == nil {
		w.logger = logging.NewNop()
	}
	return w
}

// SavedImage describes one written image.
type SavedImage struct {
	// Path is the file written, or StdoutPath
	Path string

	// Size is the number of bytes written
	Size int64

	// Width and Height are zero when the image header could not be read
	Width  int
	Height int

	// Format is the decoder name ("png", "jpeg", "webp"), empty if unknown
	Format string
}

// Save writes every image in resp to target.
//
// Automatic targets produce "<prefix>.<created>.<index>.<ext>" in the output
// directory with a 1-based index. Explicit file and stdout targets accept
// exactly one image.
func (w *Writer) Save(resp *Response, target input.Output, prefix, ext string) ([]SavedImage, error) {
	if resp == nil || len(resp.Images) == 0 {
		return nil, ErrNoImages
	}
	if target.IsExplicit() && len(resp.Images) != 1 {
		return nil, fmt.Errorf("imagegen: output %s needs exactly one image, got %d", target, len(resp.Images))
	}

	switch target.Kind {
	case input.OutputStdout:
		saved, err := w.writeStdout(resp.Images[0])
		if err != nil {
			return nil, err
		}
		return []SavedImage{saved}, nil

	case input.OutputFile:
		saved, err := w.writeFile(target.Path, resp.Images[0])
		if err != nil {
			return nil, err
		}
		return []SavedImage{saved}, nil

	default:
		if err := os.MkdirAll(w.outputDir, 0755); err != nil {
			return nil, fmt.Errorf("imagegen: failed to create output directory: %w", err)
		}
		saved := make([]SavedImage, 0, len(resp.Images))
		for i, data := range resp.Images {
			path := filepath.Join(w.outputDir, AutoFilename(prefix, resp.Created, i+1, ext))
			s, err := w.writeFile(path, data)
			if err != nil {
				return saved, err
			}
			saved = append(saved, s)
		}
		return saved, nil
	}
}

// AutoFilename returns "<prefix>.<created>.<index>.<ext>".
// This is a pure function with no side effects.
func AutoFilename(prefix string, created int64, index int, ext string) string {
	return fmt.Sprintf("%s.%d.%d.%s", prefix, created, index, ext)
}

func (w *Writer) writeFile(path string, data []byte) (SavedImage, error) {
	file, err := os.Create(path)
	if err != nil {
		return SavedImage{}, fmt.Errorf("imagegen: failed to create image file %s: %w", path, err)
	}

	n, err := file.Write(data)
	if err == nil {
		err = file.Close()
	} else {
		file.Close()
	}
	if err != nil {
		// Try to clean up the partial file
		os.Remove(path)
		return SavedImage{}, fmt.Errorf("imagegen: failed to write image file %s: %w", path, err)
	}

	saved := w.describe(path, data)
	saved.Size = int64(n)
	return saved, nil
}

func (w *Writer) writeStdout(data []byte) (SavedImage, error) {
	n, err := w.stdout.Write(data)
	if err != nil {
		return SavedImage{}, fmt.Errorf("imagegen: failed to write image to stdout: %w", err)
	}
	saved := w.describe(StdoutPath, data)
	saved.Size = int64(n)
	return saved, nil
}

func (w *Writer) describe(path string, data []byte) SavedImage {
	saved := SavedImage{Path: path}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		w.logger.Debug("could not read image header", zap.String("path", path), zap.Error(err))
		return saved
	}
	saved.Width = cfg.Width
	saved.Height = cfg.Height
	saved.Format = format
	return saved
}
