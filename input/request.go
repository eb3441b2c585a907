package input

import (
	"fmt"
	"io"
)

// Request groups the classified inputs of one invocation.
type Request struct {
	Prompt Prompt
	Images []Image
	Mask   *Image
	Output Output
	N      int
}

// Validate checks the rules that span several arguments. It reads nothing
// from disk or stdin.
func (r Request) Validate() error {
	first := ""
	if r.Prompt.IsStdin() {
		first = "prompt"
	}
	check := func(arg string, src Source) error {
		if !src.IsStdin() {
			return nil
		}
		if first != "" {
			return &ArgError{
				Arg:   arg,
				Value: StdinToken,
				Err:   fmt.Errorf("%w (stdin already used by %s)", ErrMultipleStdin, first),
			}
		}
		first = arg
		return nil
	}

	for _, img := range r.Images {
		if err := check("image", img.Source); err != nil {
			return err
		}
	}
	if r.Mask != nil {
		if err := check("mask", r.Mask.Source); err != nil {
			return err
		}
	}

	if r.Output.IsExplicit() && r.N != 1 {
		return &ArgError{
			Arg:   "output",
			Value: r.Output.String(),
			Err:   fmt.Errorf("%w, got n=%d", ErrOutputRequiresSingleImage, r.N),
		}
	}
	return nil
}

// UsesStdin reports whether any input reads standard input.
func (r Request) UsesStdin() bool {
	if r.Prompt.IsStdin() || (r.Mask != nil && r.Mask.IsStdin()) {
		return true
	}
	for _, img := range r.Images {
		if img.IsStdin() {
			return true
		}
	}
	return false
}

// ReadPrompt returns the prompt text.
func (r Request) ReadPrompt(stdin io.Reader) (string, error) {
	return r.Prompt.Read(stdin)
}

// ReadImages loads every image in order.
func (r Request) ReadImages(stdin io.Reader) ([]ImageData, error) {
	out := make([]ImageData, 0, len(r.Images))
	for _, img := range r.Images {
		data, err := img.Read(stdin)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

// ReadMask loads the mask. It returns nil when no mask was given.
func (r Request) ReadMask(stdin io.Reader) (*ImageData, error) {
	if r.Mask == nil {
		return nil, nil
	}
	data, err := r.Mask.Read(stdin)
	if err != nil {
		return nil, err
	}
	return &data, nil
}
