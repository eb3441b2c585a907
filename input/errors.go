package input

import (
	"errors"
	"fmt"
)

// Sentinel errors for user-input problems. Every error returned by Parse*
// and Validate wraps one of these and can be matched with errors.Is.
var (
	// ErrFileNotFound is returned for an @path token whose file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrExpectedFileOrStdin is returned when an image or mask token is
	// neither an existing file nor "-".
	ErrExpectedFileOrStdin = errors.New("expected a file path or '-' for stdin")

	// ErrMultipleStdin is returned when more than one input asks for stdin.
	ErrMultipleStdin = errors.New("only one of prompt, --image or --mask can be '-' (stdin)")

	// ErrOutputRequiresSingleImage is returned when an explicit output file
	// or stdout is combined with n != 1.
	ErrOutputRequiresSingleImage = errors.New("an explicit --output requires exactly one image")
)

// ArgError ties an input error to the command-line argument that caused it.
type ArgError struct {
	Arg   string // argument name, e.g. "prompt", "image", "mask", "output"
	Value string // raw token as given on the command line
	Err   error
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("input: %s %q: %v", e.Arg, e.Value, e.Err)
}

func (e *ArgError) Unwrap() error {
	return e.Err
}

// IsUserError reports whether err was caused by invalid command-line input
// rather than an I/O failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrExpectedFileOrStdin) ||
		errors.Is(err, ErrMultipleStdin) ||
		errors.Is(err, ErrOutputRequiresSingleImage)
}
