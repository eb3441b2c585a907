// Package input classifies command-line tokens for prompts, images and masks
// and reads their contents on demand.
//
// source.go contains the classification step. Classification only stats
// the filesystem; file and stdin contents are read later by the Read
// methods, so validation failures never consume stdin.
package input

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// StdinToken is the token that selects standard input.
const StdinToken = "-"

// filePrefix forces a token to be treated as a file path.
const filePrefix = "@"

// Kind is the classification of a single token.
type Kind int

const (
	Literal Kind = iota
	File
	Stdin
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case File:
		return "file"
	case Stdin:
		return "stdin"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Source is a classified token. Value holds the literal text for Literal
// and the path (without any @ prefix) for File; it is empty for Stdin.
type Source struct {
	Kind     Kind
	Value    string
	Explicit bool // File was forced with the @ prefix
}

// IsStdin reports whether the source reads standard input.
func (s Source) IsStdin() bool {
	return s.Kind == Stdin
}

// IsImplicitFile reports whether a token became a File only because a file
// with that name happens to exist.
func (s Source) IsImplicitFile() bool {
	return s.Kind == File && !s.Explicit
}

// classify applies the token rules:
//  1. "-" selects stdin.
//  2. "@path" requires path to exist.
//  3. An existing path is a file; anything else is a literal when
//     allowLiteral is set and an error otherwise.
//
// This is a pure function apart from the existence check.
func classify(token string, allowLiteral bool) (Source, error) {
	if token == StdinToken {
		return Source{Kind: Stdin}, nil
	}

	if path, ok := strings.CutPrefix(token, filePrefix); ok {
		if !fileExists(path) {
			return Source{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Source{Kind: File, Value: path, Explicit: true}, nil
	}

	if fileExists(token) {
		return Source{Kind: File, Value: token}, nil
	}
	if !allowLiteral {
		return Source{}, ErrExpectedFileOrStdin
	}
	return Source{Kind: Literal, Value: token}, nil
}

// fileExists reports whether path names something other than a directory.
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// read returns the full contents of the source.
func (s Source) read(stdin io.Reader) ([]byte, error) {
	switch s.Kind {
	case Literal:
		return []byte(s.Value), nil
	case File:
		data, err := os.ReadFile(s.Value)
		if err != nil {
			return nil, fmt.Errorf("input: failed to read %s: %w", s.Value, err)
		}
		return data, nil
	case Stdin:
		if stdin == nil {
			return nil, fmt.Errorf("input: failed to read stdin: no stdin available")
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("input: failed to read stdin: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("input: unknown source kind %v", s.Kind)
	}
}
