package input

import "io"

// Prompt is a classified prompt token: literal text, a file, or stdin.
type Prompt struct {
	Source
}

// ParsePrompt classifies a prompt token. Tokens that are neither "-" nor an
// existing file are taken as literal prompt text.
func ParsePrompt(token string) (Prompt, error) {
	src, err := classify(token, true)
	if err != nil {
		return Prompt{}, &ArgError{Arg: "prompt", Value: token, Err: err}
	}
	return Prompt{Source: src}, nil
}

// Read returns the prompt text. File and stdin contents are returned
// unmodified.
func (p Prompt) Read(stdin io.Reader) (string, error) {
	if p.Kind == Literal {
		return p.Value, nil
	}
	data, err := p.read(stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
