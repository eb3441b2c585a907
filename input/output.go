package input

// OutputKind selects where generated images are written.
type OutputKind int

const (
	// OutputAuto writes each image to a generated filename.
	OutputAuto OutputKind = iota
	// OutputFile writes the single image to a named file.
	OutputFile
	// OutputStdout writes the single image's raw bytes to stdout.
	OutputStdout
)

// Output is the destination for generated images.
type Output struct {
	Kind OutputKind
	Path string // set for OutputFile
}

// ParseOutput classifies the --output value. An empty token means automatic
// naming and "-" means stdout. The path is not checked; it may not exist yet.
func ParseOutput(token string) Output {
	switch token {
	case "":
		return Output{Kind: OutputAuto}
	case StdinToken:
		return Output{Kind: OutputStdout}
	default:
		return Output{Kind: OutputFile, Path: token}
	}
}

// IsExplicit reports whether the output names a single destination.
func (o Output) IsExplicit() bool {
	return o.Kind != OutputAuto
}

// String returns the token form of the output.
func (o Output) String() string {
	switch o.Kind {
	case OutputStdout:
		return StdinToken
	case OutputFile:
		return o.Path
	default:
		return ""
	}
}
