package imagegen

import (
	"encoding/base64"
	"errors"
	"fmt"

	"imgen/input"

	"github.com/sashabaranov/go-openai"
)

// Model is the only image model imgen uses.
const Model = openai.CreateImageModelGptImage1

// Per-million-token prices in USD.
const (
	InputCostPerMillion  = 10.0
	OutputCostPerMillion = 40.0
)

// Limits enforced before a request is sent.
const (
	MinImages         = 1
	MaxImages         = 10
	MaxCompression    = 100
	DefaultSize       = "1024x1024"
	DefaultQuality    = "low"
	DefaultBackground = "auto"
	DefaultModeration = "low"
)

// ErrNoImages is returned when a successful response carries no image data.
var ErrNoImages = errors.New("imagegen: response contained no images")

// CreateRequest is a text-to-image request.
type CreateRequest struct {
	Prompt            string
	N                 int
	Size              string
	Quality           string
	Background        string
	Moderation        string
	OutputCompression int
	OutputFormat      string
}

// DefaultCreateRequest returns a request with the CLI defaults filled in.
func DefaultCreateRequest(prompt string) CreateRequest {
	return CreateRequest{
		Prompt:            prompt,
		N:                 1,
		Size:              DefaultSize,
		Quality:           DefaultQuality,
		Background:        DefaultBackground,
		Moderation:        DefaultModeration,
		OutputCompression: MaxCompression,
		OutputFormat:      FormatPNG,
	}
}

// Validate checks the fields imgen constrains locally. Everything else is
// left to the API.
func (r CreateRequest) Validate() error {
	if err := ValidateCount(r.N); err != nil {
		return err
	}
	if r.OutputCompression < 0 || r.OutputCompression > MaxCompression {
		return fmt.Errorf("imagegen: output compression must be between 0 and %d, got %d", MaxCompression, r.OutputCompression)
	}
	if r.OutputFormat != "" && !IsValidOutputFormat(r.OutputFormat) {
		return fmt.Errorf("imagegen: output format must be png, jpeg or webp, got %q", r.OutputFormat)
	}
	return nil
}

// generationBody is the JSON body for /images/generations. go-openai tags
// OutputCompression with omitempty, which would drop a requested 0; the
// outer field shadows it.
type generationBody struct {
	openai.ImageRequest
	OutputCompression *int `json:"output_compression,omitempty"`
}

func (r CreateRequest) toOpenAI() generationBody {
	compression := r.OutputCompression
	return generationBody{
		ImageRequest: openai.ImageRequest{
			Prompt:       r.Prompt,
			Model:        Model,
			N:            r.N,
			Size:         r.Size,
			Quality:      r.Quality,
			Background:   r.Background,
			Moderation:   r.Moderation,
			OutputFormat: r.OutputFormat,
		},
		OutputCompression: &compression,
	}
}

// EditRequest edits or extends one or more source images.
type EditRequest struct {
	Prompt  string
	Images  []input.ImageData
	Mask    *input.ImageData
	N       int
	Quality string
	Size    string
}

// Validate checks the fields imgen constrains locally.
func (r EditRequest) Validate() error {
	if len(r.Images) == 0 {
		return errors.New("imagegen: at least one image is required for an edit")
	}
	return ValidateCount(r.N)
}

// ValidateCount checks the number of requested images.
func ValidateCount(n int) error {
	if n < MinImages || n > MaxImages {
		return fmt.Errorf("imagegen: n must be between %d and %d, got %d", MinImages, MaxImages, n)
	}
	return nil
}

// Usage is the token accounting returned with every response.
type Usage struct {
	TotalTokens  int
	InputTokens  int
	OutputTokens int
	TextTokens   int
	ImageTokens  int
}

// Cost returns the price of the request in USD.
// This is a pure function with no side effects.
func (u Usage) Cost() float64 {
	input := float64(u.InputTokens) / 1_000_000 * InputCostPerMillion
	output := float64(u.OutputTokens) / 1_000_000 * OutputCostPerMillion
	return input + output
}

// Response is a decoded API response with raw image bytes.
type Response struct {
	Created   int64
	Images    [][]byte
	Usage     Usage
	RequestID string
}

// decodeResponse converts the API response, decoding every base64 image.
func decodeResponse(resp openai.ImageResponse, requestID string) (*Response, error) {
	if len(resp.Data) == 0 {
		return nil, ErrNoImages
	}

	images := make([][]byte, 0, len(resp.Data))
	for i, d := range resp.Data {
		if d.B64JSON == "" {
			return nil, fmt.Errorf("imagegen: image %d has no b64_json data", i+1)
		}
		data, err := base64.StdEncoding.DecodeString(d.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("imagegen: failed to decode image %d: %w", i+1, err)
		}
		images = append(images, data)
	}

	return &Response{
		Created: resp.Created,
		Images:  images,
		Usage: Usage{
			TotalTokens:  resp.Usage.TotalTokens,
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TextTokens:   resp.Usage.InputTokensDetails.TextTokens,
			ImageTokens:  resp.Usage.InputTokensDetails.ImageTokens,
		},
		RequestID: requestID,
	}, nil
}
