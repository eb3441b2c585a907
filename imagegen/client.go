// client.go implements the Client that talks to the OpenAI image API.
//
// Both endpoints are posted through one transport and decode into the
// go-openai response and error types. Generations send go-openai's
// ImageRequest with output_compression kept even when it is 0. Edits need
// repeated image[] parts, so they are encoded with the multipart package.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"imgen/core"
	"imgen/logging"
	"imgen/multipart"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Generator is implemented by Client. Commands depend on it so tests can
// substitute a fake.
type Generator interface {
	// Create generates images from a text prompt.
	Create(ctx context.Context, req CreateRequest) (*Response, error)

	// Edit generates images from a prompt and one or more source images.
	Edit(ctx context.Context, req EditRequest) (*Response, error)
}

// ClientConfig holds configuration for NewClient.
type ClientConfig struct {
	// APIKey is the OpenAI API key (required)
	APIKey string

	// BaseURL is the API endpoint (default: https://api.openai.com/v1)
	BaseURL string

	// HTTPClient performs the requests (optional)
	// If nil, core.GetHTTPClient(core.DefaultTimeout) is used
	HTTPClient *http.Client

	// RequestID is sent as X-Client-Request-Id (optional)
	// If empty, a new id is generated
	RequestID string

	// Logger receives request logs (optional)
	Logger *logging.Logger

	// NewBuilder creates the multipart builder for edits (optional)
	// Tests inject a fixed boundary through it
	NewBuilder func() *multipart.Builder
}

// Client is the OpenAI image API client.
//
// A Client is bound to one request id and is meant to serve a single
// invocation of the CLI.
type Client struct {
	transport  *transport
	apiKey     string
	baseURL    string
	requestID  string
	logger     *logging.Logger
	newBuilder func() *multipart.Builder
}

var _ Generator = (*Client)(nil)

// NewClient creates a Client.
//
// Returns an error if:
//   - The API key is empty
//   - The base URL is not HTTPS and not a local endpoint
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, core.ErrMissingAPIKey()
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = core.DefaultBaseURL
	}
	if err := ValidateBaseURL(baseURL); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = core.GetHTTPClient(core.DefaultTimeout)
	}
	requestID := cfg.RequestID
	if requestID == "" {
		requestID = core.NewRequestID()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	newBuilder := cfg.NewBuilder
	if newBuilder == nil {
		newBuilder = multipart.New
	}

	t := &transport{
		client:    httpClient,
		requestID: requestID,
		limit:     core.MaxResponseBytes,
		logger:    logger,
	}

	return &Client{
		transport:  t,
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		requestID:  requestID,
		logger:     logger,
		newBuilder: newBuilder,
	}, nil
}

// RequestID returns the id sent with every request from this client.
func (c *Client) RequestID() string {
	return c.requestID
}

// Create generates images from a text prompt.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c.logger.Debug("creating image",
		zap.Int("n", req.N),
		zap.String("size", req.Size),
		zap.String("quality", req.Quality),
		zap.String("output_format", req.OutputFormat),
	)

	payload, err := json.Marshal(req.toOpenAI())
	if err != nil {
		return nil, fmt.Errorf("imagegen: failed to encode create request: %w", err)
	}

	resp, err := c.post(ctx, "/images/generations", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("imagegen: create request failed: %w", err)
	}
	return decodeResponse(resp, c.requestID)
}

// Edit generates images from a prompt and source images, with an optional
// mask. The form fields are sent in the order prompt, model, n, quality,
// size, image[]..., mask.
func (c *Client) Edit(ctx context.Context, req EditRequest) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body := c.editBody(req)
	c.logger.Debug("editing image",
		zap.Int("images", len(req.Images)),
		zap.Bool("mask", req.Mask != nil),
		zap.Int("n", req.N),
		zap.String("body_size", core.FormatBytes(int64(body.Len()))),
	)

	resp, err := c.post(ctx, "/images/edits", body.ContentType, body.Reader())
	if err != nil {
		return nil, fmt.Errorf("imagegen: edit request failed: %w", err)
	}
	return decodeResponse(resp, c.requestID)
}

// post sends body to path and decodes the image response. Failure
// statuses decode into go-openai error types.
func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) (openai.ImageResponse, error) {
	var resp openai.ImageResponse

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return resp, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.transport.Do(httpReq)
	if err != nil {
		return resp, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusBadRequest {
		return resp, decodeErrorResponse(httpResp)
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return resp, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp, nil
}

func (c *Client) editBody(req EditRequest) multipart.Body {
	b := c.newBuilder()
	b.AddText("prompt", req.Prompt)
	b.AddText("model", Model)
	b.AddText("n", strconv.Itoa(req.N))
	if req.Quality != "" {
		b.AddText("quality", req.Quality)
	}
	if req.Size != "" {
		b.AddText("size", req.Size)
	}
	for _, img := range req.Images {
		b.AddFile("image[]", img.Filename, img.ContentType, img.Bytes)
	}
	if req.Mask != nil {
		b.AddFile("mask", req.Mask.Filename, req.Mask.ContentType, req.Mask.Bytes)
	}
	return b.Build()
}

// decodeErrorResponse reads an error envelope the same way go-openai does:
// a well-formed envelope becomes *openai.APIError, anything else becomes
// *openai.RequestError carrying the raw body.
func decodeErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &openai.RequestError{
			HTTPStatus:     resp.Status,
			HTTPStatusCode: resp.StatusCode,
			Err:            err,
		}
	}

	var errResp openai.ErrorResponse
	err = json.Unmarshal(body, &errResp)
	if err != nil || errResp.Error == nil {
		return &openai.RequestError{
			HTTPStatus:     resp.Status,
			HTTPStatusCode: resp.StatusCode,
			Err:            err,
			Body:           body,
		}
	}

	errResp.Error.HTTPStatus = resp.Status
	errResp.Error.HTTPStatusCode = resp.StatusCode
	return errResp.Error
}
