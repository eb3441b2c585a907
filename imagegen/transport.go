package imagegen

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"imgen/core"
	"imgen/logging"

	"go.uber.org/zap"
)

// ErrResponseTooLarge is returned when a response body exceeds the cap.
var ErrResponseTooLarge = errors.New("imagegen: response body too large")

// transport is the HTTP doer shared by the generations and edits paths.
// It stamps every request with the invocation's request id and user agent,
// caps the response body and logs duration and size once the body is closed.
type transport struct {
	client    *http.Client
	requestID string
	limit     int64
	logger    *logging.Logger
}

// Do sends req with the shared headers and a metered body.
func (t *transport) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set(core.RequestIDHeader, t.requestID)
	req.Header.Set("User-Agent", core.UserAgent())

	t.logger.Debug("sending request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.String("request_id", t.requestID),
		zap.Int64("request_size", req.ContentLength),
	)

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Debug("request failed",
			zap.String("url", req.URL.Redacted()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	path := req.URL.Path
	resp.Body = &meteredBody{
		rc:    resp.Body,
		limit: t.limit,
		onClose: func(n int64) {
			t.logger.Info("request completed",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.Duration("duration", time.Since(start)),
				zap.String("response_size", core.FormatBytes(n)),
				zap.String("request_id", t.requestID),
			)
		},
	}
	return resp, nil
}

// meteredBody counts bytes read and fails once more than limit bytes arrive.
type meteredBody struct {
	rc      io.ReadCloser
	limit   int64
	n       int64
	closed  bool
	onClose func(n int64)
}

func (b *meteredBody) Read(p []byte) (int, error) {
	// Allow one byte past the limit so an exact-size body still succeeds.
	if remaining := b.limit + 1 - b.n; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := b.rc.Read(p)
	b.n += int64(n)
	if b.n > b.limit {
		return n, fmt.Errorf("%w: more than %s", ErrResponseTooLarge, core.FormatBytes(b.limit))
	}
	return n, err
}

func (b *meteredBody) Close() error {
	if !b.closed {
		b.closed = true
		if b.onClose != nil {
			b.onClose(b.n)
		}
	}
	return b.rc.Close()
}
