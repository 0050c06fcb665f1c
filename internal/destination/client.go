package destination

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog"
)

// maxErrorBody caps how much of a failed response is read into the result message.
const maxErrorBody = 64 << 10

type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Request is one outbound call, fully built by a destination.
type Request struct {
	Destination string
	URL         string
	Header      http.Header
	Body        any
	// ErrorMessage extracts a readable message from a non-2xx body. Nil means the raw text.
	ErrorMessage func(body []byte) string
}

// Client sends destination requests. Every call gets its own deadline and is classified
// into a Result; nothing is returned as an error.
type Client struct {
	http    Doer
	timeout time.Duration
	logger  zerolog.Logger
}

func NewClient(httpClient Doer, timeout time.Duration, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    httpClient,
		timeout: timeout,
		logger:  logger,
	}
}

func (c *Client) Send(ctx context.Context, req Request) Result {
	l := c.logger.With().Str("destination", req.Destination).Logger()

	body, err := json.Marshal(req.Body)
	if err != nil {
		l.Error().Err(err).Msg("marshal payload")
		return TransportFailure()
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(body))
	if err != nil {
		l.Error().Err(err).Msg("build request")
		return TransportFailure()
	}
	for k, v := range req.Header {
		httpReq.Header[k] = v
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(httpReq)
	if err != nil {
		l.Warn().Err(err).Msg("request failed")
		return TransportFailure()
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		text, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		if err != nil {
			l.Warn().Err(err).Int("status", res.StatusCode).Msg("read error response")
			return TransportFailure()
		}
		msg := string(text)
		if req.ErrorMessage != nil {
			msg = req.ErrorMessage(text)
		}
		l.Info().Int("status", res.StatusCode).Str("message", msg).Msg("destination rejected event")
		return ClientError(msg)
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxErrorBody))
	l.Debug().Int("status", res.StatusCode).Msg("event delivered")
	return Success()
}
