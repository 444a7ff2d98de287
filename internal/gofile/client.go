package gofile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Default endpoint bases. The upload server uses geo-aware routing behind
// a single hostname.
const (
	DefaultAPIBase    = "https://api.gofile.io"
	DefaultUploadBase = "https://upload.gofile.io"
)

const (
	// metadataTimeout applies to all non-transfer calls. Uploads and
	// downloads use no timeout: transfers may be arbitrarily large and
	// must not be killed by a fixed deadline.
	metadataTimeout = 30 * time.Second

	userAgent = "gofile-go/0.1"

	// envelopeStatusOK is the literal success marker every API response
	// must carry in its top-level status field.
	envelopeStatusOK = "ok"
)

// Client is a session against the Gofile API. It holds the bearer
// credential, the endpoint base URLs, and the underlying HTTP clients.
// One Client performs many sequential transfers; it is not safe for
// concurrent use because guest-token and folder continuity depend on
// uploads being strictly ordered within a batch.
type Client struct {
	apiBase    string
	uploadBase string
	token      string
	metaClient *http.Client // metadata calls, 30s timeout
	xferClient *http.Client // uploads and downloads, no timeout
	logger     *slog.Logger
}

// NewClient creates a Gofile API client. Empty apiBase and uploadBase
// fall back to the public endpoints. The token may be empty (guest
// session); the client upgrades itself when the server issues one.
func NewClient(apiBase, uploadBase, token string, logger *slog.Logger) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}

	if uploadBase == "" {
		uploadBase = DefaultUploadBase
	}

	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		apiBase:    apiBase,
		uploadBase: uploadBase,
		token:      token,
		metaClient: &http.Client{Timeout: metadataTimeout},
		xferClient: &http.Client{},
		logger:     logger,
	}

	if token != "" {
		logger.Debug("client initialized with token")
	}

	return c
}

// Token returns the current session credential, empty for a guest session.
func (c *Client) Token() string {
	return c.token
}

// SetToken replaces the session credential. All subsequent requests carry
// it as the bearer header.
func (c *Client) SetToken(token string) {
	c.token = token
}

// doJSON issues a metadata request with an optional JSON body and returns
// the normalized envelope payload. Every API call passes through here and
// decodeEnvelope; no caller inspects raw response bodies.
func (c *Client) doJSON(
	ctx context.Context, method, endpoint string,
	body any, query url.Values, headers map[string]string, op string,
) (json.RawMessage, error) {
	var reqBody io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("gofile: marshaling %s request: %w", op, err)
		}

		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("gofile: creating %s request: %w", op, err)
	}

	if query != nil {
		req.URL.RawQuery = query.Encode()
	}

	c.applyHeaders(req, body != nil)

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("api request",
		slog.String("method", method),
		slog.String("endpoint", endpoint),
		slog.String("op", op),
	)

	resp, err := c.metaClient.Do(req)
	if err != nil {
		c.logger.Error("api request failed",
			slog.String("method", method),
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)

		return nil, &Error{
			Op:       op,
			Endpoint: endpoint,
			Message:  err.Error(),
			Err:      ErrNetwork,
		}
	}
	defer resp.Body.Close()

	return c.decodeEnvelope(resp, op, endpoint)
}

// applyHeaders sets the standard request headers, including the bearer
// credential when the session holds one.
func (c *Client) applyHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("User-Agent", userAgent)

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}

// envelope is the uniform {status, data} wrapper every API response uses.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// decodeEnvelope validates a response against the success envelope and
// unwraps the payload. When the body is unparsable, the transport status
// wins: a 5xx with an HTML body reports as an HTTP failure, not a parse
// failure.
func (c *Client) decodeEnvelope(resp *http.Response, op, endpoint string) (json.RawMessage, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			Op:       op,
			Endpoint: endpoint,
			Message:  fmt.Sprintf("reading response body: %v", err),
			Err:      ErrNetwork,
		}
	}

	c.logger.Debug("api response",
		slog.String("op", op),
		slog.Int("status", resp.StatusCode),
	)

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return nil, &Error{
				Op:       op,
				Endpoint: endpoint,
				Status:   fmt.Sprintf("HTTP %d", resp.StatusCode),
				Message:  fmt.Sprintf("request failed with HTTP %d", resp.StatusCode),
				Err:      ErrNetwork,
			}
		}

		return nil, &Error{
			Op:       op,
			Endpoint: endpoint,
			Message:  "invalid payload",
			Err:      ErrAPI,
		}
	}

	if env.Status != envelopeStatusOK {
		c.logger.Error("api error envelope",
			slog.String("op", op),
			slog.String("remote_status", env.Status),
		)

		return nil, &Error{
			Op:       op,
			Endpoint: endpoint,
			Status:   env.Status,
			Message:  fmt.Sprintf("remote error: %s", string(env.Data)),
			Err:      ErrAPI,
		}
	}

	// A JSON null unmarshals into a nil map without error, so the nil
	// check is what actually enforces the object shape.
	var payload map[string]any
	if err := json.Unmarshal(env.Data, &payload); err != nil || payload == nil {
		return nil, &Error{
			Op:       op,
			Endpoint: endpoint,
			Message:  "unexpected payload structure",
			Err:      ErrAPI,
		}
	}

	return env.Data, nil
}
