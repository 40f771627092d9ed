// Package client is the Go client for the scribe relay. It submits
// audio to the synchronous and streaming endpoints, decodes streamed
// transcript frames, and can optionally persist finished transcripts to
// a history store.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voxlab/scribe/history"
	"github.com/voxlab/scribe/wire"
)

const defaultTimeout = 5 * time.Minute

// Client talks to a scribe relay.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      history.Store
	source     string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithHistory persists every successful transcript to store.
func WithHistory(store history.Store) Option {
	return func(c *Client) { c.store = store }
}

// WithSource sets the source label recorded on history entries.
// Defaults to "scribe".
func WithSource(source string) Option {
	return func(c *Client) { c.source = source }
}

// New creates a Client for the relay at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		source:     "scribe",
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Request holds per-call parameters.
type Request struct {
	// Audio is the raw audio payload in any supported container format.
	Audio []byte
	// Language optionally names the expected language (e.g. "en").
	Language string
	// Model optionally overrides the relay's default model.
	Model string
	// Provider optionally selects a relay-side backend by name.
	Provider string
}

type wireRequest struct {
	Audio    string `json:"audio"`
	Language string `json:"language,omitempty"`
	Model    string `json:"model,omitempty"`
	Provider string `json:"provider,omitempty"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIError is a non-2xx JSON response from the relay.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("scribe: %s (%s, status %d)", e.Message, e.Code, e.StatusCode)
}

func (c *Client) post(ctx context.Context, path string, req Request) (*http.Response, error) {
	body, err := json.Marshal(wireRequest{
		Audio:    base64.StdEncoding.EncodeToString(req.Audio),
		Language: req.Language,
		Model:    req.Model,
		Provider: req.Provider,
	})
	if err != nil {
		return nil, fmt.Errorf("scribe: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("scribe: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("scribe: %w", err)
	}
	return resp, nil
}

func decodeAPIError(resp *http.Response) error {
	defer resp.Body.Close()
	var envelope errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error.Message == "" {
		return &APIError{StatusCode: resp.StatusCode, Code: "UNKNOWN", Message: resp.Status}
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       envelope.Error.Code,
		Message:    envelope.Error.Message,
	}
}

// Transcribe calls the synchronous endpoint and returns the transcript.
func (c *Client) Transcribe(ctx context.Context, req Request) (string, error) {
	resp, err := c.post(ctx, "/v1/transcribe", req)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", decodeAPIError(resp)
	}
	defer resp.Body.Close()

	var body struct {
		Data struct {
			Text string `json:"text"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("scribe: decode response: %w", err)
	}

	c.record(ctx, body.Data.Text)
	return body.Data.Text, nil
}

// TranscribeStream calls the streaming endpoint and consumes the event
// stream to completion. onProgress, when non-nil, receives the running
// transcript after each delta. The return value is the final text: the
// done frame's text when the relay sent one, otherwise the accumulated
// deltas.
func (c *Client) TranscribeStream(ctx context.Context, req Request, onProgress func(string)) (string, error) {
	resp, err := c.post(ctx, "/v1/transcribe/stream", req)
	if err != nil {
		return "", err
	}
	ct := resp.Header.Get("Content-Type")
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(ct, "text/event-stream") {
		return "", decodeAPIError(resp)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	text, err := wire.Consume(resp.Body, onProgress)
	if err != nil {
		return "", err
	}

	c.record(ctx, text)
	return text, nil
}

// record persists the transcript when a history store is configured.
// Persistence failures do not fail the transcription.
func (c *Client) record(ctx context.Context, text string) {
	if c.store == nil || text == "" {
		return
	}
	_ = c.store.Create(ctx, &history.Record{Text: text, Source: c.source})
}
