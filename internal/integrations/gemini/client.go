package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"mathsolver-agent/internal/domain"
)

// DefaultModel is the generation model used when no override is configured.
const DefaultModel = "gemini-2.5-flash"

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// generateRequest is the minimal request shape for the generateContent endpoint.
type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// generateResponse is the minimal response shape returned by the
// generateContent endpoint. Error is populated on upstream-reported failures.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Getter abstracts the parameter store used as an optional API key source.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// MissingKeyError reports that no configured source yielded an API key.
// The client returns it before any network I/O takes place.
type MissingKeyError struct{}

func (e *MissingKeyError) Error() string {
	return "gemini: API key is not configured"
}

func (e *MissingKeyError) MissingCredential() bool { return true }

// ContentError reports an upstream response that completed transport-wise but
// contained no usable candidate text. Message carries the upstream error
// message when one was present.
type ContentError struct {
	Message string
}

func (e *ContentError) Error() string {
	if e.Message == "" {
		return "gemini: no usable content in response"
	}
	return fmt.Sprintf("gemini: no usable content in response: %s", e.Message)
}

func (e *ContentError) UpstreamMessage() string { return e.Message }

// KeyConfig describes where the API key comes from. Value takes precedence;
// ParameterName is resolved through the parameter store on first use.
type KeyConfig struct {
	Value         string
	ParameterName string
}

// Client is a focused client for the generateContent REST endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	getter     Getter
	keys       KeyConfig

	keyOnce sync.Once
	apiKey  string
	keyErr  error
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		c.model = strings.TrimSpace(model)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client. The API key is resolved from keys on the first
// call to GenerateContent and reused for the lifetime of the process; a
// missing key is reported per request rather than at construction so the
// process can start and fail closed.
func NewClient(keys KeyConfig, getter Getter, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    defaultBaseURL,
		model:      DefaultModel,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		getter:     getter,
		keys:       keys,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.model == "" {
		return nil, errors.New("gemini: model must not be empty")
	}
	return c, nil
}

// resolveAPIKey resolves the key on the first call and returns the cached
// result on every subsequent call within the same process lifetime.
func (c *Client) resolveAPIKey(ctx context.Context) (string, error) {
	c.keyOnce.Do(func() {
		c.apiKey, c.keyErr = resolveKeyFromSources(ctx, c.keys, c.getter)
	})
	return c.apiKey, c.keyErr
}

func resolveKeyFromSources(ctx context.Context, keys KeyConfig, getter Getter) (string, error) {
	if v := strings.TrimSpace(keys.Value); v != "" {
		return v, nil
	}
	name := strings.TrimSpace(keys.ParameterName)
	if name == "" || getter == nil {
		return "", &MissingKeyError{}
	}
	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("gemini: fetch key from paramstore: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return "", &MissingKeyError{}
	}
	return strings.TrimSpace(raw), nil
}

// resolvedHTTPClient returns the configured HTTP client, or a default with a
// 10s timeout if none was set.
func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func generateURL(baseURL, model, apiKey string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return base + "/v1beta/models/" + model + ":generateContent?key=" + url.QueryEscape(apiKey)
}

// GenerateContent issues a single generateContent call for the given problem
// and returns the first candidate's text. One attempt, no retry.
func (c *Client) GenerateContent(ctx context.Context, p domain.Problem) (string, error) {
	apiKey, err := c.resolveAPIKey(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(buildGenerateRequest(p))
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	endpoint := generateURL(c.baseURL, c.model, apiKey)

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if reqErr != nil {
		return "", fmt.Errorf("gemini: create request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.doRequest(req)
	if err != nil {
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}

	var payload generateResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return "", fmt.Errorf("gemini: decode response: %w", decErr)
	}
	if text, ok := candidateText(payload); ok {
		return text, nil
	}
	cerr := &ContentError{}
	if payload.Error != nil {
		cerr.Message = payload.Error.Message
	}
	return "", cerr
}

// buildGenerateRequest assembles the upstream payload: the text part first,
// then the inline-data part only when both the image data and MIME type are
// present, plus the fixed system instruction.
func buildGenerateRequest(p domain.Problem) generateRequest {
	parts := []part{{Text: p.Query}}
	if p.ImageData != "" && p.MimeType != "" {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: p.MimeType,
			Data:     p.ImageData,
		}})
	}
	return generateRequest{
		Contents:          []content{{Parts: parts}},
		SystemInstruction: &content{Parts: []part{{Text: SystemInstruction()}}},
	}
}

// candidateText returns the first candidate's first non-empty text part.
func candidateText(payload generateResponse) (string, bool) {
	if len(payload.Candidates) == 0 {
		return "", false
	}
	for _, p := range payload.Candidates[0].Content.Parts {
		if p.Text != "" {
			return p.Text, true
		}
	}
	return "", false
}

// doRequest reads the response body regardless of status code: upstream errors
// arrive as a JSON body with an error object and are classified by the caller,
// not by HTTP status.
func (c *Client) doRequest(req *http.Request) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
