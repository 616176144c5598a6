// Package gemini implements slim.Collaborator over the Gemini generateContent
// REST API. Every failure, including a response that does not match the
// requested shape, is reported as slim.ErrCollaboratorUnavailable.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"slimlog/internal/slim"
)

// DefaultBaseURL is the public Gemini API root.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 32 << 20

// Options configures a Client.
type Options struct {
	APIKey         string
	BaseURL        string
	TextModel      string
	ReasoningModel string
	ImageModel     string
	Timeout        time.Duration
	HTTPClient     *http.Client // optional; Timeout is ignored when set
	Logger         slim.Logger
}

// Client talks to Gemini. It is safe for concurrent use.
type Client struct {
	apiKey         string
	baseURL        string
	textModel      string
	reasoningModel string
	imageModel     string
	http           *http.Client
	logger         slim.Logger
}

var _ slim.Collaborator = (*Client)(nil)

// New creates a Client. The API key and all three model names are required.
func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if opts.TextModel == "" || opts.ReasoningModel == "" || opts.ImageModel == "" {
		return nil, fmt.Errorf("gemini text, reasoning and image models are required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slim.NewNopLogger()
	}
	return &Client{
		apiKey:         opts.APIKey,
		baseURL:        baseURL,
		textModel:      opts.TextModel,
		reasoningModel: opts.ReasoningModel,
		imageModel:     opts.ImageModel,
		http:           httpClient,
		logger:         logger,
	}, nil
}

// unavailable wraps a failure so callers can match ErrCollaboratorUnavailable.
func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", slim.ErrCollaboratorUnavailable, fmt.Sprintf(format, args...))
}

// generate posts req to model and returns the parts of the first candidate.
func (c *Client) generate(ctx context.Context, model string, req *generateRequest) ([]part, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(model), url.QueryEscape(c.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		// The URL carries the key; keep it out of the error text.
		if urlErr, ok := err.(*url.Error); ok {
			err = urlErr.Err
		}
		return nil, unavailable("calling %s: %v", model, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, unavailable("reading %s response: %v", model, err)
	}
	c.logger.Debug("gemini call", "model", model, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, unavailable("%s returned %d %s: %s", model, resp.StatusCode, apiErr.Error.Status, apiErr.Error.Message)
		}
		return nil, unavailable("%s returned status %d", model, resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, unavailable("decoding %s response: %v", model, err)
	}
	if len(out.Candidates) == 0 {
		if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
			return nil, unavailable("%s blocked the prompt: %s", model, out.PromptFeedback.BlockReason)
		}
		return nil, unavailable("%s returned no candidates", model)
	}
	parts := out.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return nil, unavailable("%s returned an empty candidate (finish reason %s)", model, out.Candidates[0].FinishReason)
	}
	return parts, nil
}

// generateText returns the concatenated, trimmed text of the response.
func (c *Client) generateText(ctx context.Context, model string, req *generateRequest) (string, error) {
	parts, err := c.generate(ctx, model, req)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", unavailable("%s returned no text", model)
	}
	return text, nil
}

// generateJSON decodes the response text into out.
func (c *Client) generateJSON(ctx context.Context, model string, req *generateRequest, out any) error {
	text, err := c.generateText(ctx, model, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(extractJSON(text)), out); err != nil {
		return unavailable("%s returned malformed JSON: %v", model, err)
	}
	return nil
}

// generateImage returns the first inline image in the response.
func (c *Client) generateImage(ctx context.Context, model string, req *generateRequest) (*slim.Image, error) {
	parts, err := c.generate(ctx, model, req)
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		if p.InlineData == nil || p.InlineData.Data == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
		if err != nil {
			return nil, unavailable("%s returned undecodable image data: %v", model, err)
		}
		mimeType := p.InlineData.MimeType
		if mimeType == "" {
			mimeType = http.DetectContentType(data)
		}
		return &slim.Image{MIMEType: mimeType, Data: data}, nil
	}
	return nil, unavailable("%s returned no image", model)
}

// extractJSON trims markdown fences and any prose around the outermost object.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return text
	}
	return text[start : end+1]
}

func imagePart(img slim.Image) part {
	return part{InlineData: &inlineData{
		MimeType: img.MIMEType,
		Data:     base64.StdEncoding.EncodeToString(img.Data),
	}}
}
