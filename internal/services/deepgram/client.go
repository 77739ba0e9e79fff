package deepgram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"civicintel/internal/services"
)

const defaultBaseURL = "https://api.deepgram.com/v1/listen"

// Transcriber defines the behaviour the transcription stage needs.
type Transcriber interface {
	TranscribeFile(ctx context.Context, audioPath string) ([]byte, error)
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient injects a custom HTTP client (primarily for tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// Client calls the Deepgram prerecorded transcription API.
type Client struct {
	baseURL  string
	apiKey   string
	model    string
	language string
	http     *http.Client
}

// New constructs a Deepgram client. An empty API key is allowed here; the
// transcription stage checks for it so the failure gets tagged on the
// record instead of aborting startup.
func New(baseURL, apiKey, model, language string, timeout time.Duration, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if strings.TrimSpace(model) == "" {
		model = "nova-2"
	}
	if strings.TrimSpace(language) == "" {
		language = "en-US"
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	client := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   strings.TrimSpace(apiKey),
		model:    model,
		language: language,
		http:     &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// HasKey reports whether an API key is configured.
func (c *Client) HasKey() bool {
	return c.apiKey != ""
}

// TranscribeFile uploads the audio file and returns the raw JSON response
// body. Callers persist the raw body so re-runs never pay for the same
// transcription twice.
func (c *Client) TranscribeFile(ctx context.Context, audioPath string) ([]byte, error) {
	if !c.HasKey() {
		return nil, services.Wrap(services.ErrConfiguration, "deepgram", "transcribe", "api key not configured", nil)
	}

	audio, err := os.Open(audioPath)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "deepgram", "transcribe", audioPath, err)
	}
	defer audio.Close()

	info, err := audio.Stat()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "deepgram", "transcribe", "stat audio", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(), audio)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "deepgram", "transcribe", "build request", err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", contentTypeFor(audioPath))

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "deepgram", "transcribe", audioPath, err)
		}
		return nil, services.Wrap(services.ErrTransient, "deepgram", "transcribe", audioPath, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "deepgram", "transcribe", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		detail := fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(string(body), 300))
		return nil, services.Wrap(services.ErrExternalTool, "deepgram", "transcribe", detail, nil)
	}
	return body, nil
}

func (c *Client) requestURL() string {
	params := url.Values{}
	params.Set("model", c.model)
	params.Set("language", c.language)
	params.Set("smart_format", "true")
	params.Set("punctuate", "true")
	params.Set("diarize", "true")
	params.Set("utterances", "true")
	params.Set("paragraphs", "true")
	return c.baseURL + "?" + params.Encode()
}

func contentTypeFor(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(lower, ".m4a"):
		return "audio/mp4"
	case strings.HasSuffix(lower, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(lower, ".webm"):
		return "audio/webm"
	case strings.HasSuffix(lower, ".opus"), strings.HasSuffix(lower, ".ogg"):
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
