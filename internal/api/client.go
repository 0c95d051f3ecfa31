// Package api is the HTTP client for the document, vocabulary, quiz and
// chat services the learning session depends on.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxErrorBody = 512

// Client talks to the learning services over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for the services rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Upload sends a document for text extraction and returns the text.
func (c *Client) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FieldFile, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("copy file: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	var resp UploadResponse
	if err := c.do(ctx, PathUpload, w.FormDataContentType(), &body, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Analyze returns the unfamiliar words of text.
func (c *Client) Analyze(ctx context.Context, text string) ([]UnfamiliarWord, error) {
	var resp AnalyzeResponse
	if err := c.postJSON(ctx, PathAnalyze, AnalyzeRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return resp.UnfamiliarWords, nil
}

// MarkKnown removes word from the learner's unfamiliar vocabulary.
func (c *Client) MarkKnown(ctx context.Context, word string) error {
	return c.postJSON(ctx, PathMarkKnown, MarkKnownRequest{Word: word}, nil)
}

// SetLevel stores the learner's vocabulary level.
func (c *Client) SetLevel(ctx context.Context, level Level) error {
	return c.postJSON(ctx, PathSetLevel, SetLevelRequest{Level: level}, nil)
}

// GenerateQuiz returns a question set for text.
func (c *Client) GenerateQuiz(ctx context.Context, text string) ([]QuizQuestion, error) {
	var resp GenerateQuizResponse
	if err := c.postJSON(ctx, PathGenerateQuiz, GenerateQuizRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return resp.Questions, nil
}

// UpdateStats records whether the learner answered correctly.
func (c *Client) UpdateStats(ctx context.Context, word string, isCorrect bool) error {
	return c.postJSON(ctx, PathUpdateStats, UpdateStatsRequest{Word: word, IsCorrect: isCorrect}, nil)
}

// ChatText sends a typed question about the document.
func (c *Client) ChatText(ctx context.Context, message, documentText string) (string, error) {
	var resp ChatTextResponse
	req := ChatTextRequest{Message: message, DocumentText: documentText}
	if err := c.postJSON(ctx, PathChatText, req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// ChatVoice sends a recorded question about the document.
func (c *Client) ChatVoice(ctx context.Context, audio []byte, documentText string) (VoiceReply, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="recording.wav"`, FieldAudio))
	h.Set("Content-Type", "audio/wav")
	part, err := w.CreatePart(h)
	if err != nil {
		return VoiceReply{}, fmt.Errorf("create audio part: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return VoiceReply{}, fmt.Errorf("write audio: %w", err)
	}
	if err := w.WriteField(FieldDocumentText, documentText); err != nil {
		return VoiceReply{}, fmt.Errorf("write document text: %w", err)
	}
	if err := w.Close(); err != nil {
		return VoiceReply{}, fmt.Errorf("close multipart: %w", err)
	}

	var reply VoiceReply
	if err := c.do(ctx, PathChatVoice, w.FormDataContentType(), &body, &reply); err != nil {
		return VoiceReply{}, err
	}
	return reply, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", path, err)
	}
	return c.do(ctx, path, "application/json", bytes.NewReader(payload), out)
}

// do posts body to path and decodes a JSON response into out when out is
// non-nil. Any non-2xx status is a *StatusError.
func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", path, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request done",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(excerpt)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", path, err)
	}
	return nil
}
