// Package gateway talks to an OpenAI-compatible chat-completions endpoint that
// accepts image_url parts.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sgpa-scan/api/internal/extract"
)

const (
	DefaultURL   = "https://ai.gateway.lovable.dev/v1/chat/completions"
	DefaultModel = "google/gemini-2.5-flash"
)

type Backend struct {
	APIKey string
	Model  string
	URL    string
	name   string
	httpc  *http.Client
}

func New(key, model, url string, ordinal int) *Backend {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if strings.TrimSpace(url) == "" {
		url = DefaultURL
	}
	return &Backend{
		APIKey: strings.TrimSpace(key),
		Model:  strings.TrimSpace(model),
		URL:    strings.TrimSpace(url),
		name:   fmt.Sprintf("gateway#%d", ordinal),
		httpc:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Backends builds one candidate per key against the same endpoint.
func Backends(keys []string, model, url string) []extract.Backend {
	out := make([]extract.Backend, 0, len(keys))
	for i, k := range keys {
		out = append(out, New(k, model, url, i+1))
	}
	return out
}

func (b *Backend) Name() string     { return b.name }
func (b *Backend) GetModel() string { return b.Model }

func (b *Backend) Extract(ctx context.Context, instruction string, img extract.Image) (string, error) {
	if b.APIKey == "" {
		return "", fmt.Errorf("%w: %s: api key is empty", extract.ErrTransport, b.name)
	}
	body := map[string]any{
		"model": b.Model,
		"messages": []any{
			map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "text", "text": instruction},
					map[string]any{"type": "image_url", "image_url": map[string]any{"url": img.DataURL()}},
				},
			},
		},
	}
	payload, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", extract.ErrTransport, b.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.APIKey)

	resp, err := b.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", extract.ErrTransport, b.name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: %s: status 429", extract.ErrRateLimited, b.name)
	case resp.StatusCode == http.StatusPaymentRequired:
		return "", fmt.Errorf("%w: %s: payment required", extract.ErrTransport, b.name)
	case resp.StatusCode != http.StatusOK:
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: %s: status %d: %s", extract.ErrTransport, b.name, resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("%w: %s: decode: %v", extract.ErrTransport, b.name, err)
	}
	if len(raw.Choices) == 0 {
		return "", nil
	}
	return raw.Choices[0].Message.Content, nil
}
