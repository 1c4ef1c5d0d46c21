package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"sgpa-scan/api/internal/extract"
)

const DefaultModel = "gemini-2.5-flash"

// Backend is one Gemini API key.
type Backend struct {
	APIKey string
	Model  string
	name   string
}

// New binds a key to a model; ordinal is the 1-based position used in logs instead of the key.
func New(apiKey, model string, ordinal int) *Backend {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &Backend{
		APIKey: strings.TrimSpace(apiKey),
		Model:  model,
		name:   fmt.Sprintf("gemini#%d", ordinal),
	}
}

// Backends builds one candidate per key, keeping key order.
func Backends(keys []string, model string) []extract.Backend {
	out := make([]extract.Backend, 0, len(keys))
	for i, k := range keys {
		out = append(out, New(k, model, i+1))
	}
	return out
}

func (b *Backend) Name() string     { return b.name }
func (b *Backend) GetModel() string { return b.Model }

func (b *Backend) Extract(ctx context.Context, instruction string, img extract.Image) (string, error) {
	if b.APIKey == "" {
		return "", fmt.Errorf("%w: %s: api key is empty", extract.ErrTransport, b.name)
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(b.APIKey))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", extract.ErrTransport, b.name, err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(b.Model)
	if m == nil {
		return "", fmt.Errorf("%w: %s: model is nil", extract.ErrTransport, b.name)
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0),
	}

	resp, err := m.GenerateContent(ctx,
		genai.Text(instruction),
		&genai.Blob{MIMEType: img.MIMEType, Data: img.Data},
	)
	if err != nil {
		return "", classify(b.name, err)
	}
	return firstText(resp), nil
}

// classify maps SDK errors onto the extract taxonomy: HTTP 429 or gRPC
// RESOURCE_EXHAUSTED is a rate limit, anything else a transport failure.
func classify(name string, err error) error {
	if isRateLimit(err) {
		return fmt.Errorf("%w: %s: %v", extract.ErrRateLimited, name, err)
	}
	return fmt.Errorf("%w: %s: %v", extract.ErrTransport, name, err)
}

func isRateLimit(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return true
	}
	return status.Code(err) == codes.ResourceExhausted
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
