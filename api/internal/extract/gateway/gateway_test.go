package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sgpa-scan/api/internal/extract"
)

var img = extract.NewImage([]byte{0xFF, 0xD8, 0xFF}, "image/jpeg")

func TestExtract_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer k1" {
			t.Errorf("auth = %q", r.Header.Get("Authorization"))
		}
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Content []map[string]any `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body.Model != "m1" || len(body.Messages) != 1 || len(body.Messages[0].Content) != 2 {
			t.Errorf("unexpected body: %+v", body)
		} else {
			url, _ := body.Messages[0].Content[1]["image_url"].(map[string]any)["url"].(string)
			if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
				t.Errorf("image url = %q", url)
			}
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"` + "```json\\n{}\\n```" + `"}}]}`))
	}))
	defer srv.Close()

	got, err := New("k1", "m1", srv.URL, 1).Extract(context.Background(), extract.Instruction, img)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "```json\n{}\n```" {
		t.Fatalf("content = %q", got)
	}
}

func TestExtract_StatusClassification(t *testing.T) {
	cases := []struct {
		code      int
		rateLimit bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusPaymentRequired, false},
		{http.StatusInternalServerError, false},
		{http.StatusUnauthorized, false},
	}
	for _, c := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", c.code)
		}))
		_, err := New("k", "", srv.URL, 1).Extract(context.Background(), extract.Instruction, img)
		srv.Close()
		if c.rateLimit != errors.Is(err, extract.ErrRateLimited) {
			t.Fatalf("status %d: err = %v", c.code, err)
		}
		if !c.rateLimit && !errors.Is(err, extract.ErrTransport) {
			t.Fatalf("status %d: err = %v", c.code, err)
		}
	}
}

func TestExtract_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()
	got, err := New("k", "", srv.URL, 1).Extract(context.Background(), extract.Instruction, img)
	if err != nil || got != "" {
		t.Fatalf("got %q err %v", got, err)
	}
}

func TestExtract_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	_, err := New("k", "", url, 1).Extract(context.Background(), extract.Instruction, img)
	if !errors.Is(err, extract.ErrTransport) {
		t.Fatalf("err = %v", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	b := New("k", "", "", 2)
	if b.URL != DefaultURL || b.Model != DefaultModel || b.Name() != "gateway#2" {
		t.Fatalf("unexpected: %+v", b)
	}
}
