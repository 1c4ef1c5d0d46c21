package handle

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sgpa-scan/api/internal/extract"
	"sgpa-scan/api/internal/scan"
)

type stubExtractor struct {
	text  string
	err   error
	calls int
	mime  string
}

func (s *stubExtractor) Extract(_ context.Context, img extract.Image) (extract.Result, error) {
	s.calls++
	s.mime = img.MIMEType
	return extract.Result{Text: s.text, Backend: "gemini#1"}, s.err
}

func newServer(ex scan.Extractor) *httptest.Server {
	mux := http.NewServeMux()
	New(scan.New(ex, nil, "test", nil), nil, 0).Register(mux)
	return httptest.NewServer(mux)
}

func post(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	b, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp, out
}

var imageB64 = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png bytes"))

func TestExtract_OK(t *testing.T) {
	ex := &stubExtractor{text: "```json\n{\"courses\":[{\"courseCode\":\"CS101\",\"courseName\":\"Algo\",\"credits\":4,\"gradePoints\":1,\"grade\":\"O\"}]}\n```"}
	srv := newServer(ex)
	defer srv.Close()

	resp, out := post(t, srv.URL+"/v1/grades/extract", map[string]any{"image": imageB64})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body=%v", resp.StatusCode, out)
	}
	if out["sgpa"] != float64(10) || out["totalCredits"] != float64(4) || out["totalGradePoints"] != float64(40) {
		t.Fatalf("body = %v", out)
	}
	courses := out["courses"].([]any)
	c := courses[0].(map[string]any)
	if c["gradePoints"] != float64(40) || c["id"] == "" {
		t.Fatalf("course = %v", c)
	}
	if out["remark"].(map[string]any)["text"] != "Outstanding!" {
		t.Fatalf("remark = %v", out["remark"])
	}
}

func TestExtract_ErrorMapping(t *testing.T) {
	cases := []struct {
		ex     *stubExtractor
		status int
		code   string
		msg    string
	}{
		{&stubExtractor{err: extract.ErrServiceUnavailable}, http.StatusServiceUnavailable, scan.KindServiceUnavailable, extract.ServiceUnavailableMessage},
		{&stubExtractor{text: `{"error":"blurry image"}`}, http.StatusUnprocessableEntity, scan.KindDeclined, "blurry image"},
		{&stubExtractor{text: "no table found"}, http.StatusBadGateway, scan.KindMalformed, ""},
	}
	for _, c := range cases {
		srv := newServer(c.ex)
		resp, out := post(t, srv.URL+"/v1/grades/extract", map[string]any{"image": imageB64})
		srv.Close()
		if resp.StatusCode != c.status || out["code"] != c.code {
			t.Fatalf("status=%d body=%v, want %d %s", resp.StatusCode, out, c.status, c.code)
		}
		if c.msg != "" && out["error"] != c.msg {
			t.Fatalf("message = %v", out["error"])
		}
	}
}

func TestExtract_BadImage(t *testing.T) {
	ex := &stubExtractor{}
	srv := newServer(ex)
	defer srv.Close()
	resp, _ := post(t, srv.URL+"/v1/grades/extract", map[string]any{"image": "%%%"})
	if resp.StatusCode != http.StatusBadRequest || ex.calls != 0 {
		t.Fatalf("status=%d calls=%d", resp.StatusCode, ex.calls)
	}
}

func TestExtract_POSTOnly(t *testing.T) {
	srv := newServer(&stubExtractor{})
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/v1/grades/extract")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestAggregate_RecomputesPoints(t *testing.T) {
	srv := newServer(&stubExtractor{})
	defer srv.Close()
	resp, out := post(t, srv.URL+"/v1/grades/aggregate", map[string]any{
		"courses": []map[string]any{
			{"id": "a", "credits": 3, "grade": "A", "gradePoints": 99},
			{"id": "b", "credits": "2", "grade": "b"},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if out["totalCredits"] != float64(5) || out["totalGradePoints"] != float64(36) || out["sgpa"] != 7.2 {
		t.Fatalf("body = %v", out)
	}
	first := out["courses"].([]any)[0].(map[string]any)
	if first["id"] != "a" || first["gradePoints"] != float64(24) {
		t.Fatalf("course = %v", first)
	}
}

func TestAggregate_Empty(t *testing.T) {
	srv := newServer(&stubExtractor{})
	defer srv.Close()
	_, out := post(t, srv.URL+"/v1/grades/aggregate", map[string]any{})
	if out["sgpa"] != float64(0) || out["totalCredits"] != float64(0) {
		t.Fatalf("body = %v", out)
	}
	if cs, ok := out["courses"].([]any); !ok || len(cs) != 0 {
		t.Fatalf("courses = %v", out["courses"])
	}
}

func TestPredict(t *testing.T) {
	srv := newServer(&stubExtractor{})
	defer srv.Close()
	resp, out := post(t, srv.URL+"/v1/grades/predict", map[string]any{
		"existing":   []map[string]any{{"credits": 10, "grade": "B"}},
		"future":     []map[string]any{{"courseName": "Future Course 1", "credits": 3, "targetGrade": "O"}},
		"targetSGPA": 8.0,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if out["predictedSGPARounded"] != 6.92 || out["pointsNeeded"] != float64(44) {
		t.Fatalf("body = %v", out)
	}
	if out["achievable"] != false || out["meetsTarget"] != false {
		t.Fatalf("body = %v", out)
	}
}

func TestPredict_RequiresTarget(t *testing.T) {
	srv := newServer(&stubExtractor{})
	defer srv.Close()
	resp, _ := post(t, srv.URL+"/v1/grades/predict", map[string]any{"existing": []any{}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestScale(t *testing.T) {
	srv := newServer(&stubExtractor{})
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/v1/grades/scale")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var out struct {
		Scale []struct {
			Grade string  `json:"grade"`
			Value float64 `json:"value"`
		} `json:"scale"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Scale) != 9 || out.Scale[0].Grade != "O" || out.Scale[0].Value != 10 {
		t.Fatalf("scale = %+v", out.Scale)
	}
}

func TestExtract_MIMEField(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("jpeg bytes"))
	for _, field := range []string{"mime", "mimeType"} {
		ex := &stubExtractor{text: `{"courses":[]}`}
		srv := newServer(ex)
		resp, _ := post(t, srv.URL+"/v1/grades/extract", map[string]any{"image": raw, field: "image/webp"})
		srv.Close()
		if resp.StatusCode != http.StatusOK || ex.mime != "image/webp" {
			t.Fatalf("%s: status=%d mime=%q", field, resp.StatusCode, ex.mime)
		}
	}
}
