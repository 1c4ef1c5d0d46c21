package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"sgpa-scan/api/internal/logger"
	"sgpa-scan/api/internal/scan"
)

const maxBodyBytes = 20 << 20

type Handle struct {
	scanner        *scan.Pipeline
	log            *logger.Logger
	extractTimeout time.Duration
}

func New(scanner *scan.Pipeline, log *logger.Logger, extractTimeout time.Duration) *Handle {
	if log == nil {
		log = logger.Nop()
	}
	if extractTimeout <= 0 {
		extractTimeout = 120 * time.Second
	}
	return &Handle{scanner: scanner, log: log, extractTimeout: extractTimeout}
}

// Register mounts every route on mux.
func (h *Handle) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.Healthz)
	mux.HandleFunc("/v1/grades/extract", h.Extract)
	mux.HandleFunc("/v1/grades/aggregate", h.Aggregate)
	mux.HandleFunc("/v1/grades/predict", h.Predict)
	mux.HandleFunc("/v1/grades/scale", h.Scale)
}

func (h *Handle) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

// decodePOST enforces POST and decodes a JSON body into v.
func decodePOST(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST only")
		return false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "bad json: "+err.Error())
		return false
	}
	return true
}

// requestContext applies X-Request-Timeout (seconds) or ?timeoutSec= over the default deadline.
func requestContext(r *http.Request, def time.Duration) (context.Context, context.CancelFunc) {
	deadline := def
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	return context.WithTimeout(r.Context(), deadline)
}
