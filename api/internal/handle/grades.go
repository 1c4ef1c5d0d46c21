package handle

import (
	"net/http"

	"sgpa-scan/api/internal/extract"
	"sgpa-scan/api/internal/grades"
	"sgpa-scan/api/internal/predict"
	"sgpa-scan/api/internal/scan"
)

// --- EXTRACT -----------------------------------------------------------------

// extractReq accepts the MIME type as either "mime" or "mimeType".
type extractReq struct {
	Image    string `json:"image"`
	Mime     string `json:"mime"`
	MimeType string `json:"mimeType"`
}

func (r extractReq) mime() string {
	if r.Mime != "" {
		return r.Mime
	}
	return r.MimeType
}

type sheetResp struct {
	Courses []grades.Record `json:"courses"`
	grades.AggregateResult
	Remark  grades.Remark `json:"remark"`
	Backend string        `json:"backend,omitempty"`
	Cached  bool          `json:"cached"`
}

func (h *Handle) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractReq
	if !decodePOST(w, r, &req) {
		return
	}
	img, err := extract.DecodeImage(req.Image, req.mime())
	if err != nil {
		writeError(w, http.StatusBadRequest, scan.KindBadImage, err.Error())
		return
	}

	ctx, cancel := requestContext(r, h.extractTimeout)
	defer cancel()

	res, err := h.scanner.Run(ctx, img, nil)
	if err != nil {
		kind, msg := scan.Classify(err)
		h.log.Warn("extract request failed", "kind", kind, "error", err)
		writeError(w, statusFor(kind), kind, msg)
		return
	}
	writeJSON(w, http.StatusOK, sheetResp{
		Courses:         nonNil(res.Records),
		AggregateResult: res.Aggregate,
		Remark:          grades.RemarkFor(res.Aggregate.SGPA),
		Backend:         res.Backend,
		Cached:          res.Cached,
	})
}

func statusFor(kind string) int {
	switch kind {
	case scan.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case scan.KindDeclined:
		return http.StatusUnprocessableEntity
	case scan.KindMalformed:
		return http.StatusBadGateway
	case scan.KindBadImage:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// --- AGGREGATE ---------------------------------------------------------------

type aggregateReq struct {
	Courses []grades.Record `json:"courses"`
}

// Aggregate recomputes totals for an edited collection; gradePoints sent by the
// client are ignored and derived again.
func (h *Handle) Aggregate(w http.ResponseWriter, r *http.Request) {
	var req aggregateReq
	if !decodePOST(w, r, &req) {
		return
	}
	agg := grades.Aggregate(req.Courses)
	writeJSON(w, http.StatusOK, sheetResp{
		Courses:         nonNil(req.Courses),
		AggregateResult: agg,
		Remark:          grades.RemarkFor(agg.SGPA),
	})
}

// --- PREDICT -----------------------------------------------------------------

type predictReq struct {
	Existing   []grades.Record           `json:"existing"`
	Future     []grades.PredictionRecord `json:"future"`
	TargetSGPA *float64                  `json:"targetSGPA"`
}

type predictResp struct {
	predict.Result
	PredictedSGPARounded float64 `json:"predictedSGPARounded"`
	MeetsTarget          bool    `json:"meetsTarget"`
}

func (h *Handle) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictReq
	if !decodePOST(w, r, &req) {
		return
	}
	if req.TargetSGPA == nil {
		writeError(w, http.StatusBadRequest, "bad_request", "targetSGPA is required")
		return
	}
	res := predict.Predict(req.Existing, req.Future, *req.TargetSGPA)
	writeJSON(w, http.StatusOK, predictResp{
		Result:               res,
		PredictedSGPARounded: res.Rounded(),
		MeetsTarget:          res.MeetsTarget(),
	})
}

// --- SCALE -------------------------------------------------------------------

func (h *Handle) Scale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET only")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scale": grades.Scale})
}

func nonNil(rs []grades.Record) []grades.Record {
	if rs == nil {
		return []grades.Record{}
	}
	return rs
}
