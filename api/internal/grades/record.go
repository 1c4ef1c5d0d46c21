package grades

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Record is one course line of a result sheet.
// Grade points are not stored: they are always derived from Credits and Grade.
type Record struct {
	ID         string
	CourseCode string
	CourseName string
	Credits    float64
	Grade      string
}

// GradePoints returns Credits * GradeValue(Grade).
func (r Record) GradePoints() float64 {
	return PointsFor(Number(r.Credits), r.Grade)
}

type recordJSON struct {
	ID          string  `json:"id"`
	CourseCode  string  `json:"courseCode"`
	CourseName  string  `json:"courseName"`
	Credits     float64 `json:"credits"`
	GradePoints float64 `json:"gradePoints"`
	Grade       string  `json:"grade"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		ID:          r.ID,
		CourseCode:  r.CourseCode,
		CourseName:  r.CourseName,
		Credits:     Number(r.Credits),
		GradePoints: r.GradePoints(),
		Grade:       r.Grade,
	})
}

// UnmarshalJSON accepts loosely typed input: credits may be a number, a numeric
// string or garbage (0). A gradePoints field, if present, is ignored.
func (r *Record) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID         any `json:"id"`
		CourseCode any `json:"courseCode"`
		CourseName any `json:"courseName"`
		Credits    any `json:"credits"`
		Grade      any `json:"grade"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = Record{
		ID:         Text(raw.ID),
		CourseCode: Text(raw.CourseCode),
		CourseName: Text(raw.CourseName),
		Credits:    Number(raw.Credits),
		Grade:      Normalize(Text(raw.Grade)),
	}
	return nil
}

// PredictionRecord is a hypothetical future course with the grade the student aims for.
type PredictionRecord struct {
	ID          string  `json:"id"`
	CourseCode  string  `json:"courseCode"`
	CourseName  string  `json:"courseName"`
	Credits     float64 `json:"credits"`
	TargetGrade string  `json:"targetGrade"`
}

func (p *PredictionRecord) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID          any `json:"id"`
		CourseCode  any `json:"courseCode"`
		CourseName  any `json:"courseName"`
		Credits     any `json:"credits"`
		TargetGrade any `json:"targetGrade"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = PredictionRecord{
		ID:          Text(raw.ID),
		CourseCode:  Text(raw.CourseCode),
		CourseName:  Text(raw.CourseName),
		Credits:     Number(raw.Credits),
		TargetGrade: Normalize(Text(raw.TargetGrade)),
	}
	return nil
}

// NewID returns a fresh opaque record id.
func NewID() string {
	return uuid.NewString()
}

// Number coerces a loosely typed value into a finite float64.
// Anything that is not a number or a numeric string yields 0.
func Number(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		f, _ = n.Float64()
	case string:
		f, _ = strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Text coerces a loosely typed value into a trimmed string; nil and objects yield "".
func Text(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	default:
		return ""
	}
}
