package grades

import "strings"

// FailingGrade is used when a record arrives without any grade.
const FailingGrade = "F"

// MaxGradeValue is the top of the 10-point scale.
const MaxGradeValue = 10.0

// Step is one entry of the grade scale.
type Step struct {
	Grade string  `json:"grade"`
	Value float64 `json:"value"`
}

// Scale is the fixed 10-point scale, best grade first.
var Scale = []Step{
	{"O", 10},
	{"A+", 9},
	{"A", 8},
	{"B+", 7},
	{"B", 6},
	{"C", 5},
	{"S", 4},
	{"P", 4},
	{"F", 0},
}

var gradeValues = func() map[string]float64 {
	m := make(map[string]float64, len(Scale))
	for _, s := range Scale {
		m[s.Grade] = s.Value
	}
	return m
}()

// Options returns the grade tokens in scale order.
func Options() []string {
	out := make([]string, 0, len(Scale))
	for _, s := range Scale {
		out = append(out, s.Grade)
	}
	return out
}

// Normalize trims and uppercases a grade token.
func Normalize(grade string) string {
	return strings.ToUpper(strings.TrimSpace(grade))
}

// Known reports whether grade (in any case) is on the scale.
func Known(grade string) bool {
	_, ok := gradeValues[Normalize(grade)]
	return ok
}

// GradeValue returns the scale value of grade. Unknown tokens are worth 0.
func GradeValue(grade string) float64 {
	return gradeValues[Normalize(grade)]
}

// PointsFor returns credits * GradeValue(grade).
func PointsFor(credits float64, grade string) float64 {
	return credits * GradeValue(grade)
}
