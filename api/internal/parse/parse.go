// Package parse turns a free-form model answer into grade records.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"sgpa-scan/api/internal/grades"
)

// PlaceholderCourseName replaces a missing course name.
const PlaceholderCourseName = "Unknown Course"

// ErrMalformedResponse means no structured payload could be read from the answer.
var ErrMalformedResponse = errors.New("failed to extract grades, please try again")

// DeclinedError is the backend's own statement that it could not read the image.
type DeclinedError struct {
	Reason string
}

func (e *DeclinedError) Error() string { return e.Reason }

var (
	fencedBlock = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
	braceSpan   = regexp.MustCompile(`\{[\s\S]*\}`)
)

// strategy returns the JSON candidate it found in text, if any.
type strategy func(text string) (string, bool)

var strategies = []strategy{
	func(text string) (string, bool) {
		m := fencedBlock.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return strings.TrimSpace(m[1]), true
	},
	func(text string) (string, bool) {
		m := braceSpan.FindString(text)
		return m, m != ""
	},
}

// Target picks the part of text that should hold the JSON payload:
// a fenced block, else the first-to-last brace span, else the text itself.
func Target(text string) string {
	for _, s := range strategies {
		if t, ok := s(text); ok {
			return t
		}
	}
	return text
}

type payload struct {
	Error   any               `json:"error"`
	Courses []json.RawMessage `json:"courses"`
}

type course struct {
	CourseCode any `json:"courseCode"`
	CourseName any `json:"courseName"`
	Credits    any `json:"credits"`
	Grade      any `json:"grade"`
}

// Records parses a model answer. Every record gets a fresh id and its grade
// points are derived from credits and grade; ids and points in the source are ignored.
func Records(text string) ([]grades.Record, error) {
	var p payload
	if err := json.Unmarshal([]byte(Target(text)), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if reason, ok := declined(p.Error); ok {
		return nil, &DeclinedError{Reason: reason}
	}

	out := make([]grades.Record, 0, len(p.Courses))
	for _, raw := range p.Courses {
		var c course
		// an entry that is not an object becomes an all-default record
		_ = json.Unmarshal(raw, &c)
		out = append(out, toRecord(c))
	}
	return out, nil
}

func toRecord(c course) grades.Record {
	r := grades.Record{
		ID:         grades.NewID(),
		CourseCode: grades.Text(c.CourseCode),
		CourseName: grades.Text(c.CourseName),
		Credits:    grades.Number(c.Credits),
		Grade:      grades.Normalize(grades.Text(c.Grade)),
	}
	if r.CourseName == "" {
		r.CourseName = PlaceholderCourseName
	}
	if r.Grade == "" {
		r.Grade = grades.FailingGrade
	}
	if r.Credits < 0 {
		r.Credits = 0
	}
	return r
}

const declinedFallback = "could not extract grade data from image"

// declined reports a truthy error field and its message. null, false, 0 and ""
// are falsy; anything else declines.
func declined(v any) (string, bool) {
	switch e := v.(type) {
	case nil:
		return "", false
	case string:
		if strings.TrimSpace(e) == "" {
			return "", false
		}
		return e, true
	case bool:
		if !e {
			return "", false
		}
		return declinedFallback, true
	case float64:
		if e == 0 {
			return "", false
		}
		return declinedFallback, true
	case map[string]any:
		if msg, ok := e["message"].(string); ok && msg != "" {
			return msg, true
		}
	}
	b, _ := json.Marshal(v)
	return string(b), true
}
