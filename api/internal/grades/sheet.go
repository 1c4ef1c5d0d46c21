package grades

import (
	"errors"
	"strings"
)

var ErrRecordNotFound = errors.New("record not found")

// Defaults for a manually added course.
const (
	DefaultCourseName = "New Course"
	DefaultCredits    = 3.0
	DefaultGrade      = "A"
)

// Sheet is the editable record collection of one session.
// It has a single owner and is not safe for concurrent use.
type Sheet struct {
	records []Record
}

func NewSheet() *Sheet {
	return &Sheet{}
}

// Load replaces the collection with one extracted batch.
func (s *Sheet) Load(records []Record) {
	s.records = make([]Record, 0, len(records))
	for _, r := range records {
		s.records = append(s.records, prepare(r))
	}
}

// Add appends a record, filling in an id and defaults where missing.
func (s *Sheet) Add(r Record) Record {
	if strings.TrimSpace(r.CourseName) == "" {
		r.CourseName = DefaultCourseName
	}
	if strings.TrimSpace(r.Grade) == "" {
		r.Grade = DefaultGrade
	}
	r = prepare(r)
	s.records = append(s.records, r)
	return r
}

// AddDefault appends a blank course with the default credits and grade.
func (s *Sheet) AddDefault() Record {
	return s.Add(Record{Credits: DefaultCredits})
}

// Patch carries the fields of an edit; nil fields are left unchanged.
type Patch struct {
	CourseCode *string
	CourseName *string
	Credits    *float64
	Grade      *string
}

// Update applies p to the record with the given id.
func (s *Sheet) Update(id string, p Patch) (Record, error) {
	i := s.index(id)
	if i < 0 {
		return Record{}, ErrRecordNotFound
	}
	r := s.records[i]
	if p.CourseCode != nil {
		r.CourseCode = strings.TrimSpace(*p.CourseCode)
	}
	if p.CourseName != nil {
		r.CourseName = strings.TrimSpace(*p.CourseName)
	}
	if p.Credits != nil {
		r.Credits = Number(*p.Credits)
	}
	if p.Grade != nil {
		r.Grade = Normalize(*p.Grade)
	}
	s.records[i] = r
	return r, nil
}

// Delete removes the record with the given id.
func (s *Sheet) Delete(id string) error {
	i := s.index(id)
	if i < 0 {
		return ErrRecordNotFound
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	return nil
}

// Clear empties the collection.
func (s *Sheet) Clear() { s.records = nil }

// Records returns a copy of the collection in insertion order.
func (s *Sheet) Records() []Record {
	return append([]Record(nil), s.records...)
}

// At returns the record at a 0-based position.
func (s *Sheet) At(i int) (Record, bool) {
	if i < 0 || i >= len(s.records) {
		return Record{}, false
	}
	return s.records[i], true
}

func (s *Sheet) Len() int { return len(s.records) }

func (s *Sheet) Aggregate() AggregateResult {
	return Aggregate(s.records)
}

func (s *Sheet) index(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func prepare(r Record) Record {
	if r.ID == "" {
		r.ID = NewID()
	}
	r.Grade = Normalize(r.Grade)
	r.Credits = Number(r.Credits)
	return r
}
