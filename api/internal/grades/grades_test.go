package grades

import (
	"encoding/json"
	"math"
	"testing"
)

func TestGradeValue_CaseInsensitive(t *testing.T) {
	cases := map[string]float64{
		"O": 10, "o": 10, "A+": 9, "a+": 9, " a ": 8, "B+": 7, "b": 6,
		"C": 5, "s": 4, "P": 4, "f": 0,
	}
	for in, want := range cases {
		if got := GradeValue(in); got != want {
			t.Errorf("GradeValue(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestGradeValue_UnknownIsZero(t *testing.T) {
	for _, in := range []string{"", "D", "E", "A++", "AB", "10", "pass"} {
		if got := GradeValue(in); got != 0 {
			t.Errorf("GradeValue(%q) = %v, want 0", in, got)
		}
		if Known(in) {
			t.Errorf("Known(%q) = true", in)
		}
	}
}

func TestPointsFor(t *testing.T) {
	if got := PointsFor(4, "O"); got != 40 {
		t.Fatalf("PointsFor(4, O) = %v", got)
	}
	if got := PointsFor(3, "a+"); got != 27 {
		t.Fatalf("PointsFor(3, a+) = %v", got)
	}
	if got := PointsFor(0, "O"); got != 0 {
		t.Fatalf("PointsFor(0, O) = %v", got)
	}
	if got := PointsFor(2.5, "B"); got != 15 {
		t.Fatalf("PointsFor(2.5, B) = %v", got)
	}
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil)
	if got != (AggregateResult{}) {
		t.Fatalf("Aggregate(nil) = %+v", got)
	}
	if got := Aggregate([]Record{}); got != (AggregateResult{}) {
		t.Fatalf("Aggregate([]) = %+v", got)
	}
}

func TestAggregate_RoundsToTwoDecimals(t *testing.T) {
	got := Aggregate([]Record{
		{Credits: 3, Grade: "A"},
		{Credits: 2, Grade: "B"},
	})
	if got.TotalCredits != 5 || got.TotalGradePoints != 36 {
		t.Fatalf("totals = %+v", got)
	}
	if got.SGPA != 7.20 {
		t.Fatalf("sgpa = %v, want 7.20", got.SGPA)
	}
}

func TestAggregate_RoundHalfUp(t *testing.T) {
	// 8 * 1 + 9 * 7 = 71 over 8 credits = 8.875
	got := Aggregate([]Record{{Credits: 1, Grade: "A"}, {Credits: 7, Grade: "A+"}})
	if got.SGPA != 8.88 {
		t.Fatalf("sgpa = %v, want 8.88", got.SGPA)
	}
	// 20/3 = 6.666...
	got = Aggregate([]Record{{Credits: 2, Grade: "O"}, {Credits: 1, Grade: "F"}})
	if got.SGPA != 6.67 {
		t.Fatalf("sgpa = %v, want 6.67", got.SGPA)
	}
	// 23/40 = 0.575 and 41/40 = 1.025 sit just below the boundary in binary
	if got := SGPA(23, 40); got != 0.58 {
		t.Fatalf("SGPA(23, 40) = %v, want 0.58", got)
	}
	if got := SGPA(41, 40); got != 1.03 {
		t.Fatalf("SGPA(41, 40) = %v, want 1.03", got)
	}
}

func TestSGPA_MatchesExactHalfUp(t *testing.T) {
	for c := int64(1); c <= 60; c++ {
		for p := int64(0); p <= 10*c; p++ {
			// exact half-up of p/c to hundredths: floor((200p + c) / 2c)
			want := float64((200*p+c)/(2*c)) / 100
			if got := SGPA(float64(p), float64(c)); got != want {
				t.Fatalf("SGPA(%d, %d) = %v, want %v", p, c, got, want)
			}
		}
	}
}

func TestRound2_Edges(t *testing.T) {
	cases := map[float64]float64{0: 0, 7.2: 7.2, 9.995: 10, 1e-7: 0, -0.575: -0.58}
	for in, want := range cases {
		if got := Round2(in); got != want {
			t.Fatalf("Round2(%v) = %v, want %v", in, got, want)
		}
	}
	if !math.IsNaN(Round2(math.NaN())) {
		t.Fatalf("NaN must pass through")
	}
}

func TestAggregate_NonFiniteCreditsCountAsZero(t *testing.T) {
	got := Aggregate([]Record{
		{Credits: math.NaN(), Grade: "O"},
		{Credits: math.Inf(1), Grade: "O"},
		{Credits: 4, Grade: "O"},
	})
	if got.TotalCredits != 4 || got.TotalGradePoints != 40 || got.SGPA != 10 {
		t.Fatalf("got %+v", got)
	}
}

func TestAggregate_OutOfRangeCreditsAreSummed(t *testing.T) {
	got := Aggregate([]Record{{Credits: 12, Grade: "B"}, {Credits: 0, Grade: "O"}})
	if got.TotalCredits != 12 || got.TotalGradePoints != 72 || got.SGPA != 6 {
		t.Fatalf("got %+v", got)
	}
}

func TestAggregate_UnknownGradeContributesCreditsOnly(t *testing.T) {
	got := Aggregate([]Record{{Credits: 4, Grade: "O"}, {Credits: 4, Grade: "X"}})
	if got.TotalCredits != 8 || got.TotalGradePoints != 40 || got.SGPA != 5 {
		t.Fatalf("got %+v", got)
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	a := []Record{{Credits: 3, Grade: "A"}, {Credits: 4, Grade: "B+"}, {Credits: 1, Grade: "S"}}
	b := []Record{a[2], a[0], a[1]}
	if Aggregate(a) != Aggregate(b) {
		t.Fatalf("aggregate depends on order: %+v vs %+v", Aggregate(a), Aggregate(b))
	}
}

func TestRecord_UnmarshalIgnoresGradePoints(t *testing.T) {
	var r Record
	raw := `{"id":"x1","courseCode":"CS101","courseName":"Algo","credits":"4","gradePoints":7,"grade":"o"}`
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Credits != 4 || r.Grade != "O" || r.ID != "x1" {
		t.Fatalf("unexpected record: %+v", r)
	}
	if r.GradePoints() != 40 {
		t.Fatalf("gradePoints = %v, want 40", r.GradePoints())
	}
}

func TestRecord_UnmarshalGarbageCredits(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"credits":"four","grade":"A"}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Credits != 0 || r.GradePoints() != 0 {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestRecord_MarshalIncludesDerivedPoints(t *testing.T) {
	b, err := json.Marshal(Record{ID: "1", CourseName: "Maths", Credits: 3, Grade: "B+"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["gradePoints"] != float64(21) {
		t.Fatalf("gradePoints = %v", m["gradePoints"])
	}
}

func TestNumber(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{float64(3), 3},
		{"4.5", 4.5},
		{" 2 ", 2},
		{"abc", 0},
		{nil, 0},
		{true, 0},
		{map[string]any{}, 0},
		{json.Number("7"), 7},
	}
	for _, c := range cases {
		if got := Number(c.in); got != c.want {
			t.Errorf("Number(%#v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRemarkFor(t *testing.T) {
	cases := map[float64]string{
		9.5: "Outstanding!", 9: "Outstanding!", 8.2: "Excellent!", 7: "Very Good!",
		6.5: "Good", 5: "Average", 4: "Pass", 3.99: "Needs Improvement", 0: "Needs Improvement",
	}
	for sgpa, want := range cases {
		if got := RemarkFor(sgpa).Text; got != want {
			t.Errorf("RemarkFor(%v) = %q, want %q", sgpa, got, want)
		}
	}
	if p := RemarkFor(7.2).Percentage; math.Abs(p-72) > 1e-9 {
		t.Fatalf("percentage = %v", p)
	}
}

func TestOptions_ScaleOrder(t *testing.T) {
	want := []string{"O", "A+", "A", "B+", "B", "C", "S", "P", "F"}
	got := Options()
	if len(got) != len(want) {
		t.Fatalf("options = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("options = %v", got)
		}
	}
}
