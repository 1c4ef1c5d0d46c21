package grades

import (
	"math"
	"strconv"
	"strings"
)

// AggregateResult holds the totals of a record collection.
type AggregateResult struct {
	TotalCredits     float64 `json:"totalCredits"`
	TotalGradePoints float64 `json:"totalGradePoints"`
	SGPA             float64 `json:"sgpa"`
}

// Aggregate sums credits and grade points over records and derives the SGPA.
// Non-finite credits count as 0. The input slice is not modified.
func Aggregate(records []Record) AggregateResult {
	var res AggregateResult
	for _, r := range records {
		c := Number(r.Credits)
		res.TotalCredits += c
		res.TotalGradePoints += PointsFor(c, r.Grade)
	}
	res.SGPA = SGPA(res.TotalGradePoints, res.TotalCredits)
	return res
}

// SGPA returns points/credits rounded to 2 decimals, or 0 when credits is not positive.
func SGPA(points, credits float64) float64 {
	if credits <= 0 {
		return 0
	}
	return Round2(points / credits)
}

// Round2 rounds half up on the third decimal. It works on the shortest decimal
// form of x, so 0.575 (stored as 0.57499...) still rounds to 0.58.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	whole, frac, _ := strings.Cut(strconv.FormatFloat(math.Abs(x), 'f', -1, 64), ".")
	frac += "000"
	n, err := strconv.ParseInt(whole+frac[:2], 10, 64)
	if err != nil {
		return math.Floor(x*100+0.5) / 100
	}
	if frac[2] >= '5' {
		n++
	}
	r := float64(n) / 100
	if x < 0 {
		r = -r
	}
	return r
}
