// Package predict projects a combined SGPA from completed courses plus planned ones.
package predict

import "sgpa-scan/api/internal/grades"

// Result is a projection for one target.
//
// Achievable is a ceiling test: it says whether the planned credit load could reach
// the target if every planned course got the top grade. It does not look at the
// target grades actually entered; MeetsTarget answers that.
type Result struct {
	CurrentCredits float64 `json:"currentCredits"`
	CurrentPoints  float64 `json:"currentPoints"`
	FutureCredits  float64 `json:"futureCredits"`
	FuturePoints   float64 `json:"futurePoints"`
	TargetSGPA     float64 `json:"targetSGPA"`
	PredictedSGPA  float64 `json:"predictedSGPA"`
	PointsNeeded   float64 `json:"pointsNeeded"`
	Achievable     bool    `json:"achievable"`
}

// Predict combines existing records with planned ones. Inputs are not modified.
func Predict(existing []grades.Record, future []grades.PredictionRecord, targetSGPA float64) Result {
	cur := grades.Aggregate(existing)

	var futureCredits, futurePoints float64
	for _, f := range future {
		c := grades.Number(f.Credits)
		futureCredits += c
		futurePoints += grades.PointsFor(c, f.TargetGrade)
	}

	totalCredits := cur.TotalCredits + futureCredits
	var predicted float64
	if totalCredits > 0 {
		predicted = (cur.TotalGradePoints + futurePoints) / totalCredits
	}
	needed := targetSGPA*totalCredits - cur.TotalGradePoints

	return Result{
		CurrentCredits: cur.TotalCredits,
		CurrentPoints:  cur.TotalGradePoints,
		FutureCredits:  futureCredits,
		FuturePoints:   futurePoints,
		TargetSGPA:     targetSGPA,
		PredictedSGPA:  predicted,
		PointsNeeded:   needed,
		Achievable:     needed <= futureCredits*grades.MaxGradeValue,
	}
}

// MeetsTarget reports whether the planned grades already reach the target.
func (r Result) MeetsTarget() bool {
	return r.PredictedSGPA >= r.TargetSGPA
}

// Rounded returns the predicted SGPA rounded for display.
func (r Result) Rounded() float64 {
	return grades.Round2(r.PredictedSGPA)
}
