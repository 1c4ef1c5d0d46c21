package grades

// Remark is a short verdict shown next to an SGPA.
type Remark struct {
	Text       string  `json:"text"`
	Percentage float64 `json:"percentage"`
}

// RemarkFor maps an SGPA to its verdict band.
func RemarkFor(sgpa float64) Remark {
	var text string
	switch {
	case sgpa >= 9:
		text = "Outstanding!"
	case sgpa >= 8:
		text = "Excellent!"
	case sgpa >= 7:
		text = "Very Good!"
	case sgpa >= 6:
		text = "Good"
	case sgpa >= 5:
		text = "Average"
	case sgpa >= 4:
		text = "Pass"
	default:
		text = "Needs Improvement"
	}
	return Remark{Text: text, Percentage: sgpa / MaxGradeValue * 100}
}
