package telegram

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"sgpa-scan/api/internal/grades"
	"sgpa-scan/api/internal/predict"
)

const emptySheetText = "No courses yet. Send a photo of your result sheet or /add one."

func cmdShow(sh *grades.Sheet) string {
	if sh.Len() == 0 {
		return emptySheetText
	}
	return formatSheet(sh.Records(), sh.Aggregate())
}

// cmdAdd handles "/add [credits] [grade] [course name]", every part optional.
func cmdAdd(sh *grades.Sheet, args string) string {
	f := strings.Fields(args)
	if len(f) == 0 {
		rec := sh.AddDefault()
		return fmt.Sprintf("Added %s.\n\n%s", esc(cell(rec.CourseName, 80)), formatSheet(sh.Records(), sh.Aggregate()))
	}

	credits, err := parseCredits(f[0])
	if err != nil {
		return "Usage: /add <credits> <grade> <name>\n" + err.Error()
	}
	rec := grades.Record{Credits: credits}
	if len(f) > 1 {
		if !grades.Known(f[1]) {
			return unknownGradeText(f[1])
		}
		rec.Grade = f[1]
	}
	if len(f) > 2 {
		rec.CourseName = strings.Join(f[2:], " ")
	}
	rec = sh.Add(rec)
	return fmt.Sprintf("Added %s.\n\n%s", esc(cell(rec.CourseName, 80)), formatSheet(sh.Records(), sh.Aggregate()))
}

// cmdSet handles "/set <n> <code|name|credits|grade> <value>".
func cmdSet(sh *grades.Sheet, args string) string {
	const usage = "Usage: /set <n> <code|name|credits|grade> <value>"
	f := strings.Fields(args)
	if len(f) < 3 {
		return usage
	}
	rec, err := recordAt(sh, f[0])
	if err != nil {
		return err.Error()
	}
	value := strings.Join(f[2:], " ")

	var p grades.Patch
	switch strings.ToLower(f[1]) {
	case "code":
		p.CourseCode = &value
	case "name":
		p.CourseName = &value
	case "credits", "credit", "cr":
		c, err := parseCredits(value)
		if err != nil {
			return err.Error()
		}
		p.Credits = &c
	case "grade", "gr":
		if !grades.Known(value) {
			return unknownGradeText(value)
		}
		p.Grade = &value
	default:
		return usage
	}
	if _, err := sh.Update(rec.ID, p); err != nil {
		return err.Error()
	}
	return formatSheet(sh.Records(), sh.Aggregate())
}

// cmdDelete handles "/del <n>".
func cmdDelete(sh *grades.Sheet, args string) string {
	rec, err := recordAt(sh, strings.TrimSpace(args))
	if err != nil {
		return err.Error()
	}
	if err := sh.Delete(rec.ID); err != nil {
		return err.Error()
	}
	if sh.Len() == 0 {
		return fmt.Sprintf("Removed %s.\n\n%s", esc(cell(rec.CourseName, 80)), emptySheetText)
	}
	return fmt.Sprintf("Removed %s.\n\n%s", esc(cell(rec.CourseName, 80)), formatSheet(sh.Records(), sh.Aggregate()))
}

func cmdClear(sh *grades.Sheet) string {
	sh.Clear()
	return "All courses removed."
}

// cmdPredict handles "/predict <target> <credits>:<grade> ...", projecting the
// current table plus the planned courses.
func cmdPredict(sh *grades.Sheet, args string) string {
	const usage = "Usage: /predict <target SGPA> <credits>:<grade> ...\nExample: /predict 8.5 4:O 3:A+"
	f := strings.Fields(args)
	if len(f) == 0 {
		return usage
	}
	target, err := strconv.ParseFloat(f[0], 64)
	if err != nil || math.IsNaN(target) || target <= 0 || target > grades.MaxGradeValue {
		return "Target SGPA must be a number between 0 and 10.\n" + usage
	}

	future := make([]grades.PredictionRecord, 0, len(f)-1)
	for i, planned := range f[1:] {
		cr, gr, ok := strings.Cut(planned, ":")
		if !ok {
			return fmt.Sprintf("Bad planned course \"%s\".\n%s", esc(planned), usage)
		}
		credits, err := parseCredits(cr)
		if err != nil {
			return err.Error()
		}
		if !grades.Known(gr) {
			return unknownGradeText(gr)
		}
		future = append(future, grades.PredictionRecord{
			ID:          grades.NewID(),
			CourseName:  fmt.Sprintf("Future Course %d", i+1),
			Credits:     credits,
			TargetGrade: grades.Normalize(gr),
		})
	}
	return formatPrediction(predict.Predict(sh.Records(), future, target))
}

// recordAt resolves a 1-based position typed by the user.
func recordAt(sh *grades.Sheet, arg string) (grades.Record, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return grades.Record{}, fmt.Errorf("\"%s\" is not a course number", esc(arg))
	}
	rec, ok := sh.At(n - 1)
	if !ok {
		return grades.Record{}, fmt.Errorf("no course %d; the table has %d", n, sh.Len())
	}
	return rec, nil
}

func parseCredits(s string) (float64, error) {
	c, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
		return 0, fmt.Errorf("credits must be a non-negative number, got \"%s\"", esc(s))
	}
	return c, nil
}

func unknownGradeText(g string) string {
	return fmt.Sprintf("Unknown grade \"%s\". Use one of: %s", esc(g), strings.Join(grades.Options(), ", "))
}
