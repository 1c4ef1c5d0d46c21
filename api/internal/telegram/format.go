package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"sgpa-scan/api/internal/grades"
	"sgpa-scan/api/internal/predict"
	"sgpa-scan/api/internal/scan"
)

const nameWidth = 22

// sheetRowBudget caps the table rows so a reply with its prefix, totals and
// trailing hint stays under maxMessageLen.
const sheetRowBudget = maxMessageLen - 900

// formatSheet renders the table as a Markdown code block followed by the totals.
// Rows past the budget are summarised in one line; the fence and totals are always kept.
func formatSheet(records []grades.Record, agg grades.AggregateResult) string {
	var b strings.Builder
	b.WriteString("```\n")
	fmt.Fprintf(&b, "%-3s %-9s %-*s %4s %3s %5s\n", "#", "Code", nameWidth, "Course", "Cr", "Gr", "Pts")
	shown := 0
	for i, r := range records {
		row := fmt.Sprintf("%-3d %-9s %-*s %4s %3s %5s\n",
			i+1, cell(r.CourseCode, 9), nameWidth, cell(r.CourseName, nameWidth),
			num(r.Credits), cell(r.Grade, 3), num(r.GradePoints()))
		if b.Len()+len(row) > sheetRowBudget {
			break
		}
		b.WriteString(row)
		shown++
	}
	if rest := len(records) - shown; rest > 0 {
		fmt.Fprintf(&b, "… %d more not shown\n", rest)
	}
	b.WriteString("```\n")
	fmt.Fprintf(&b, "Credits: %s  Grade points: %s\n", num(agg.TotalCredits), num(agg.TotalGradePoints))
	rm := grades.RemarkFor(agg.SGPA)
	fmt.Fprintf(&b, "*SGPA: %.2f* (%s)", agg.SGPA, rm.Text)
	return b.String()
}

func formatPrediction(res predict.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current: %s credits, %s points\n", num(res.CurrentCredits), num(res.CurrentPoints))
	fmt.Fprintf(&b, "Planned: %s credits, %s points\n", num(res.FutureCredits), num(res.FuturePoints))
	fmt.Fprintf(&b, "*Predicted SGPA: %.2f* (target %s)\n", res.Rounded(), num(res.TargetSGPA))
	if res.MeetsTarget() {
		b.WriteString("✅ The planned grades reach the target.")
		return b.String()
	}
	fmt.Fprintf(&b, "Points needed from planned courses: %s\n", num(grades.Round2(res.PointsNeeded)))
	if res.Achievable {
		b.WriteString("⚠️ Not reached with these grades, but reachable with better ones.")
	} else {
		b.WriteString("❌ Not reachable even with top grades in every planned course.")
	}
	return b.String()
}

func formatScale() string {
	var b strings.Builder
	b.WriteString("```\n")
	for _, s := range grades.Scale {
		fmt.Fprintf(&b, "%-3s %s\n", s.Grade, num(s.Value))
	}
	b.WriteString("```")
	return b.String()
}

func progressText(st scan.Stage) string {
	switch st {
	case scan.StageEncoding:
		return fmt.Sprintf("Preparing image… %d%%", st.Percent)
	case scan.StageSubmitting:
		return fmt.Sprintf("Reading the sheet… %d%%", st.Percent)
	case scan.StageParsing:
		return fmt.Sprintf("Collecting courses… %d%%", st.Percent)
	default:
		return fmt.Sprintf("Done %d%%", st.Percent)
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// cell fits s into w runes for the fixed-width table.
func cell(s string, w int) string {
	s = strings.ReplaceAll(s, "`", "'")
	if utf8.RuneCountInString(s) <= w {
		return s
	}
	r := []rune(s)
	return string(r[:w-1]) + "…"
}

// esc escapes user text for legacy Markdown.
func esc(s string) string {
	s = strings.ReplaceAll(s, "`", "'")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "[", "\\[")
	return s
}
