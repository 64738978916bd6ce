// Package report renders the grading report as a styled two-sheet
// workbook: a detailed per-question breakdown and a condensed
// per-submission summary.
package report

import (
	"fmt"

	"github.com/pavelanni/grader/internal/model"

	"github.com/tealeg/xlsx/v2"
)

const maxColWidth = 50

var (
	headerFill = "FFFFD966"
	greenFill  = "FFC6EFCE"
	yellowFill = "FFFFF2CC"
	redFill    = "FFF8CBAD"
	grayFill   = "FFD9D9D9"
)

var detailHeaders = []string{
	"filename", "question", "correct_answer", "student_answer",
	"confidence", "reason", "points_awarded", "total_points",
}

var summaryHeaders = []string{
	"filename", "low_confidence_flag", "low_confidence_answers",
	"wrong_answers", "reason_summary", "total_points",
}

// Write renders both report projections into an xlsx workbook at path.
func Write(path string, rep model.Report) error {
	f := xlsx.NewFile()

	detail, err := f.AddSheet("Detailed Breakdown")
	if err != nil {
		return fmt.Errorf("add detail sheet: %w", err)
	}
	summary, err := f.AddSheet("Condensed Summary")
	if err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}

	writeHeader(detail, detailHeaders)
	for _, row := range rep.Detail {
		writeDetailRow(detail, row)
	}

	writeHeader(summary, summaryHeaders)
	for _, row := range rep.Summary {
		writeSummaryRow(summary, row)
	}

	autosize(detail)
	autosize(summary)

	if err := f.Save(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func writeHeader(sheet *xlsx.Sheet, headers []string) {
	style := cellStyle(headerFill, true)
	style.Alignment = xlsx.Alignment{Horizontal: "center", Vertical: "center"}
	style.ApplyAlignment = true

	row := sheet.AddRow()
	for _, h := range headers {
		cell := row.AddCell()
		cell.SetString(h)
		cell.SetStyle(style)
	}
}

func writeDetailRow(sheet *xlsx.Sheet, dr model.DetailRow) {
	row := sheet.AddRow()
	style := cellStyle(classFill(dr.Class), dr.Class == model.RowTotal)

	if dr.Class == model.RowTotal {
		for _, v := range []string{dr.Filename, dr.Question, "", "", "", "", ""} {
			cell := row.AddCell()
			cell.SetString(v)
			cell.SetStyle(style)
		}
		total := row.AddCell()
		total.SetFloat(dr.Total)
		total.SetStyle(style)
		return
	}

	for _, v := range []string{dr.Filename, dr.Question, dr.CorrectAnswer, dr.StudentAnswer, dr.Confidence, dr.Reason} {
		cell := row.AddCell()
		cell.SetString(v)
		cell.SetStyle(style)
	}
	awarded := row.AddCell()
	awarded.SetFloat(dr.Awarded)
	awarded.SetStyle(style)
	last := row.AddCell()
	last.SetString("")
	last.SetStyle(style)
}

func writeSummaryRow(sheet *xlsx.Sheet, sr model.SummaryRow) {
	row := sheet.AddRow()
	style := cellStyle("", false)

	indicator, indicatorColor := "\U0001F60A", greenFill // happy face
	if sr.LowConfidence {
		indicator, indicatorColor = "\U0001F61F", redFill // worried face
	}

	name := row.AddCell()
	name.SetString(sr.Filename)
	name.SetStyle(style)

	flag := row.AddCell()
	flag.SetString(indicator)
	flag.SetStyle(cellStyle(indicatorColor, false))

	for _, v := range []string{sr.LowConfidenceAnswers, sr.WrongAnswers, sr.ReasonSummary} {
		cell := row.AddCell()
		cell.SetString(v)
		cell.SetStyle(style)
	}
	total := row.AddCell()
	total.SetFloat(sr.Total)
	total.SetStyle(style)
}

func classFill(class model.RowClass) string {
	switch class {
	case model.RowFull:
		return greenFill
	case model.RowPartial:
		return yellowFill
	case model.RowWrong:
		return redFill
	default:
		return grayFill
	}
}

func cellStyle(fill string, bold bool) *xlsx.Style {
	style := xlsx.NewStyle()
	style.Font = *xlsx.NewFont(11, "Calibri")
	style.Font.Bold = bold
	style.ApplyFont = true
	style.Border = *xlsx.NewBorder("thin", "thin", "thin", "thin")
	style.ApplyBorder = true
	style.Alignment = xlsx.Alignment{Vertical: "top", WrapText: true}
	style.ApplyAlignment = true
	if fill != "" {
		style.Fill = *xlsx.NewFill("solid", fill, fill)
		style.ApplyFill = true
	}
	return style
}

// autosize widens each column to its longest value, capped at maxColWidth.
func autosize(sheet *xlsx.Sheet) {
	widths := make(map[int]int)
	for _, row := range sheet.Rows {
		for i, cell := range row.Cells {
			if n := len(cell.String()); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for col, w := range widths {
		if w+2 > maxColWidth {
			w = maxColWidth - 2
		}
		sheet.SetColWidth(col, col, float64(w+2))
	}
}
