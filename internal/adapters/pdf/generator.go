// Package pdf renders the current reports view as a one-page PDF: a header
// bar, the submitted employee and working time, and a table with the four
// report fields.
package pdf

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/csg33k/workreports/internal/domain"
)

// Exporter satisfies ports.SnapshotExporter.
type Exporter struct{}

func (Exporter) Generate(s *domain.Snapshot, w io.Writer) error {
	return GeneratePDF(s, w)
}

// GeneratePDF writes a single-page PDF to w.
func GeneratePDF(s *domain.Snapshot, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.SetTitle("Reports", true)
	pdf.AddPage()
	drawReportPage(pdf, s)
	return pdf.Output(w)
}

func drawReportPage(pdf *fpdf.Fpdf, s *domain.Snapshot) {
	pageW, pageH := pdf.GetPageSize()
	marginL, marginT, marginR, marginB := pdf.GetMargins()
	contentW := pageW - marginL - marginR
	v := s.View
	// Core fonts are single-byte; everything user supplied goes through tr.
	// Runes outside cp1252 come out as '.'.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// ── Header bar ───────────────────────────────────────────────────────────
	pdf.SetFillColor(30, 30, 30)
	pdf.Rect(marginL, marginT, contentW, 10, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginL+2, marginT+1.5)
	pdf.CellFormat(contentW-4, 7, "REPORTS", "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	y := marginT + 13

	// ── Submitted report ─────────────────────────────────────────────────────
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(contentW, 5.5, "CREATE REPORT", "LRT", 1, "L", true, 0, "")
	y += 5.5

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(contentW, 6, "Employee: "+tr(v.Inputs.EmployeeAddress), "LR", 1, "L", false, 0, "")
	y += 6
	pdf.SetXY(marginL, y)
	pdf.CellFormat(contentW, 6, "Working time: "+tr(formatWorkingTime(v.Inputs.WorkingTime)), "LB", 1, "L", false, 0, "")
	y += 6 + 5

	// ── Read from contract ───────────────────────────────────────────────────
	labelW := contentW * 0.3
	valueW := contentW - labelW

	pdf.SetFillColor(30, 30, 30)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 8.5)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(labelW, 7, "Field", "1", 0, "L", true, 0, "")
	pdf.CellFormat(valueW, 7, "Value", "1", 1, "L", true, 0, "")
	y += 7
	pdf.SetTextColor(0, 0, 0)

	rows := []struct{ label, value string }{
		{"Employees", v.Employees},
		{"Day reports", v.DayReports},
		{"Good points", v.GoodPoints},
		{"Bad points", v.BadPoints},
	}
	const lineH = 6.5
	pdf.SetFont("Courier", "", 8.5)
	_, fontSize := pdf.GetFontSize()
	maxChars := int((valueW - 2*pdf.GetCellMargin()) / (courierAdvance * fontSize))
	for i, r := range rows {
		if i%2 == 0 {
			pdf.SetFillColor(250, 250, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		// The employees list can wrap; size the row to its value.
		lines := wrapFixed(tr(r.value), maxChars)
		rowH := lineH * float64(len(lines))

		pdf.SetFont("Helvetica", "B", 8.5)
		pdf.SetXY(marginL, y)
		pdf.CellFormat(labelW, rowH, r.label, "1", 0, "L", true, 0, "")
		pdf.Rect(marginL+labelW, y, valueW, rowH, "FD")
		pdf.SetFont("Courier", "", 8.5)
		for j, line := range lines {
			pdf.SetXY(marginL+labelW, y+float64(j)*lineH)
			pdf.CellFormat(valueW, lineH, line, "", 0, "L", false, 0, "")
		}
		y += rowH
	}

	// ── Footer ─────────────────────────────────────────────────────────────────
	pdf.SetXY(marginL, pageH-marginB-6)
	pdf.SetFont("Helvetica", "I", 7.5)
	pdf.SetTextColor(130, 130, 130)
	pdf.CellFormat(contentW/2, 5, "Generated by Work Reports", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, s.GeneratedAt.UTC().Format(time.RFC1123), "", 0, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// courierAdvance is the Courier glyph width as a fraction of the font size.
const courierAdvance = 0.6

// wrapFixed breaks s into lines of at most n bytes, preferring spaces.
// s must already be single-byte encoded. It always returns at least one line.
func wrapFixed(s string, n int) []string {
	if n < 1 {
		n = 1
	}
	var lines []string
	cur := ""
	for _, word := range strings.Fields(s) {
		for len(word) > n {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			lines = append(lines, word[:n])
			word = word[n:]
		}
		switch {
		case cur == "":
			cur = word
		case len(cur)+1+len(word) <= n:
			cur += " " + word
		default:
			lines = append(lines, cur)
			cur = word
		}
	}
	if cur != "" || len(lines) == 0 {
		lines = append(lines, cur)
	}
	return lines
}

// formatWorkingTime appends the UTC date to a unix timestamp. Anything that
// is not a timestamp is shown as typed.
func formatWorkingTime(raw string) string {
	unix, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return raw
	}
	return raw + " (" + time.Unix(unix, 0).UTC().Format("2006-01-02 15:04:05 MST") + ")"
}
