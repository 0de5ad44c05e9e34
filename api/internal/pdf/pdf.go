// Package pdf renders a Report as a printable A4 document.
package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"problem-reporter/api/internal/pipeline/types"
)

const (
	ContentType = "application/pdf"

	title  = "REPORT PROFESSIONALE"
	footer = "Report generato automaticamente dal sistema Professional Problem Reporter"

	margin = 18.0
	lineH  = 5.5
)

// Section headings in render order.
const (
	HeadProblem    = "PROBLEMA IDENTIFICATO"
	HeadOperator   = "DESCRIZIONE DELL'OPERATORE"
	HeadApplied    = "SOLUZIONE APPLICATA"
	HeadSolutions  = "SOLUZIONI RACCOMANDATE"
	HeadPreventive = "RACCOMANDAZIONI PREVENTIVE"
	HeadSummary    = "RIEPILOGO GESTIONALE"
	HeadFiles      = "FILE ALLEGATI"
)

// Filename is the download name used for a report rendered at r.Timestamp.
func Filename(r *types.Report) string {
	return "report_" + strconv.FormatInt(r.Timestamp.UnixMilli(), 10) + ".pdf"
}

// Headings lists the sections Render will emit for r, in order. Empty sections are skipped.
func Headings(r *types.Report) []string {
	var out []string
	out = append(out, HeadProblem)
	if r.AudioTranscription != "" {
		out = append(out, HeadOperator)
	}
	if r.UserSolution != nil && *r.UserSolution != "" {
		out = append(out, HeadApplied)
	}
	if len(r.DetailedSolutions) > 0 {
		out = append(out, HeadSolutions)
	}
	if len(r.PreventiveRecommendations) > 0 {
		out = append(out, HeadPreventive)
	}
	if r.ManagementSummary != "" {
		out = append(out, HeadSummary)
	}
	if len(r.FilesAnalyzed) > 0 {
		out = append(out, HeadFiles)
	}
	return out
}

type writer struct {
	f  *fpdf.Fpdf
	tr func(string) string
}

// Render returns the PDF bytes for r.
func Render(r *types.Report) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("pdf: nil report")
	}
	f := fpdf.New("P", "mm", "A4", "")
	f.SetMargins(margin, margin, margin)
	f.SetAutoPageBreak(true, margin)
	w := &writer{f: f, tr: f.UnicodeTranslatorFromDescriptor("")}

	f.SetFooterFunc(func() {
		f.SetY(-12)
		f.SetFont("Helvetica", "I", 8)
		f.SetTextColor(128, 128, 128)
		f.CellFormat(0, 5, w.tr(footer), "", 0, "C", false, 0, "")
		f.SetTextColor(0, 0, 0)
	})
	f.AddPage()

	f.SetFont("Helvetica", "B", 18)
	f.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	f.SetFont("Helvetica", "", 10)
	f.CellFormat(0, 6, "Data: "+r.Timestamp.Format("02/01/2006"), "", 1, "R", false, 0, "")
	f.Ln(4)

	for _, h := range Headings(r) {
		w.heading(h)
		switch h {
		case HeadProblem:
			w.para(r.ProblemDescription)
		case HeadOperator:
			w.italic(`"` + r.AudioTranscription + `"`)
		case HeadApplied:
			w.para(*r.UserSolution)
		case HeadSolutions:
			for i, s := range r.DetailedSolutions {
				w.solution(i+1, s)
			}
		case HeadPreventive:
			for i, rec := range r.PreventiveRecommendations {
				w.para(fmt.Sprintf("%d. %s", i+1, rec))
			}
		case HeadSummary:
			w.para(r.ManagementSummary)
		case HeadFiles:
			for i, file := range r.FilesAnalyzed {
				w.para(fmt.Sprintf("%d. %s (%s)", i+1, file.Name, file.Type))
			}
		}
		f.Ln(4)
	}

	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *writer) heading(s string) {
	w.f.SetFont("Helvetica", "BU", 13)
	w.f.CellFormat(0, 8, w.tr(s+":"), "", 1, "L", false, 0, "")
	w.f.Ln(1)
}

func (w *writer) para(s string) {
	w.f.SetFont("Helvetica", "", 11)
	w.f.MultiCell(0, lineH, w.tr(s), "", "J", false)
	w.f.Ln(1)
}

func (w *writer) italic(s string) {
	w.f.SetFont("Helvetica", "I", 11)
	w.f.MultiCell(0, lineH, w.tr(s), "", "J", false)
	w.f.Ln(1)
}

func (w *writer) label(s string) {
	w.f.SetFont("Helvetica", "U", 11)
	w.f.CellFormat(0, lineH, w.tr(s), "", 1, "L", false, 0, "")
}

func (w *writer) solution(n int, s types.DetailedSolution) {
	w.f.SetFont("Helvetica", "B", 12)
	w.f.MultiCell(0, 6, w.tr(fmt.Sprintf("%d. %s", n, s.Title)), "", "L", false)

	w.para(fmt.Sprintf("Priorità: %s | Tempo stimato: %s", strings.ToUpper(s.Priority), s.EstimatedTime))

	w.label("Descrizione:")
	w.para(s.Description)

	if len(s.Steps) > 0 {
		w.label("Passaggi:")
		for i, step := range s.Steps {
			w.para(fmt.Sprintf("   %d. %s", i+1, step))
		}
	}
	if len(s.RequiredTools) > 0 {
		w.label("Strumenti necessari:")
		w.para("   " + strings.Join(s.RequiredTools, ", "))
	}
	w.f.Ln(2)
}
