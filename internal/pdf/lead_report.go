package pdf

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"

	"leadcrm/internal/models"
)

// Generator renders reports in memory (easy to fake in tests).
type Generator interface {
	LeadReport(data LeadReport) ([]byte, error)
}

type LeadReport struct {
	Owner       string // empty when the report spans every owner
	Status      string
	Search      string
	GeneratedAt time.Time
	Leads       []*models.Lead
}

// ReportGenerator draws with the TTF at FontPath when set, else with the
// core Helvetica font (Latin-1 only).
type ReportGenerator struct {
	FontPath string
	fontName string
}

func NewReportGenerator(fontPath string) *ReportGenerator {
	return &ReportGenerator{FontPath: fontPath, fontName: "DejaVu"}
}

const pageMargin = 15.0

type column struct {
	title string
	width float64
	value func(l *models.Lead) string
}

var leadColumns = []column{
	{"ID", 12, func(l *models.Lead) string { return fmt.Sprintf("%d", l.ID) }},
	{"Name", 45, func(l *models.Lead) string { return l.FirstName + " " + l.LastName }},
	{"Email", 60, func(l *models.Lead) string { return l.Email }},
	{"Company", 45, func(l *models.Lead) string { return deref(l.Company) }},
	{"Phone", 32, func(l *models.Lead) string { return deref(l.Phone) }},
	{"Status", 25, func(l *models.Lead) string { return l.Status }},
	{"Created", 25, func(l *models.Lead) string {
		if l.Created == nil {
			return ""
		}
		return l.Created.String()
	}},
	{"Owner", 33, func(l *models.Lead) string { return l.OwnerEmail }},
}

func (g *ReportGenerator) LeadReport(data LeadReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Leads", true)
	pdf.SetAuthor("leadcrm", true)
	pdf.SetMargins(10, pageMargin, 10)
	pdf.SetAutoPageBreak(true, pageMargin)

	font, tr := g.setupFont(pdf)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(font, "", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(font, "B", 16)
	pdf.CellFormat(0, 10, "Leads", "", 1, "L", false, 0, "")
	pdf.SetFont(font, "", 9)
	for _, line := range summaryLines(data) {
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	header := func() {
		pdf.SetFont(font, "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range leadColumns {
			pdf.CellFormat(c.width, 7, c.title, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(font, "", 8)
	}
	header()
	_, pageHeight := pdf.GetPageSize()
	for _, l := range data.Leads {
		if pdf.GetY()+6 > pageHeight-pageMargin {
			pdf.AddPage()
			header()
		}
		for _, c := range leadColumns {
			pdf.CellFormat(c.width, 6, tr(fit(pdf, c.value(l), c.width-2)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(data.Leads) == 0 {
		pdf.CellFormat(0, 7, "No leads match.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render lead report: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *ReportGenerator) setupFont(pdf *gofpdf.Fpdf) (string, func(string) string) {
	if g.FontPath != "" {
		// unreadable font file: fall back to the core font
		if ttf, err := os.ReadFile(g.FontPath); err == nil {
			pdf.AddUTF8FontFromBytes(g.fontName, "", ttf)
			pdf.AddUTF8FontFromBytes(g.fontName, "B", ttf)
			return g.fontName, func(s string) string { return s }
		}
	}
	return "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
}

func summaryLines(data LeadReport) []string {
	owner := data.Owner
	if owner == "" {
		owner = "all owners"
	}
	lines := []string{
		"Generated: " + data.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"),
		"Owner: " + owner,
	}
	if data.Status != "" {
		lines = append(lines, "Status: "+data.Status)
	}
	if data.Search != "" {
		lines = append(lines, "Search: "+data.Search)
	}
	return append(lines, fmt.Sprintf("Total: %d", len(data.Leads)))
}

// fit cuts s so it renders within width millimetres at the current font.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
