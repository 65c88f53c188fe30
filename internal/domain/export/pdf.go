package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"perfdash/internal/domain/evaluation"
)

var rankingColumns = []struct {
	title string
	width float64
	align string
}{
	{"#", 10, "C"},
	{"Evaluado", 45, "L"},
	{"Cargo", 40, "L"},
	{"Dirección", 30, "L"},
	{"Nota", 15, "R"},
	{"Categoría", 30, "L"},
}

// WriteRankingPDF renders a ranking as an A4 table. Follow-up actions are printed
// under the row they belong to.
func WriteRankingPDF(w io.Writer, title string, generatedAt time.Time, records []evaluation.Record) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(title), false)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Generado: %s · %d registros", generatedAt.Format("2006-01-02 15:04"), len(records))))
	pdf.Ln(9)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(220, 230, 241)
		for _, col := range rankingColumns {
			pdf.CellFormat(col.width, 7, tr(col.title), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for i, record := range records {
		if pdf.GetY()+14 > pageHeight-bottom-10 {
			pdf.AddPage()
			header()
		}
		values := []string{
			fmt.Sprintf("%d", i+1),
			record.Person,
			record.Role,
			record.Org.Direction,
			formatFloat(record.Score, 2),
			string(record.Category),
		}
		for j, col := range rankingColumns {
			pdf.CellFormat(col.width, 6, fit(pdf, tr, values[j], col.width-2), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
		if record.Action != "" {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.SetX(pdf.GetX() + rankingColumns[0].width)
			pdf.MultiCell(totalWidth()-rankingColumns[0].width, 5, tr("Acciones: "+record.Action), "LRB", "L", false)
			pdf.SetFont("Helvetica", "", 9)
		}
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func totalWidth() float64 {
	total := 0.0
	for _, col := range rankingColumns {
		total += col.width
	}
	return total
}

// fit returns text translated for the core fonts, cut with an ellipsis when it
// would overflow width.
func fit(pdf *gofpdf.Fpdf, tr func(string) string, text string, width float64) string {
	if encoded := tr(text); pdf.GetStringWidth(encoded) <= width {
		return encoded
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(tr(string(runes)+"...")) > width {
		runes = runes[:len(runes)-1]
	}
	return tr(string(runes) + "...")
}
