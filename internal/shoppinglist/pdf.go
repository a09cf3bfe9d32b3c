package shoppinglist

import (
	"bytes"
	_ "embed"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// DejaVu Sans Condensed covers Cyrillic; it is the default face of PDF exports.
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	defaultFontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	defaultFontBold []byte
)

const (
	pdfFontFamily = "ListFont"
	pdfMargin     = 15.0
	pdfRowHeight  = 8.0

	pdfEmptyMessage = "Ваша корзина покупок пуста."
)

var pdfHeader = [4]string{"№", "Ингредиент", "Ед. изм.", "Количество"}

// column widths in mm; they sum to the A4 printable width
var pdfColumns = [4]float64{15, 95, 35, 35}

// loadFont registers the UTF-8 font family. An empty fontPath selects the
// embedded DejaVu faces; a custom font is used for both regular and bold text.
func loadFont(pdf *fpdf.Fpdf, fontPath string) (boldStyle string) {
	if fontPath == "" {
		pdf.AddUTF8FontFromBytes(pdfFontFamily, "", defaultFontRegular)
		pdf.AddUTF8FontFromBytes(pdfFontFamily, "B", defaultFontBold)
		return "B"
	}
	pdf.AddUTF8Font(pdfFontFamily, "", fontPath)
	return ""
}

// RenderPDF lays the items out as a titled A4 table. fontPath may be empty.
func RenderPDF(items []Item, fontPath string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)

	boldStyle := loadFont(pdf, fontPath)
	if err := pdf.Error(); err != nil {
		return nil, err
	}

	pdf.AddPage()
	pdf.SetFont(pdfFontFamily, boldStyle, 18)
	pdf.CellFormat(0, 12, textTitle, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if len(items) == 0 {
		pdf.SetFont(pdfFontFamily, "", 12)
		pdf.MultiCell(0, pdfRowHeight, pdfEmptyMessage, "", "L", false)
		return output(pdf)
	}

	header := func() {
		pdf.SetFont(pdfFontFamily, boldStyle, 11)
		pdf.SetFillColor(52, 58, 64)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetDrawColor(120, 120, 120)
		for i, label := range pdfHeader {
			pdf.CellFormat(pdfColumns[i], pdfRowHeight, label, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(pdfFontFamily, "", 11)
		pdf.SetTextColor(33, 37, 41)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	for i, item := range items {
		if pdf.GetY()+pdfRowHeight > pageHeight-pdfMargin {
			pdf.AddPage()
			header()
		}
		if i%2 == 0 {
			pdf.SetFillColor(248, 249, 250)
		} else {
			pdf.SetFillColor(233, 236, 239)
		}
		pdf.CellFormat(pdfColumns[0], pdfRowHeight, strconv.Itoa(i+1), "1", 0, "C", true, 0, "")
		pdf.CellFormat(pdfColumns[1], pdfRowHeight, item.Name, "1", 0, "L", true, 0, "")
		pdf.CellFormat(pdfColumns[2], pdfRowHeight, item.Unit, "1", 0, "C", true, 0, "")
		pdf.CellFormat(pdfColumns[3], pdfRowHeight, strconv.FormatInt(item.Total, 10), "1", 1, "R", true, 0, "")
	}

	return output(pdf)
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
