// Package report lays out result sheets and report cards as PDF.
package report

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Field is a labelled value printed under the title.
type Field struct {
	Label string
	Value string
}

// Column is a table column; Width is in millimetres.
type Column struct {
	Title string
	Width float64
}

// Table is a grid with a header row that repeats on every page.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// Document is everything the renderer prints. Equal documents render to
// identical bytes.
type Document struct {
	Title     string
	Fields    []Field
	Table     *Table
	Notes     []string
	QRCode    string // encoded as a QR image after the notes when set
	CreatedAt time.Time
}

const (
	fontFamily = "Helvetica"
	lineHeight = 7.0
	rowHeight  = 8.0
	qrSize     = 35.0
	qrPixels   = 256
)

// Renderer turns documents into PDF bytes.
type Renderer struct {
	pageSize string
}

// NewRenderer creates a renderer for US Letter portrait pages.
func NewRenderer() *Renderer {
	return &Renderer{pageSize: "Letter"}
}

// Render writes doc as a PDF to w.
func (r *Renderer) Render(w io.Writer, doc *Document) error {
	if doc == nil {
		return fmt.Errorf("nil document")
	}

	pdf := gofpdf.New("P", "mm", r.pageSize, "")
	pdf.SetCreationDate(doc.CreatedAt)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(doc.Title, false)
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	inTable := false
	pdf.SetHeaderFunc(func() {
		if inTable && doc.Table != nil {
			drawTableHeader(pdf, tr, doc.Table.Columns)
		}
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 16)
	pdf.MultiCell(0, 10, tr(doc.Title), "", "C", false)
	pdf.Ln(4)

	for _, f := range doc.Fields {
		pdf.SetFont(fontFamily, "B", 11)
		pdf.CellFormat(45, lineHeight, tr(f.Label+":"), "", 0, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 11)
		pdf.CellFormat(0, lineHeight, tr(f.Value), "", 1, "L", false, 0, "")
	}

	if doc.Table != nil {
		pdf.Ln(6)
		inTable = true
		drawTableHeader(pdf, tr, doc.Table.Columns)

		pdf.SetFont(fontFamily, "", 10)
		pdf.SetFillColor(245, 245, 220)
		for _, row := range doc.Table.Rows {
			for i, col := range doc.Table.Columns {
				cell := ""
				if i < len(row) {
					cell = fitText(pdf, tr(row[i]), col.Width-2)
				}
				ln := 0
				if i == len(doc.Table.Columns)-1 {
					ln = 1
				}
				pdf.CellFormat(col.Width, rowHeight, cell, "1", ln, "C", true, 0, "")
			}
		}
		inTable = false
	}

	if len(doc.Notes) > 0 {
		pdf.Ln(12)
		pdf.SetFont(fontFamily, "B", 11)
		pdf.MultiCell(0, lineHeight, tr(doc.Notes[0]), "", "L", false)
		pdf.SetFont(fontFamily, "", 11)
		for _, note := range doc.Notes[1:] {
			pdf.MultiCell(0, lineHeight, tr(note), "", "L", false)
		}
	}

	if doc.QRCode != "" {
		png, err := qrcode.Encode(doc.QRCode, qrcode.Medium, qrPixels)
		if err != nil {
			return fmt.Errorf("failed to encode QR code: %w", err)
		}

		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))

		_, pageHeight := pdf.GetPageSize()
		if pdf.GetY()+qrSize+4 > pageHeight-20 {
			pdf.AddPage()
		}
		pdf.Ln(4)
		pdf.ImageOptions("qr", pdf.GetX(), pdf.GetY(), qrSize, qrSize, false, opts, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}

	return nil
}

func drawTableHeader(pdf *gofpdf.Fpdf, tr func(string) string, columns []Column) {
	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetFillColor(0, 0, 255)
	pdf.SetTextColor(245, 245, 245)
	for i, col := range columns {
		ln := 0
		if i == len(columns)-1 {
			ln = 1
		}
		pdf.CellFormat(col.Width, rowHeight+2, fitText(pdf, tr(col.Title), col.Width-2), "1", ln, "C", true, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(fontFamily, "", 10)
	pdf.SetFillColor(245, 245, 220)
}

// fitText cuts s until it fits in width, marking the cut with "...".
// s is already translated to a single-byte code page.
func fitText(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for n := len(s) - 1; n >= 0; n-- {
		candidate := s[:n] + "..."
		if pdf.GetStringWidth(candidate) <= width {
			return candidate
		}
	}
	return ""
}
