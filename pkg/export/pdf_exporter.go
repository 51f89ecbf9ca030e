package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Field is a labelled value printed on a form-style document.
type Field struct {
	Label string
	Value string
}

// Document describes a single-page form such as an exam hall ticket.
type Document struct {
	Title    string
	Subtitle string
	Fields   []Field
	Notes    []string
}

// PDFExporter renders datasets and form documents into PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType is the MIME type of rendered documents.
func (e *PDFExporter) ContentType() string {
	return "application/pdf"
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	writeTitle(pdf, title)

	pdf.SetFont("Arial", "B", 10)
	colWidth := 277.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return output(pdf)
}

// RenderDocument lays out a form with a two-column label/value table.
func (e *PDFExporter) RenderDocument(doc Document) ([]byte, error) {
	if len(doc.Fields) == 0 {
		return nil, fmt.Errorf("pdf document requires at least one field")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	writeTitle(pdf, doc.Title)
	if doc.Subtitle != "" {
		pdf.SetFont("Arial", "I", 11)
		pdf.CellFormat(0, 8, doc.Subtitle, "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	for _, field := range doc.Fields {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(55, 9, field.Label, "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 9, field.Value, "1", 1, "", false, 0, "")
	}

	if len(doc.Notes) > 0 {
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 9)
		for _, note := range doc.Notes {
			pdf.MultiCell(0, 5, "- "+note, "", "", false)
		}
	}
	return output(pdf)
}

func writeTitle(pdf *gofpdf.Fpdf, title string) {
	if title == "" {
		return
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
	pdf.Ln(5)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
