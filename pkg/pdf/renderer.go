// Package pdf renders fixed-layout, single-page documents made of a header
// block, a title, label/value rows and a footer.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// Row is one "label : value" line of a document.
type Row struct {
	Label string
	Value string
}

// Document describes what is printed, leaving placement to the Renderer.
type Document struct {
	// Header holds the institution block. The first line is printed in bold.
	Header []string
	Title  string
	Rows   []Row
	Footer string
	// Subject is stored in the document metadata.
	Subject string
}

type Renderer interface {
	Render(doc *Document) ([]byte, error)
}

// Layout positions in millimetres on an A4 portrait page.
const (
	pageWidth   = 210.0
	marginLeft  = 20.0
	labelX      = 45.0
	colonX      = 95.0
	valueX      = 100.0
	headerStart = 20.0
	lineHeight  = 10.0
)

type fpdfRenderer struct {
	creationDate time.Time
}

// NewRenderer returns an A4 renderer backed by go-pdf/fpdf. A zero creationDate
// uses the render time.
func NewRenderer(creationDate time.Time) Renderer {
	return &fpdfRenderer{creationDate: creationDate}
}

func (r *fpdfRenderer) Render(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("pdf: nil document")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	if doc.Subject != "" {
		pdf.SetSubject(doc.Subject, true)
	}
	if !r.creationDate.IsZero() {
		// Fixed dates plus sorted resources give byte-identical output.
		pdf.SetCatalogSort(true)
		pdf.SetCreationDate(r.creationDate)
		pdf.SetModificationDate(r.creationDate)
	}
	pdf.AddPage()

	// Core fonts are cp1252; translate UTF-8 input so accented names survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	y := headerStart
	for i, line := range doc.Header {
		if i == 0 {
			pdf.SetFont("Helvetica", "B", 16)
		} else {
			pdf.SetFont("Helvetica", "", 11)
		}
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(pageWidth-2*marginLeft, 8, tr(line), "", 0, "C", false, 0, "")
		y += 8
	}

	y += 2
	pdf.Line(marginLeft, y, pageWidth-marginLeft, y)
	y += 12

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(pageWidth-2*marginLeft, 8, tr(doc.Title), "", 0, "C", false, 0, "")
	y += 18

	pdf.SetFont("Helvetica", "", 12)
	for _, row := range doc.Rows {
		pdf.Text(labelX, y, tr(row.Label))
		pdf.Text(colonX, y, ":")
		pdf.Text(valueX, y, tr(row.Value))
		y += lineHeight
	}

	y += 2
	pdf.Line(marginLeft, y, pageWidth-marginLeft, y)
	y += 10

	if doc.Footer != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(pageWidth-2*marginLeft, 6, tr(doc.Footer), "", 0, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}
