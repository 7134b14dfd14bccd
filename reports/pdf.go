package reports

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin     = 10.0
	pdfLineHeight = 6.0
	pdfPadding    = 2.0
)

type PDFExporter struct {
	pdf         *gofpdf.Fpdf
	translate   func(string) string
	headers     []string
	hasHeader   bool
	headerStyle *PDFStyle
	colWidths   []float64
	pageWidth   float64
	pageHeight  float64
	y           float64
}

// NewPDFExporter starts an A4 document. orientation is "P" or "L"; wide tables read better
// in landscape.
func NewPDFExporter(orientation, title string) *PDFExporter {
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()
	e := &PDFExporter{
		pdf:        pdf,
		translate:  pdf.UnicodeTranslatorFromDescriptor(""),
		pageWidth:  pageWidth,
		pageHeight: pageHeight,
		y:          pdfMargin,
	}

	if title != "" {
		pdf.SetTitle(title, true)
		pdf.SetFont("Arial", "B", 14)
		pdf.SetXY(pdfMargin, e.y)
		pdf.CellFormat(pageWidth-2*pdfMargin, 10, e.translate(title), "", 0, "L", false, 0, "")
		e.y += 12
	}
	return e
}

func (e *PDFExporter) WriteHeader(headers []string, style *PDFStyle) error {
	if e.hasHeader {
		return fmt.Errorf("header has already been written")
	}
	if len(headers) == 0 {
		return fmt.Errorf("headers cannot be empty")
	}

	if style == nil {
		style = CreatePDFHeaderStyle(Color{R: 224, G: 224, B: 224})
	}
	e.headers = headers
	e.hasHeader = true
	e.headerStyle = style

	colWidth := (e.pageWidth - 2*pdfMargin) / float64(len(headers))
	e.colWidths = make([]float64, len(headers))
	for i := range e.colWidths {
		e.colWidths[i] = colWidth
	}

	e.drawRow(headers, style)
	return e.pdf.Error()
}

func (e *PDFExporter) WriteData(data []string) error {
	if err := checkRow(e.hasHeader, e.headers, data); err != nil {
		return err
	}

	style := CreatePDFDataStyle()
	if height := e.rowHeight(data, style); e.y+height > e.pageHeight-pdfMargin {
		e.pdf.AddPage()
		e.y = pdfMargin
		e.drawRow(e.headers, e.headerStyle)
	}
	e.drawRow(data, style)
	return e.pdf.Error()
}

func (e *PDFExporter) rowHeight(values []string, style *PDFStyle) float64 {
	e.applyStyle(style)
	lines := 1
	for i, value := range values {
		n := len(e.pdf.SplitLines([]byte(e.translate(value)), e.colWidths[i]-2*pdfPadding))
		lines = max(lines, n)
	}
	return float64(lines)*pdfLineHeight + 2*pdfPadding
}

func (e *PDFExporter) drawRow(values []string, style *PDFStyle) {
	height := e.rowHeight(values, style)

	x := pdfMargin
	for i, value := range values {
		e.pdf.Rect(x, e.y, e.colWidths[i], height, "FD")
		e.pdf.SetXY(x+pdfPadding, e.y+pdfPadding)
		e.pdf.MultiCell(e.colWidths[i]-2*pdfPadding, pdfLineHeight, e.translate(value), "", "L", false)
		x += e.colWidths[i]
	}
	e.y += height
}

func (e *PDFExporter) applyStyle(style *PDFStyle) {
	e.pdf.SetFont(style.FontFamily, style.FontStyle, style.FontSize)
	e.pdf.SetFillColor(style.BackgroundColor.R, style.BackgroundColor.G, style.BackgroundColor.B)
	e.pdf.SetTextColor(style.TextColor.R, style.TextColor.G, style.TextColor.B)
}

func (e *PDFExporter) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if err := e.pdf.Output(cw); err != nil {
		return cw.n, fmt.Errorf("failed to write PDF: %w", err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

type PDFStyle struct {
	FontFamily      string
	FontStyle       string
	FontSize        float64
	BackgroundColor Color
	TextColor       Color
}

type Color struct {
	R, G, B int
}

func CreatePDFHeaderStyle(backgroundColor Color) *PDFStyle {
	return &PDFStyle{
		FontFamily:      "Arial",
		FontStyle:       "B",
		FontSize:        11,
		BackgroundColor: backgroundColor,
		TextColor:       Color{R: 0, G: 0, B: 0},
	}
}

func CreatePDFDataStyle() *PDFStyle {
	return &PDFStyle{
		FontFamily:      "Arial",
		FontStyle:       "",
		FontSize:        10,
		BackgroundColor: Color{R: 255, G: 255, B: 255},
		TextColor:       Color{R: 0, G: 0, B: 0},
	}
}

func ParseHexColor(hex string) (Color, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid hex color: %s", hex)
	}

	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color: %s: %w", hex, err)
	}
	return Color{R: int(rgb >> 16 & 0xff), G: int(rgb >> 8 & 0xff), B: int(rgb & 0xff)}, nil
}
