package reports

import (
	"bytes"
	"fmt"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatPDF   Format = "pdf"
)

// ContentType returns the MIME type for a file extension returned by GenerateReport.
func ContentType(extension string) string {
	switch extension {
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		return "application/pdf"
	default:
		return "text/csv"
	}
}

type ReportOptions struct {
	HeaderColor    string // hex, e.g. "#E0E0E0"
	Title          string
	SheetName      string
	PDFOrientation string
}

type ReportOption func(*ReportOptions)

func WithHeaderColor(color string) ReportOption {
	return func(opts *ReportOptions) {
		opts.HeaderColor = color
	}
}

// WithTitle sets the PDF heading and document title.
func WithTitle(title string) ReportOption {
	return func(opts *ReportOptions) {
		opts.Title = title
	}
}

func WithSheetName(name string) ReportOption {
	return func(opts *ReportOptions) {
		opts.SheetName = name
	}
}

func WithLandscape() ReportOption {
	return func(opts *ReportOptions) {
		opts.PDFOrientation = "L"
	}
}

func getDefaultOptions() *ReportOptions {
	return &ReportOptions{
		HeaderColor:    "#E0E0E0",
		PDFOrientation: "P",
	}
}

func GenerateCSVReport(headers []string, data [][]string) ([]byte, error) {
	var buf bytes.Buffer
	exporter := NewCSVExporter(&buf)

	if err := exporter.WriteHeader(headers); err != nil {
		return nil, err
	}
	for _, row := range data {
		if err := exporter.WriteData(row); err != nil {
			return nil, err
		}
	}
	if err := exporter.Flush(); err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func GenerateExcelReport(headers []string, data [][]string, opts ...ReportOption) ([]byte, error) {
	options := getDefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	exporter, err := NewExcelExporter(options.SheetName)
	if err != nil {
		return nil, err
	}
	defer exporter.Close()

	if err := exporter.WriteHeader(headers, CreateHeaderStyle(options.HeaderColor)); err != nil {
		return nil, fmt.Errorf("failed to write Excel headers: %w", err)
	}
	for _, row := range data {
		if err := exporter.WriteData(row); err != nil {
			return nil, fmt.Errorf("failed to write Excel data row: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := exporter.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to save Excel: %w", err)
	}
	return buf.Bytes(), nil
}

func GeneratePDFReport(headers []string, data [][]string, opts ...ReportOption) ([]byte, error) {
	options := getDefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	headerColor, err := ParseHexColor(options.HeaderColor)
	if err != nil {
		return nil, err
	}

	exporter := NewPDFExporter(options.PDFOrientation, options.Title)
	if err := exporter.WriteHeader(headers, CreatePDFHeaderStyle(headerColor)); err != nil {
		return nil, fmt.Errorf("failed to write PDF headers: %w", err)
	}
	for _, row := range data {
		if err := exporter.WriteData(row); err != nil {
			return nil, fmt.Errorf("failed to write PDF data row: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := exporter.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateReport renders headers and rows and returns the content with its file extension.
// Unknown formats fall back to CSV.
func GenerateReport(format Format, headers []string, data [][]string, opts ...ReportOption) ([]byte, string, error) {
	switch format {
	case FormatExcel, "xlsx":
		content, err := GenerateExcelReport(headers, data, opts...)
		return content, "xlsx", err
	case FormatPDF:
		content, err := GeneratePDFReport(headers, data, opts...)
		return content, "pdf", err
	default:
		content, err := GenerateCSVReport(headers, data)
		return content, "csv", err
	}
}
