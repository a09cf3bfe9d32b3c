// Package shoppinglist aggregates the ingredients of the recipes in a user's
// shopping cart and renders the result as text, CSV or PDF.
package shoppinglist

import (
	"strings"
)

// Item is one aggregated line of a shopping list.
type Item struct {
	Name  string `json:"name"`
	Unit  string `json:"measurement_unit"`
	Total int64  `json:"amount"`
}

// Format selects the export rendering.
type Format string

const (
	FormatText Format = "txt"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// DefaultFormat is used whenever no or an unknown format is requested.
const DefaultFormat = FormatText

// ParseFormat maps a user supplied format name onto a Format. Matching is case
// insensitive; anything unrecognised yields DefaultFormat.
func ParseFormat(s string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV
	case FormatPDF:
		return FormatPDF
	default:
		return DefaultFormat
	}
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	return string(f)
}

// ContentType returns the MIME type of artifacts in this format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Filename returns the attachment name for this format.
func (f Format) Filename() string {
	return "shopping_list." + f.Extension()
}

// Artifact is a fully rendered export ready for download or attachment.
type Artifact struct {
	Format      Format
	Data        []byte
	ContentType string
	Filename    string
}
