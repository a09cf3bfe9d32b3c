package shoppinglist

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

const (
	emptyTextMessage = "Список покупок пуст."
	textTitle        = "Список покупок"
)

var csvHeader = []string{"Ингредиент", "Единица измерения", "Количество"}

// Exporter renders aggregated items into downloadable artifacts.
type Exporter struct {
	// PDFFontPath points at a UTF-8 TrueType font used for PDF output.
	// Without it the embedded DejaVu Sans Condensed faces are used.
	PDFFontPath string
}

func NewExporter(pdfFontPath string) *Exporter {
	return &Exporter{PDFFontPath: pdfFontPath}
}

// Render produces the artifact for items in the requested format. No partial
// artifact is returned on error.
func (e *Exporter) Render(format Format, items []Item) (*Artifact, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = RenderCSV(items)
	case FormatPDF:
		data, err = RenderPDF(items, e.PDFFontPath)
	default:
		format = FormatText
		data = RenderText(items)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s shopping list: %w", format, err)
	}
	return &Artifact{
		Format:      format,
		Data:        data,
		ContentType: format.ContentType(),
		Filename:    format.Filename(),
	}, nil
}

// RenderText writes one "name (unit) — total" line per item.
func RenderText(items []Item) []byte {
	if len(items) == 0 {
		return []byte(emptyTextMessage)
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s (%s) — %d", item.Name, item.Unit, item.Total))
	}
	return []byte(strings.Join(lines, "\n"))
}

// RenderCSV writes a header row followed by one row per item.
func RenderCSV(items []Item) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, item := range items {
		if err := w.Write([]string{item.Name, item.Unit, strconv.FormatInt(item.Total, 10)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
