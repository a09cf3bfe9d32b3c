package shoppinglist

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleItems = []Item{
	{Name: "Flour", Unit: "g", Total: 150},
	{Name: "Egg", Unit: "pcs", Total: 2},
	{Name: "Milk", Unit: "ml", Total: 200},
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":     FormatText,
		"txt":  FormatText,
		"TXT":  FormatText,
		"csv":  FormatCSV,
		"CSV":  FormatCSV,
		" pdf": FormatPDF,
		"Pdf":  FormatPDF,
		"docx": FormatText,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseFormat(in), "input %q", in)
	}
}

func TestFormatMetadata(t *testing.T) {
	assert.Equal(t, "text/plain; charset=utf-8", FormatText.ContentType())
	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.Equal(t, "shopping_list.pdf", FormatPDF.Filename())
}

func TestRenderText(t *testing.T) {
	got := string(RenderText([]Item{
		{Name: "Мука", Unit: "г", Total: 150},
		{Name: "Яйцо", Unit: "шт", Total: 2},
	}))
	assert.Equal(t, "Мука (г) — 150\nЯйцо (шт) — 2", got)
}

func TestRenderEmptyArtifacts(t *testing.T) {
	exporter := NewExporter("")

	text, err := exporter.Render(FormatText, []Item{})
	require.NoError(t, err)
	assert.Equal(t, "Список покупок пуст.", string(text.Data))
	assert.Equal(t, "shopping_list.txt", text.Filename)

	csvArtifact, err := exporter.Render(FormatCSV, nil)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(csvArtifact.Data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Ингредиент", "Единица измерения", "Количество"}}, records)

	pdfArtifact, err := exporter.Render(FormatPDF, nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfArtifact.Data, []byte("%PDF-")))
	assert.True(t, pdfShows(t, pdfArtifact.Data, "Ваша корзина покупок пуста."))
}

func TestCSVRoundTrip(t *testing.T) {
	items := append([]Item{{Name: `Соль, "морская"`, Unit: "г", Total: 5}}, sampleItems...)

	data, err := RenderCSV(items)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(items)+1)

	for i, record := range records[1:] {
		total, err := strconv.ParseInt(record[2], 10, 64)
		require.NoError(t, err)
		assert.Equal(t, items[i], Item{Name: record[0], Unit: record[1], Total: total})
	}
}

func TestRenderPDFTable(t *testing.T) {
	artifact, err := NewExporter("").Render(FormatPDF, sampleItems)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", artifact.ContentType)
	assert.Equal(t, "shopping_list.pdf", artifact.Filename)

	text := pdfText(t, artifact.Data)
	for _, item := range sampleItems {
		assert.Contains(t, text, item.Name)
		assert.Contains(t, text, strconv.FormatInt(item.Total, 10))
	}
	assert.True(t, pdfShows(t, artifact.Data, "Список покупок"))
	assert.True(t, pdfShows(t, artifact.Data, "Ингредиент"))
}

func TestRenderPDFKeepsCyrillicByDefault(t *testing.T) {
	items := []Item{
		{Name: "Мука пшеничная", Unit: "г", Total: 150},
		{Name: "Яйцо", Unit: "шт", Total: 2},
	}
	data, err := RenderPDF(items, "")
	require.NoError(t, err)

	for _, item := range items {
		assert.True(t, pdfShows(t, data, item.Name), "name %q", item.Name)
		assert.True(t, pdfShows(t, data, item.Unit), "unit %q", item.Unit)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	page := reader.Page(1)
	var embedded bool
	for _, name := range page.Fonts() {
		if page.Font(name).V.Key("Encoding").Name() == "Identity-H" {
			embedded = true
		}
	}
	assert.True(t, embedded, "text is set in an embedded Unicode font")
}

func TestRenderPDFPaginates(t *testing.T) {
	items := make([]Item, 0, 120)
	for i := 0; i < 120; i++ {
		items = append(items, Item{Name: "Item" + strconv.Itoa(i), Unit: "g", Total: int64(i + 1)})
	}
	data, err := RenderPDF(items, "")
	require.NoError(t, err)

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Greater(t, reader.NumPage(), 1)
}

func TestRenderPDFMissingFont(t *testing.T) {
	_, err := NewExporter("/nonexistent/font.ttf").Render(FormatPDF, sampleItems)
	assert.Error(t, err)
}

func TestRenderUnknownFormatFallsBackToText(t *testing.T) {
	artifact, err := NewExporter("").Render(Format("xml"), sampleItems)
	require.NoError(t, err)
	assert.Equal(t, FormatText, artifact.Format)
	assert.True(t, strings.HasPrefix(string(artifact.Data), "Flour (g) — 150"))
}

func pdfText(t *testing.T, data []byte) string {
	t.Helper()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		require.NoError(t, err)
		sb.WriteString(text)
	}
	return sb.String()
}

// pdfShows reports whether s is drawn on any page. Text set in a UTF-8 font is
// written as UTF-16BE glyph codes, so the decompressed content streams are
// searched for that encoding.
func pdfShows(t *testing.T, data []byte, s string) bool {
	t.Helper()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var encoded []byte
	for _, u := range utf16.Encode([]rune(s)) {
		encoded = append(encoded, byte(u>>8), byte(u))
	}
	for i := 1; i <= reader.NumPage(); i++ {
		contents := reader.Page(i).V.Key("Contents")
		if contents.IsNull() {
			continue
		}
		rc := contents.Reader()
		raw, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		if bytes.Contains(raw, encoded) {
			return true
		}
	}
	return false
}
