package export_test

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"turfreports/internal/export"
)

func sampleTable() export.Table {
	return export.Table{
		Columns: []string{"nro_ticket", "fecha", "total_apostado"},
		Rows: [][]any{
			{"T-001", "01/06/2024", 150.5},
			{"T-002", "02/06/2024", 80},
		},
	}
}

func TestFilename(t *testing.T) {
	name := export.Filename("ventas_diarias", "csv", nil)
	require.Regexp(t, regexp.MustCompile(`^ventas_diarias_\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.csv$`), name)
}

func TestFilenameWithAgency(t *testing.T) {
	id := 42
	name := export.Filename("tickets_anulados", "xlsx", &id)
	require.Regexp(t, regexp.MustCompile(`^tickets_anulados_ag42_\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.xlsx$`), name)
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := export.WriteCSV(dir, "reporte.csv", sampleTable())
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(string(raw), "\xEF\xBB\xBF"), "CSV must start with a UTF-8 BOM")

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(raw), "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "nro_ticket;fecha;total_apostado", lines[0])
	require.Equal(t, "T-001;01/06/2024;150.5", lines[1])
	require.Equal(t, "T-002;02/06/2024;80", lines[2])
}

func TestWriteCSVEmptyTable(t *testing.T) {
	dir := t.TempDir()
	path, err := export.WriteCSV(dir, "vacio.csv", export.Table{Columns: []string{"a"}})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	// Only the BOM, no header without rows.
	require.Equal(t, "\xEF\xBB\xBF", string(raw))
}

func TestWriteXLSX(t *testing.T) {
	dir := t.TempDir()
	path, err := export.WriteXLSX(dir, "reporte.xlsx", sampleTable())
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)

	require.Contains(t, content, `<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet">`)
	require.Contains(t, content, `<Worksheet ss:Name="Reporte">`)
	require.Contains(t, content, `<Data ss:Type="String">nro_ticket</Data>`)
	require.Contains(t, content, `<Data ss:Type="String">T-001</Data>`)
	require.Contains(t, content, `<Data ss:Type="Number">150.5</Data>`)
	require.Contains(t, content, `<Data ss:Type="Number">80</Data>`)
}

func TestWriteXLSXEscapesMarkup(t *testing.T) {
	dir := t.TempDir()
	table := export.Table{
		Columns: []string{"agencia"},
		Rows:    [][]any{{"<Hipódromo> & Cía"}},
	}
	path, err := export.WriteXLSX(dir, "escapado.xlsx", table)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "&lt;Hipódromo&gt; &amp; Cía")
	require.NotContains(t, string(raw), "<Hipódromo>")
}

func TestWritePDFIsPrintableHTML(t *testing.T) {
	dir := t.TempDir()
	path, err := export.WritePDF(dir, "reporte.pdf", "Ventas Diarias", sampleTable())
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)

	require.True(t, strings.HasPrefix(content, "<!DOCTYPE html>"))
	require.Contains(t, content, "TURF - Ventas Diarias")
	require.Contains(t, content, "<th>Nro ticket</th>")
	require.Contains(t, content, `<td class="number">150.5</td>`)
	require.Contains(t, content, "<td>T-001</td>")
}
