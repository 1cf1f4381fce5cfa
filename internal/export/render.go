package export

import (
	"encoding/csv"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Table is the flat row set every renderer consumes. Columns keep the order
// of the originating query.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Filename builds the export file name. The agency suffix lets the download
// authorizer tie the artifact back to its owner.
func Filename(reportType, format string, agenciaID *int) string {
	suffix := ""
	if agenciaID != nil {
		suffix = fmt.Sprintf("_ag%d", *agenciaID)
	}
	return fmt.Sprintf("%s%s_%s.%s", reportType, suffix, time.Now().Format("2006-01-02_15-04-05"), format)
}

// WriteCSV writes the table as semicolon-separated CSV with a UTF-8 BOM so
// spreadsheet applications pick up the encoding.
func WriteCSV(dir, filename string, t Table) (string, error) {
	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", err
	}

	w := csv.NewWriter(f)
	w.Comma = ';'

	if len(t.Rows) > 0 {
		if err := w.Write(t.Columns); err != nil {
			return "", err
		}
		record := make([]string, len(t.Columns))
		for _, row := range t.Rows {
			for i, v := range row {
				record[i] = formatValue(v)
			}
			if err := w.Write(record); err != nil {
				return "", err
			}
		}
	}
	w.Flush()
	return path, w.Error()
}

// WriteXLSX writes the table as a minimal SpreadsheetML workbook, which Excel
// and LibreOffice open transparently.
func WriteXLSX(dir, filename string, t Table) (string, error) {
	path := filepath.Join(dir, filename)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet">` + "\n")
	b.WriteString(`<Worksheet ss:Name="Reporte">` + "\n")
	b.WriteString("<Table>\n")

	if len(t.Rows) > 0 {
		b.WriteString("<Row>\n")
		for _, col := range t.Columns {
			b.WriteString(`<Cell><Data ss:Type="String">` + html.EscapeString(col) + "</Data></Cell>\n")
		}
		b.WriteString("</Row>\n")

		for _, row := range t.Rows {
			b.WriteString("<Row>\n")
			for _, v := range row {
				cellType := "String"
				if isNumeric(v) {
					cellType = "Number"
				}
				b.WriteString(`<Cell><Data ss:Type="` + cellType + `">` + html.EscapeString(formatValue(v)) + "</Data></Cell>\n")
			}
			b.WriteString("</Row>\n")
		}
	}

	b.WriteString("</Table>\n</Worksheet>\n</Workbook>")
	return path, os.WriteFile(path, []byte(b.String()), 0o644)
}

// WritePDF writes a printable HTML report under a .pdf name. The download
// handler sniffs the content and serves it inline as HTML, so browsers render
// the report and can print it to actual PDF.
func WritePDF(dir, filename, title string, t Table) (string, error) {
	path := filepath.Join(dir, filename)

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>` + html.EscapeString(title) + `</title>
    <style>
        body { font-family: Arial, sans-serif; font-size: 12px; }
        .header { text-align: center; margin-bottom: 20px; }
        .date { text-align: right; color: #666; }
        table { width: 100%; border-collapse: collapse; margin-top: 10px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f5f5f5; font-weight: bold; }
        .number { text-align: right; }
    </style>
</head>
<body>
    <div class="header">
        <h1>TURF - ` + html.EscapeString(title) + `</h1>
        <div class="date">Generado: ` + time.Now().Format("02/01/2006 15:04") + `</div>
    </div>
    <table>`)

	if len(t.Rows) > 0 {
		b.WriteString("<thead><tr>")
		for _, col := range t.Columns {
			b.WriteString("<th>" + html.EscapeString(headerLabel(col)) + "</th>")
		}
		b.WriteString("</tr></thead><tbody>")
		for _, row := range t.Rows {
			b.WriteString("<tr>")
			for _, v := range row {
				class := ""
				if isNumeric(v) {
					class = ` class="number"`
				}
				b.WriteString("<td" + class + ">" + html.EscapeString(formatValue(v)) + "</td>")
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody>")
	}

	b.WriteString(`</table>
</body>
</html>`)
	return path, os.WriteFile(path, []byte(b.String()), 0o644)
}

func headerLabel(col string) string {
	label := strings.ReplaceAll(col, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int, int64, float64:
		return true
	}
	return false
}
