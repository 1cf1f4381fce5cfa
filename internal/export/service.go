package export

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"turfreports/internal/reports"
)

// Service turns report data into downloadable files. An export with a nil
// agency runs the admin variant of the report; with an agency it runs the
// scoped variant and stamps the agency into the file name.
type Service struct {
	reports *reports.Service
	dir     string
	log     zerolog.Logger
}

func NewService(reportSvc *reports.Service, dir string, log zerolog.Logger) *Service {
	return &Service{reports: reportSvc, dir: dir, log: log}
}

// Dir returns the directory exports are written to.
func (s *Service) Dir() string { return s.dir }

var reportTitles = map[string]string{
	"ventas_tickets":       "Ventas de Tickets",
	"informe_agencias":     "Informe por Agencias",
	"caballos_retirados":   "Caballos Retirados Último Momento",
	"tickets_anulados":     "Tickets Anulados",
	"carreras":             "Listado de Carreras",
	"ventas_diarias":       "Ventas Diarias",
	"sports_carreras":      "Sports y Carreras",
	"tickets_devoluciones": "Tickets con Devolución",
}

// Export renders the report to a file and returns the bare file name. Limits
// are cleared first so the export carries the full result set.
func (s *Service) Export(ctx context.Context, reportType, format string, f reports.Filters, agenciaID *int) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	table, err := s.reportTable(ctx, reportType, f.Unpaginated(), agenciaID)
	if err != nil {
		return "", err
	}

	filename := Filename(reportType, format, agenciaID)

	switch format {
	case "csv":
		_, err = WriteCSV(s.dir, filename, table)
	case "xlsx":
		_, err = WriteXLSX(s.dir, filename, table)
	case "pdf":
		title, ok := reportTitles[reportType]
		if !ok {
			title = "Reporte"
		}
		_, err = WritePDF(s.dir, filename, title, table)
	default:
		return "", fmt.Errorf("formato no soportado: %s", format)
	}
	if err != nil {
		return "", err
	}

	s.log.Info().
		Str("report_type", reportType).
		Str("format", format).
		Str("filename", filename).
		Int("rows", len(table.Rows)).
		Msg("reporte exportado")
	return filename, nil
}

func (s *Service) reportTable(ctx context.Context, reportType string, f reports.Filters, agenciaID *int) (Table, error) {
	esAdmin := agenciaID == nil

	switch reportType {
	case "ventas_diarias":
		if !esAdmin {
			r, err := s.reports.GetVentasDiariasAgencia(ctx, *agenciaID, f)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"nro_ticket", "total_premio", "devoluciones", "total_ticket"}}
			for _, v := range r.Listado {
				t.Rows = append(t.Rows, []any{v.NroTicket, v.TotalPremio, v.Devoluciones, v.TotalTicket})
			}
			return t, nil
		}

	case "tickets_anulados":
		if !esAdmin {
			r, err := s.reports.GetTicketsAnuladosAgencia(ctx, *agenciaID, f)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"nro_ticket", "fecha", "hora", "nombre_usuario", "total_apostado"}}
			for _, v := range r.Data {
				t.Rows = append(t.Rows, []any{v.NroTicket, v.Fecha, v.Hora, v.NombreUsuario, v.TotalApostado})
			}
			return t, nil
		}
		r, err := s.reports.GetTicketsAnulados(ctx, f)
		if err != nil {
			return Table{}, err
		}
		t := Table{Columns: []string{"nro_ticket", "fecha", "hora", "nombre_usuario", "nombre_agencia", "total_apostado"}}
		for _, v := range r.Data {
			t.Rows = append(t.Rows, []any{v.NroTicket, v.Fecha, v.Hora, v.NombreUsuario, v.NombreAgencia, v.TotalApostado})
		}
		return t, nil

	case "tickets_devoluciones":
		if !esAdmin {
			r, err := s.reports.GetTicketsDevolucionesAgencia(ctx, *agenciaID, f)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"nro_ticket", "fecha", "total_apostado"}}
			for _, v := range r.Data {
				t.Rows = append(t.Rows, []any{v.NroTicket, v.Fecha, v.TotalApostado})
			}
			return t, nil
		}

	case "sports_carreras":
		if !esAdmin {
			r, err := s.reports.GetSportsCarrerasAgencia(ctx, f)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"fecha", "numero_carrera", "nombre_hipodromo", "estado_carrera", "resultados"}}
			for _, carrera := range r.Carreras {
				t.Rows = append(t.Rows, []any{
					carrera.Fecha, carrera.NumeroCarrera, carrera.NombreHipodromo,
					carrera.EstadoCarrera, formatResultados(carrera.ResultadosCaballos),
				})
			}
			return t, nil
		}

	case "informe_agencias":
		if esAdmin {
			r, err := s.reports.GetInformePorAgencia(ctx, f)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"agencia", "anulados", "vendidos", "ganadores", "pagados", "devoluciones", "ganancia"}}
			for _, a := range r.Agencias {
				t.Rows = append(t.Rows, []any{a.Agencia, a.Anulados, a.Vendidos, a.Ganadores, a.Pagados, a.Devoluciones, a.Ganancia})
			}
			return t, nil
		}

	case "ventas_tickets":
		if esAdmin {
			rows, err := s.reports.GetVentasTicketsDetalle(ctx, f)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"nro_ticket", "fecha", "hora", "agencia", "usuario", "monto_apostado", "premio", "estado", "anulado"}}
			for _, v := range rows {
				t.Rows = append(t.Rows, []any{v.NroTicket, v.Fecha, v.Hora, v.Agencia, v.Usuario, v.MontoApostado, v.Premio, v.Estado, v.Anulado})
			}
			return t, nil
		}

	case "caballos_retirados":
		r, err := s.reports.GetCaballosRetirados(ctx, f)
		if err != nil {
			return Table{}, err
		}
		t := Table{Columns: []string{"fecha", "nro_caballo", "total_apostado", "monto_a_devolver", "monto_devuelto", "estado_devolucion"}}
		for _, v := range r.Data {
			t.Rows = append(t.Rows, []any{v.Fecha, v.NroCaballo, v.TotalApostado, v.MontoADevolver, v.MontoDevuelto, v.EstadoDevolucion})
		}
		return t, nil

	case "carreras":
		if esAdmin {
			r, err := s.reports.GetCarreras(ctx, f)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"numero_carrera", "fecha", "nombre_hipodromo", "estado_carrera"}}
			for _, v := range r.Data {
				t.Rows = append(t.Rows, []any{v.NumeroCarrera, v.Fecha, v.NombreHipodromo, v.EstadoCarrera})
			}
			return t, nil
		}

	default:
		return Table{}, fmt.Errorf("tipo de reporte no válido o no soportado: %s", reportType)
	}

	return Table{}, fmt.Errorf("tipo de reporte no compatible con tu rol: %s", reportType)
}

func formatResultados(resultados []reports.ResultadoCaballo) string {
	out := ""
	for i, r := range resultados {
		if i > 0 {
			out += " | "
		}
		out += fmt.Sprintf("%dº caballo %d", r.PosicionLlegada, r.IDCaballo)
	}
	return out
}
