package reports

import (
	"context"
	"fmt"
	"strings"
)

// VentaDiaria is one ticket row of the agency daily-sales listing.
type VentaDiaria struct {
	NroTicket    string  `json:"nro_ticket"`
	TotalPremio  float64 `json:"total_premio"`
	Devoluciones float64 `json:"devoluciones"`
	TotalTicket  float64 `json:"total_ticket"`
}

// VentasDiariasTotales holds the summary cards shown above the listing.
type VentasDiariasTotales struct {
	TotalVendidos     float64 `json:"total_vendidos"`
	TotalGanadores    float64 `json:"total_ganadores"`
	TotalPagados      float64 `json:"total_pagados"`
	TotalDevoluciones float64 `json:"total_devoluciones"`
}

// VentasDiarias is the agency daily-sales report.
type VentasDiarias struct {
	Listado []VentaDiaria        `json:"listado"`
	Totales VentasDiariasTotales `json:"totales"`
}

// GetVentasDiariasAgencia lists the agency's tickets with their prizes and
// last-minute-withdrawal refunds, plus the aggregated totals. Tickets where
// every amount is zero are dropped.
func (s *Service) GetVentasDiariasAgencia(ctx context.Context, idAgencia int, f Filters) (*VentasDiarias, error) {
	var c cond
	c.add("u.id_agencia = ?", idAgencia)
	dateRange(&c, "t.fecha", f)

	listQuery := fmt.Sprintf(`
		SELECT
			t.nro_ticket,
			COALESCE(SUM(dt.total_premio), 0) AS total_premio,
			COALESCE((
				SELECT SUM(dt_ret.total_apostado)
				FROM tbl_caballos_retirados_um_detalle crd
				JOIN tbl_detalle_tickets dt_ret ON crd.id_detalle_ticket = dt_ret.id_detalle_ticket
				WHERE dt_ret.id_ticket = t.id_ticket AND crd.devolucion = 1
			), 0) AS devoluciones,
			COALESCE(SUM(dt.total_apostado), 0) AS total_ticket
		FROM tbl_tickets t
		JOIN tbl_usuarios u ON t.id_usuario = u.id_usuario
		LEFT JOIN tbl_detalle_tickets dt ON t.id_ticket = dt.id_ticket
		%s
		GROUP BY t.id_ticket, t.nro_ticket
		HAVING NOT (total_premio = 0 AND devoluciones = 0 AND total_ticket = 0)
		ORDER BY t.nro_ticket ASC`, c.where())

	rows, err := s.db.Agencias().QueryContext(ctx, listQuery, c.params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &VentasDiarias{}
	for rows.Next() {
		var v VentaDiaria
		if err := rows.Scan(&v.NroTicket, &v.TotalPremio, &v.Devoluciones, &v.TotalTicket); err != nil {
			return nil, err
		}
		out.Listado = append(out.Listado, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalesQuery := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(dt.total_apostado), 0) AS total_vendidos,
			COALESCE(SUM(CASE WHEN dt.premio = 'si' THEN dt.total_premio ELSE 0 END), 0) AS total_ganadores,
			COALESCE(SUM(CASE WHEN dt.premio = 'si' AND LOWER(TRIM(t.pagado)) = 'si' THEN dt.total_premio ELSE 0 END), 0) AS total_pagados
		FROM tbl_tickets t
		JOIN tbl_usuarios u ON t.id_usuario = u.id_usuario
		LEFT JOIN tbl_detalle_tickets dt ON t.id_ticket = dt.id_ticket
		%s`, c.where())

	err = s.db.Agencias().QueryRowContext(ctx, totalesQuery, c.params...).
		Scan(&out.Totales.TotalVendidos, &out.Totales.TotalGanadores, &out.Totales.TotalPagados)
	if err != nil {
		return nil, err
	}

	devolucionesQuery := fmt.Sprintf(`
		SELECT COALESCE(SUM(dt.total_apostado), 0) AS total_devoluciones
		FROM tbl_caballos_retirados_um_detalle crd
		JOIN tbl_detalle_tickets dt ON crd.id_detalle_ticket = dt.id_detalle_ticket
		JOIN tbl_tickets t ON dt.id_ticket = t.id_ticket
		JOIN tbl_usuarios u ON t.id_usuario = u.id_usuario
		WHERE crd.devolucion = 1 %s`, c.and())

	err = s.db.Agencias().QueryRowContext(ctx, devolucionesQuery, c.params...).
		Scan(&out.Totales.TotalDevoluciones)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TicketDevolucion is one refunded ticket row.
type TicketDevolucion struct {
	NroTicket     string  `json:"nro_ticket"`
	Fecha         string  `json:"fecha"`
	TotalApostado float64 `json:"total_apostado"`
}

// TicketsDevoluciones wraps the agency refunds listing.
type TicketsDevoluciones struct {
	Data []TicketDevolucion `json:"data"`
}

// GetTicketsDevolucionesAgencia lists the agency's tickets with refunds.
func (s *Service) GetTicketsDevolucionesAgencia(ctx context.Context, idAgencia int, f Filters) (*TicketsDevoluciones, error) {
	var c cond
	c.add("u.id_agencia = ?", idAgencia)
	dateRange(&c, "t.fecha", f)

	query := fmt.Sprintf(`
		SELECT t.nro_ticket, t.fecha, dt.total_apostado
		FROM tbl_tickets_devoluciones td
		JOIN tbl_tickets t ON td.id_ticket = t.id_ticket
		JOIN tbl_detalle_tickets dt ON t.id_ticket = dt.id_ticket
		JOIN tbl_usuarios u ON t.id_usuario = u.id_usuario
		%s
		ORDER BY STR_TO_DATE(t.fecha, '%%d/%%m/%%Y') DESC`, c.where())

	rows, err := s.db.Agencias().QueryContext(ctx, query, c.params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &TicketsDevoluciones{}
	for rows.Next() {
		var r TicketDevolucion
		if err := rows.Scan(&r.NroTicket, &r.Fecha, &r.TotalApostado); err != nil {
			return nil, err
		}
		out.Data = append(out.Data, r)
	}
	return out, rows.Err()
}

// SportsCarrera is one finished race with its nested result board.
type SportsCarrera struct {
	IDCarrera          int                `json:"id_carrera"`
	Fecha              string             `json:"fecha"`
	NumeroCarrera      int                `json:"numero_carrera"`
	NombreHipodromo    string             `json:"nombre_hipodromo"`
	EmpatePuesto       int                `json:"empate_puesto"`
	EstadoCarrera      string             `json:"estado_carrera"`
	ResultadosCaballos []ResultadoCaballo `json:"resultados_caballos"`
}

// SportsCarreras wraps the agency sports report.
type SportsCarreras struct {
	Carreras []SportsCarrera `json:"carreras"`
}

// GetSportsCarrerasAgencia lists finished races with their dividends. Only
// races in the finished state (id_estado 3) are included.
func (s *Service) GetSportsCarrerasAgencia(ctx context.Context, f Filters) (*SportsCarreras, error) {
	var c cond
	c.add("c.id_estado = ?", 3)
	dateRange(&c, "c.fecha", f)

	query := fmt.Sprintf(`
		SELECT
			c.id_carrera,
			c.fecha,
			c.numero_carrera,
			h.nombre_hipodromo,
			c.empate_puesto,
			ec.estado_carrera
		FROM tbl_carreras c
		INNER JOIN tbl_hipodromos h ON c.id_hipodromo = h.id_hipodromo
		INNER JOIN tbl_estados_carreras ec ON c.id_estado = ec.id_estado
		%s
		ORDER BY h.nombre_hipodromo, c.numero_carrera ASC`, c.where())

	rows, err := s.db.Agencias().QueryContext(ctx, query, c.params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &SportsCarreras{}
	index := map[int]int{}
	for rows.Next() {
		var r SportsCarrera
		if err := rows.Scan(&r.IDCarrera, &r.Fecha, &r.NumeroCarrera, &r.NombreHipodromo, &r.EmpatePuesto, &r.EstadoCarrera); err != nil {
			return nil, err
		}
		r.ResultadosCaballos = []ResultadoCaballo{}
		index[r.IDCarrera] = len(out.Carreras)
		out.Carreras = append(out.Carreras, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out.Carreras) == 0 {
		return out, nil
	}

	placeholders := make([]string, 0, len(out.Carreras))
	ids := make([]any, 0, len(out.Carreras))
	for _, carrera := range out.Carreras {
		placeholders = append(placeholders, "?")
		ids = append(ids, carrera.IDCarrera)
	}

	resultQuery := fmt.Sprintf(`
		SELECT
			cs.id_carrera,
			cs.id_caballo,
			cs.posicion_llegada,
			cs.sport_ganador,
			cs.sport_segundo,
			cs.sport_tercero
		FROM tbl_caballos_sports cs
		WHERE cs.id_carrera IN (%s)
		ORDER BY cs.id_carrera, cs.posicion_llegada ASC`, strings.Join(placeholders, ","))

	resultRows, err := s.db.Agencias().QueryContext(ctx, resultQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer resultRows.Close()

	for resultRows.Next() {
		var r ResultadoCaballo
		if err := resultRows.Scan(&r.IDCarrera, &r.IDCaballo, &r.PosicionLlegada, &r.SportGanador, &r.SportSegundo, &r.SportTercero); err != nil {
			return nil, err
		}
		if i, ok := index[r.IDCarrera]; ok {
			out.Carreras[i].ResultadosCaballos = append(out.Carreras[i].ResultadosCaballos, r)
		}
	}
	return out, resultRows.Err()
}

// TicketAnuladoAgencia is one voided ticket of the agency listing.
type TicketAnuladoAgencia struct {
	NroTicket     string  `json:"nro_ticket"`
	Fecha         string  `json:"fecha"`
	Hora          string  `json:"hora"`
	NombreUsuario string  `json:"nombre_usuario"`
	TotalApostado float64 `json:"total_apostado"`
}

// TicketsAnuladosAgencia wraps the agency voided-tickets listing.
type TicketsAnuladosAgencia struct {
	Data []TicketAnuladoAgencia `json:"data"`
}

// GetTicketsAnuladosAgencia lists the agency's own voided tickets.
func (s *Service) GetTicketsAnuladosAgencia(ctx context.Context, idAgencia int, f Filters) (*TicketsAnuladosAgencia, error) {
	var c cond
	c.add("u.id_agencia = ?", idAgencia)
	c.add("t.anulado = 1")
	dateRange(&c, "t.fecha", f)

	query := fmt.Sprintf(`
		SELECT t.nro_ticket, t.fecha, t.hora, u.nombre_usuario, SUM(dt.total_apostado) AS total_apostado
		FROM tbl_tickets t
		JOIN tbl_usuarios u ON t.id_usuario = u.id_usuario
		JOIN tbl_detalle_tickets dt ON t.id_ticket = dt.id_ticket
		%s
		GROUP BY t.id_ticket, t.nro_ticket, t.fecha, t.hora, u.nombre_usuario
		ORDER BY STR_TO_DATE(t.fecha, '%%d/%%m/%%Y') DESC, t.hora DESC`, c.where())

	rows, err := s.db.Agencias().QueryContext(ctx, query, c.params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &TicketsAnuladosAgencia{}
	for rows.Next() {
		var r TicketAnuladoAgencia
		if err := rows.Scan(&r.NroTicket, &r.Fecha, &r.Hora, &r.NombreUsuario, &r.TotalApostado); err != nil {
			return nil, err
		}
		out.Data = append(out.Data, r)
	}
	return out, rows.Err()
}
