package reports

import (
	"context"
	"fmt"
)

// ListaTicketsSummary is the ticket-sales overview shown on the dashboard.
type ListaTicketsSummary struct {
	TotalVendido      float64 `json:"total_vendido"`
	TotalGanadores    float64 `json:"total_ganadores"`
	TotalPagados      float64 `json:"total_pagados"`
	TotalDevoluciones float64 `json:"total_devoluciones"`
	Ganancia          float64 `json:"ganancia"`
}

// GetListaTickets aggregates sales, prizes and paid prizes over the ticket
// detail rows, optionally scoped to one agency.
func (s *Service) GetListaTickets(ctx context.Context, f Filters) (*ListaTicketsSummary, error) {
	var c cond
	dateRange(&c, "t.fecha", f)
	if f.AgenciaID > 0 {
		c.add("u.id_agencia = ?", f.AgenciaID)
	}

	query := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(dt.total_apostado), 0) AS total_vendido,
			COALESCE(SUM(CASE WHEN dt.premio = 'si' THEN dt.total_premio ELSE 0 END), 0) AS total_ganadores,
			COALESCE(SUM(CASE WHEN dt.premio = 'si' AND LOWER(TRIM(t.pagado)) = 'si' THEN dt.total_premio ELSE 0 END), 0) AS total_pagados
		FROM tbl_tickets t
		JOIN tbl_detalle_tickets dt ON t.id_ticket = dt.id_ticket
		JOIN tbl_usuarios u ON t.id_usuario = u.id_usuario
		%s`, c.where())

	var out ListaTicketsSummary
	err := s.db.Agencias().QueryRowContext(ctx, query, c.params...).
		Scan(&out.TotalVendido, &out.TotalGanadores, &out.TotalPagados)
	if err != nil {
		return nil, err
	}
	out.Ganancia = out.TotalVendido - out.TotalPagados
	return &out, nil
}

// AgenciaResumen is one row of the per-agency financial summary.
type AgenciaResumen struct {
	Agencia      string  `json:"agencia"`
	Anulados     int     `json:"anulados"`
	Vendidos     float64 `json:"vendidos"`
	Ganadores    float64 `json:"ganadores"`
	Pagados      float64 `json:"pagados"`
	Devoluciones float64 `json:"devoluciones"`
	Ganancia     float64 `json:"ganancia"`
}

// InformeAgencias groups the summary rows with their grand totals.
type InformeAgencias struct {
	Agencias []AgenciaResumen `json:"agencias"`
	Totales  AgenciaResumen   `json:"totales"`
}

// GetInformePorAgencia lists every agency with its sales, prizes and refunds.
// Date filters are applied inside the ticket join so agencies without tickets
// in the range still appear.
func (s *Service) GetInformePorAgencia(ctx context.Context, f Filters) (*InformeAgencias, error) {
	var c cond
	dateRange(&c, "t.fecha", f)

	query := fmt.Sprintf(`
		SELECT
			a.nombre_agencia AS agencia,
			COUNT(DISTINCT CASE WHEN t.anulado = 1 THEN t.id_ticket END) AS anulados,
			COALESCE(SUM(dt.total_apostado), 0) AS vendidos,
			COALESCE(SUM(CASE WHEN dt.premio = 'si' THEN dt.total_premio ELSE 0 END), 0) AS ganadores,
			COALESCE(SUM(CASE WHEN dt.premio = 'si' AND t.pagado = 'si' THEN dt.total_premio ELSE 0 END), 0) AS pagados,
			COALESCE(SUM(CASE WHEN td.id_ticket IS NOT NULL THEN dt.total_apostado ELSE 0 END), 0) AS devoluciones
		FROM tbl_agencias a
		LEFT JOIN tbl_usuarios u ON a.id_agencia = u.id_agencia
		LEFT JOIN tbl_tickets t ON u.id_usuario = t.id_usuario %s
		LEFT JOIN tbl_detalle_tickets dt ON t.id_ticket = dt.id_ticket
		LEFT JOIN tbl_tickets_devoluciones td ON t.id_ticket = td.id_ticket
		GROUP BY a.id_agencia, a.nombre_agencia
		ORDER BY a.nombre_agencia`, c.and())

	rows, err := s.db.Agencias().QueryContext(ctx, query, c.params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &InformeAgencias{}
	for rows.Next() {
		var a AgenciaResumen
		if err := rows.Scan(&a.Agencia, &a.Anulados, &a.Vendidos, &a.Ganadores, &a.Pagados, &a.Devoluciones); err != nil {
			return nil, err
		}
		a.Ganancia = a.Vendidos - a.Pagados - a.Devoluciones

		out.Totales.Vendidos += a.Vendidos
		out.Totales.Ganadores += a.Ganadores
		out.Totales.Pagados += a.Pagados
		out.Totales.Devoluciones += a.Devoluciones
		out.Totales.Ganancia += a.Ganancia
		out.Agencias = append(out.Agencias, a)
	}
	return out, rows.Err()
}

// CaballoRetirado is one last-minute withdrawn horse with its refund state.
type CaballoRetirado struct {
	Fecha            string  `json:"fecha"`
	NroCaballo       int     `json:"nro_caballo"`
	TotalApostado    float64 `json:"total_apostado"`
	MontoADevolver   float64 `json:"monto_a_devolver"`
	MontoDevuelto    float64 `json:"monto_devuelto"`
	EstadoDevolucion string  `json:"estado_devolucion"`
}

// CaballosRetirados is the paginated withdrawn-horses report.
type CaballosRetirados struct {
	Data           []CaballoRetirado `json:"data"`
	TotalRecords   int               `json:"total_records"`
	TotalGeneral   float64           `json:"total_general"`
	TotalADevolver float64           `json:"total_a_devolver"`
	TotalDevuelto  float64           `json:"total_devuelto"`
}

// GetCaballosRetirados reports every withdrawn horse, even those without bets.
func (s *Service) GetCaballosRetirados(ctx context.Context, f Filters) (*CaballosRetirados, error) {
	var c cond
	if f.FechaDesde != "" {
		c.add("cr.fecha >= ?", f.FechaDesde)
	}
	if f.FechaHasta != "" {
		c.add("cr.fecha <= ?", f.FechaHasta)
	}

	totalQuery := fmt.Sprintf(`
		SELECT
			COUNT(DISTINCT CONCAT(cr.fecha, '-', cr.nro_caballo, '-', cr.id_carrera)) AS total_records,
			COALESCE(SUM(CASE WHEN crd.devolucion = 0 THEN dt.total_apostado ELSE 0 END), 0) AS total_a_devolver,
			COALESCE(SUM(CASE WHEN crd.devolucion = 1 THEN dt.total_apostado ELSE 0 END), 0) AS total_devuelto,
			COALESCE(SUM(dt.total_apostado), 0) AS total_general
		FROM tbl_caballos_retirados_ultimo_momento cr
		LEFT JOIN tbl_caballos_retirados_um_detalle crd
			ON cr.id_caballo_retirado_ultimo_momento = crd.id_caballo_retirado_ultimo_momento
		LEFT JOIN tbl_detalle_tickets dt ON crd.id_detalle_ticket = dt.id_detalle_ticket
		WHERE 1=1 %s`, c.and())

	out := &CaballosRetirados{}
	err := s.db.Agencias().QueryRowContext(ctx, totalQuery, c.params...).
		Scan(&out.TotalRecords, &out.TotalADevolver, &out.TotalDevuelto, &out.TotalGeneral)
	if err != nil {
		return nil, err
	}

	dataQuery := fmt.Sprintf(`
		SELECT
			cr.fecha,
			cr.nro_caballo,
			COALESCE(SUM(dt.total_apostado), 0) AS total_apostado,
			COALESCE(SUM(CASE WHEN crd.devolucion = 0 THEN dt.total_apostado ELSE 0 END), 0) AS monto_a_devolver,
			COALESCE(SUM(CASE WHEN crd.devolucion = 1 THEN dt.total_apostado ELSE 0 END), 0) AS monto_devuelto,
			CASE
				WHEN SUM(dt.total_apostado) IS NULL OR SUM(dt.total_apostado) = 0 THEN 'Sin Apuestas'
				WHEN SUM(CASE WHEN crd.devolucion = 0 THEN 1 ELSE 0 END) > 0
					AND SUM(CASE WHEN crd.devolucion = 1 THEN 1 ELSE 0 END) > 0 THEN 'Parcial'
				WHEN SUM(CASE WHEN crd.devolucion = 1 THEN 1 ELSE 0 END) > 0 THEN 'Devuelto'
				ELSE 'Pendiente'
			END AS estado_devolucion
		FROM tbl_caballos_retirados_ultimo_momento cr
		LEFT JOIN tbl_caballos_retirados_um_detalle crd
			ON cr.id_caballo_retirado_ultimo_momento = crd.id_caballo_retirado_ultimo_momento
		LEFT JOIN tbl_detalle_tickets dt ON crd.id_detalle_ticket = dt.id_detalle_ticket
		WHERE 1=1 %s
		GROUP BY cr.fecha, cr.nro_caballo, cr.id_carrera
		ORDER BY cr.fecha DESC, cr.nro_caballo ASC
		%s`, c.and(), limitClause(f))

	rows, err := s.db.Agencias().QueryContext(ctx, dataQuery, c.params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var r CaballoRetirado
		if err := rows.Scan(&r.Fecha, &r.NroCaballo, &r.TotalApostado, &r.MontoADevolver, &r.MontoDevuelto, &r.EstadoDevolucion); err != nil {
			return nil, err
		}
		out.Data = append(out.Data, r)
	}
	return out, rows.Err()
}

// Carrera is one row of the races listing.
type Carrera struct {
	NumeroCarrera    int    `json:"numero_carrera"`
	Fecha            string `json:"fecha"`
	NombreHipodromo  string `json:"nombre_hipodromo"`
	EstadoCarrera    string `json:"estado_carrera"`
	CarreraInternaID int    `json:"carrera_interna_id"`
}

// Carreras is the paginated races report.
type Carreras struct {
	Data         []Carrera `json:"data"`
	TotalRecords int       `json:"total_records"`
}

// GetCarreras lists races with their racetrack and status.
func (s *Service) GetCarreras(ctx context.Context, f Filters) (*Carreras, error) {
	var c cond
	if f.NumeroCarrera > 0 {
		c.add("c.numero_carrera = ?", f.NumeroCarrera)
	}
	dateRange(&c, "c.fecha", f)
	if f.HipodromoID > 0 {
		c.add("c.id_hipodromo = ?", f.HipodromoID)
	}

	totalQuery := fmt.Sprintf(`
		SELECT COUNT(*) AS total_records
		FROM tbl_carreras c
		INNER JOIN tbl_hipodromos h ON c.id_hipodromo = h.id_hipodromo
		INNER JOIN tbl_estados_carreras ec ON c.id_estado = ec.id_estado
		%s`, c.where())

	out := &Carreras{}
	if err := s.db.Agencias().QueryRowContext(ctx, totalQuery, c.params...).Scan(&out.TotalRecords); err != nil {
		return nil, err
	}

	dataQuery := fmt.Sprintf(`
		SELECT
			c.numero_carrera,
			c.fecha,
			h.nombre_hipodromo,
			ec.estado_carrera,
			c.id_carrera AS carrera_interna_id
		FROM tbl_carreras c
		INNER JOIN tbl_hipodromos h ON c.id_hipodromo = h.id_hipodromo
		INNER JOIN tbl_estados_carreras ec ON c.id_estado = ec.id_estado
		%s
		ORDER BY STR_TO_DATE(c.fecha, '%%d/%%m/%%Y') DESC, c.numero_carrera ASC
		%s`, c.where(), limitClause(f))

	rows, err := s.db.Agencias().QueryContext(ctx, dataQuery, c.params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var r Carrera
		if err := rows.Scan(&r.NumeroCarrera, &r.Fecha, &r.NombreHipodromo, &r.EstadoCarrera, &r.CarreraInternaID); err != nil {
			return nil, err
		}
		out.Data = append(out.Data, r)
	}
	return out, rows.Err()
}

// ResultadoCaballo is one horse's finishing position and dividends.
type ResultadoCaballo struct {
	IDCaballo       int     `json:"id_caballo"`
	PosicionLlegada int     `json:"posicion_llegada"`
	SportGanador    float64 `json:"sport_ganador"`
	SportSegundo    float64 `json:"sport_segundo"`
	SportTercero    float64 `json:"sport_tercero"`
	NumeroCarrera   int     `json:"numero_carrera,omitempty"`
	Fecha           string  `json:"fecha,omitempty"`
	NombreHipodromo string  `json:"nombre_hipodromo,omitempty"`
	IDCarrera       int     `json:"id_carrera,omitempty"`
}

// ResultadosCarrera wraps the per-race result rows.
type ResultadosCarrera struct {
	ResultadosCaballos []ResultadoCaballo `json:"resultados_caballos"`
}

// GetResultadosCarrera fetches the result board of one race.
func (s *Service) GetResultadosCarrera(ctx context.Context, idCarrera int) (*ResultadosCarrera, error) {
	const query = `
		SELECT
			cs.id_caballo,
			cs.posicion_llegada,
			cs.sport_ganador,
			cs.sport_segundo,
			cs.sport_tercero,
			c.numero_carrera,
			c.fecha,
			h.nombre_hipodromo
		FROM tbl_caballos_sports cs
		INNER JOIN tbl_carreras c ON cs.id_carrera = c.id_carrera
		INNER JOIN tbl_hipodromos h ON c.id_hipodromo = h.id_hipodromo
		WHERE cs.id_carrera = ?
		ORDER BY cs.posicion_llegada ASC`

	rows, err := s.db.Agencias().QueryContext(ctx, query, idCarrera)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &ResultadosCarrera{}
	for rows.Next() {
		var r ResultadoCaballo
		if err := rows.Scan(&r.IDCaballo, &r.PosicionLlegada, &r.SportGanador, &r.SportSegundo, &r.SportTercero,
			&r.NumeroCarrera, &r.Fecha, &r.NombreHipodromo); err != nil {
			return nil, err
		}
		out.ResultadosCaballos = append(out.ResultadosCaballos, r)
	}
	return out, rows.Err()
}

// TicketAnulado is one voided ticket with its agency context.
type TicketAnulado struct {
	NroTicket     string  `json:"nro_ticket"`
	Fecha         string  `json:"fecha"`
	Hora          string  `json:"hora"`
	NombreUsuario string  `json:"nombre_usuario"`
	NombreAgencia string  `json:"nombre_agencia"`
	TotalApostado float64 `json:"total_apostado"`
}

// TicketsAnulados is the paginated voided-tickets report.
type TicketsAnulados struct {
	Data         []TicketAnulado `json:"data"`
	TotalRecords int             `json:"total_records"`
	TotalAnulado float64         `json:"total_anulado"`
}

// GetTicketsAnulados reports voided tickets across all agencies.
func (s *Service) GetTicketsAnulados(ctx context.Context, f Filters) (*TicketsAnulados, error) {
	var c cond
	dateRange(&c, "t.fecha", f)
	if f.AgenciaID > 0 {
		c.add("u.id_agencia = ?", f.AgenciaID)
	}

	totalQuery := fmt.Sprintf(`
		SELECT
			COUNT(DISTINCT t.id_ticket) AS total_records,
			COALESCE(SUM(dt.total_apostado), 0) AS total_anulado
		FROM tbl_tickets t
		INNER JOIN tbl_usuarios u ON t.id_usuario = u.id_usuario
		INNER JOIN tbl_agencias a ON u.id_agencia = a.id_agencia
		INNER JOIN tbl_detalle_tickets dt ON t.id_ticket = dt.id_ticket
		WHERE t.anulado = 1 %s`, c.and())

	out := &TicketsAnulados{}
	err := s.db.Agencias().QueryRowContext(ctx, totalQuery, c.params...).
		Scan(&out.TotalRecords, &out.TotalAnulado)
	if err != nil {
		return nil, err
	}

	dataQuery := fmt.Sprintf(`
		SELECT
			t.nro_ticket,
			t.fecha,
			t.hora,
			u.nombre_usuario,
			a.nombre_agencia,
			SUM(dt.total_apostado) AS total_apostado
		FROM tbl_tickets t
		INNER JOIN tbl_usuarios u ON t.id_usuario = u.id_usuario
		INNER JOIN tbl_agencias a ON u.id_agencia = a.id_agencia
		INNER JOIN tbl_detalle_tickets dt ON t.id_ticket = dt.id_ticket
		WHERE t.anulado = 1 %s
		GROUP BY t.id_ticket, t.nro_ticket, t.fecha, t.hora, u.nombre_usuario, a.nombre_agencia
		ORDER BY STR_TO_DATE(t.fecha, '%%d/%%m/%%Y') DESC, t.hora DESC
		%s`, c.and(), limitClause(f))

	rows, err := s.db.Agencias().QueryContext(ctx, dataQuery, c.params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var r TicketAnulado
		if err := rows.Scan(&r.NroTicket, &r.Fecha, &r.Hora, &r.NombreUsuario, &r.NombreAgencia, &r.TotalApostado); err != nil {
			return nil, err
		}
		out.Data = append(out.Data, r)
	}
	return out, rows.Err()
}

// TicketDetalle is one fully joined ticket row, used only by exports.
type TicketDetalle struct {
	NroTicket     string  `json:"nro_ticket"`
	Fecha         string  `json:"fecha"`
	Hora          string  `json:"hora"`
	Agencia       string  `json:"agencia"`
	Usuario       string  `json:"usuario"`
	MontoApostado float64 `json:"monto_apostado"`
	Premio        float64 `json:"premio"`
	Estado        string  `json:"estado"`
	Anulado       string  `json:"anulado"`
}

// GetVentasTicketsDetalle lists every ticket with its agency, user and prize
// state, for the admin ventas_tickets export.
func (s *Service) GetVentasTicketsDetalle(ctx context.Context, f Filters) ([]TicketDetalle, error) {
	var c cond
	dateRange(&c, "t.fecha", f)
	if f.AgenciaID > 0 {
		c.add("u.id_agencia = ?", f.AgenciaID)
	}

	query := fmt.Sprintf(`
		SELECT
			t.nro_ticket,
			t.fecha,
			t.hora,
			a.nombre_agencia,
			u.nombre_usuario,
			dt.total_apostado,
			CASE WHEN dt.premio = 'si' THEN dt.total_premio ELSE 0 END AS premio,
			CASE WHEN t.pagado = 'si' THEN 'Pagado' ELSE 'Pendiente' END AS estado,
			CASE WHEN t.anulado = 1 THEN 'Si' ELSE 'No' END AS anulado
		FROM tbl_tickets t
		JOIN tbl_detalle_tickets dt ON t.id_ticket = dt.id_ticket
		JOIN tbl_usuarios u ON t.id_usuario = u.id_usuario
		JOIN tbl_agencias a ON u.id_agencia = a.id_agencia
		%s
		ORDER BY STR_TO_DATE(t.fecha, '%%d/%%m/%%Y') DESC, t.hora DESC`, c.where())

	rows, err := s.db.Agencias().QueryContext(ctx, query, c.params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TicketDetalle
	for rows.Next() {
		var r TicketDetalle
		if err := rows.Scan(&r.NroTicket, &r.Fecha, &r.Hora, &r.Agencia, &r.Usuario, &r.MontoApostado, &r.Premio, &r.Estado, &r.Anulado); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func limitClause(f Filters) string {
	if !f.paginated() {
		return ""
	}
	return fmt.Sprintf("LIMIT %d OFFSET %d", f.limit(), f.Offset)
}
