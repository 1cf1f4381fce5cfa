package reports

import (
	"context"
	"fmt"
)

// Reports over the appweb database, the online betting platform. These run
// against the second connection of the router and never touch agency tables.

// UsuarioResumen is one player's financial summary row.
type UsuarioResumen struct {
	IDUsuario      int     `json:"id_usuario"`
	NombreCompleto string  `json:"nombre_completo"`
	Email          string  `json:"email"`
	SaldoCredito   float64 `json:"saldo_credito"`
	TotalApostado  float64 `json:"total_apostado"`
	TotalPremios   float64 `json:"total_premios"`
	Diferencia     float64 `json:"diferencia"`
	TotalJugadas   int     `json:"total_jugadas"`
}

// PorUsuarioKPIs are the header figures of the per-player report.
type PorUsuarioKPIs struct {
	TotalUsuarios int     `json:"total_usuarios"`
	TotalApostado float64 `json:"total_apostado"`
	TotalPremios  float64 `json:"total_premios"`
	GananciaCasa  float64 `json:"ganancia_casa"`
}

// PorUsuario is the per-player performance report.
type PorUsuario struct {
	Data         []UsuarioResumen `json:"data"`
	TotalRecords int              `json:"total_records"`
	KPIs         PorUsuarioKPIs   `json:"kpis"`
}

// GetPorUsuario summarizes each player's bets and prizes. Players without any
// bets are dropped.
func (s *Service) GetPorUsuario(ctx context.Context, f Filters) (*PorUsuario, error) {
	var c cond
	if f.BuscarUsuario != "" {
		c.add("CONCAT(u.nombre, ' ', u.apellido) LIKE ?", "%"+f.BuscarUsuario+"%")
	}

	query := fmt.Sprintf(`
		SELECT
			u.id_usuario,
			u.nombre AS nombre_completo,
			u.email,
			COALESCE(u.credito_disponible, 0) AS saldo_credito,
			COALESCE(SUM(dj.total_apostado), 0) AS total_apostado,
			COALESCE(SUM(CASE WHEN dj.premio = 'si' THEN dj.total_premio ELSE 0 END), 0) AS total_premios,
			(COALESCE(SUM(CASE WHEN dj.premio = 'si' THEN dj.total_premio ELSE 0 END), 0) - COALESCE(SUM(dj.total_apostado), 0)) AS diferencia,
			COUNT(DISTINCT j.nro_jugada) AS total_jugadas
		FROM tbl_usuarios u
		LEFT JOIN tbl_jugadas j ON u.id_usuario = j.id_usuario
		LEFT JOIN tbl_detalle_jugada dj ON j.id_jugada = dj.id_jugada
		%s
		GROUP BY u.id_usuario, u.nombre, u.email, u.credito_disponible
		HAVING total_apostado > 0
		ORDER BY diferencia DESC`, c.where())

	rows, err := s.db.AppWeb().QueryContext(ctx, query, c.params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &PorUsuario{}
	for rows.Next() {
		var r UsuarioResumen
		if err := rows.Scan(&r.IDUsuario, &r.NombreCompleto, &r.Email, &r.SaldoCredito,
			&r.TotalApostado, &r.TotalPremios, &r.Diferencia, &r.TotalJugadas); err != nil {
			return nil, err
		}
		out.KPIs.TotalApostado += r.TotalApostado
		out.KPIs.TotalPremios += r.TotalPremios
		out.Data = append(out.Data, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out.TotalRecords = len(out.Data)
	out.KPIs.TotalUsuarios = len(out.Data)
	out.KPIs.GananciaCasa = out.KPIs.TotalApostado - out.KPIs.TotalPremios
	return out, nil
}

// JugadaDetalle is one bet row of a player's expandable detail table.
type JugadaDetalle struct {
	FechaJugada       string  `json:"fecha_jugada"`
	NroJugada         string  `json:"nro_jugada"`
	NumeroCarrera     int     `json:"numero_carrera"`
	NombreHipodromo   string  `json:"nombre_hipodromo"`
	TipoApuesta       string  `json:"tipo_apuesta"`
	MontoApostado     float64 `json:"monto_apostado"`
	PremioGanado      float64 `json:"premio_ganado"`
	Resultado         float64 `json:"resultado"`
	GanoPremio        string  `json:"gano_premio"`
	CaballosApostados string  `json:"caballos_apostados"`
}

// DetalleUsuario wraps a player's bet detail listing.
type DetalleUsuario struct {
	Data         []JugadaDetalle `json:"data"`
	TotalRecords int             `json:"total_records"`
}

// GetDetalleUsuario lists every bet of one player with race and bet type.
func (s *Service) GetDetalleUsuario(ctx context.Context, idUsuario int) (*DetalleUsuario, error) {
	const query = `
		SELECT
			DATE(NOW()) AS fecha_jugada,
			j.nro_jugada,
			c.numero_carrera,
			h.nombre_hipodromo,
			ta.nombre_apuesta AS tipo_apuesta,
			dj.total_apostado AS monto_apostado,
			CASE WHEN dj.premio = 'si' THEN dj.total_premio ELSE 0 END AS premio_ganado,
			(CASE WHEN dj.premio = 'si' THEN dj.total_premio ELSE 0 END - dj.total_apostado) AS resultado,
			dj.premio AS gano_premio,
			COALESCE(GROUP_CONCAT(cj.nro_caballo ORDER BY cj.nro_caballo), '') AS caballos_apostados
		FROM tbl_jugadas j
		INNER JOIN tbl_detalle_jugada dj ON j.id_jugada = dj.id_jugada
		INNER JOIN tbl_carreras c ON j.id_carrera = c.id_carrera
		INNER JOIN tbl_hipodromos h ON c.id_hipodromo = h.id_hipodromo
		INNER JOIN tbl_apuestas ta ON dj.id_apuesta = ta.id_apuesta
		LEFT JOIN tbl_caballos_jugadas cj ON dj.id_detalle_jugada = cj.id_detalle_jugada
		WHERE j.id_usuario = ?
		GROUP BY j.nro_jugada, dj.id_detalle_jugada
		ORDER BY j.nro_jugada DESC, c.numero_carrera ASC`

	rows, err := s.db.AppWeb().QueryContext(ctx, query, idUsuario)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &DetalleUsuario{}
	for rows.Next() {
		var r JugadaDetalle
		if err := rows.Scan(&r.FechaJugada, &r.NroJugada, &r.NumeroCarrera, &r.NombreHipodromo,
			&r.TipoApuesta, &r.MontoApostado, &r.PremioGanado, &r.Resultado, &r.GanoPremio, &r.CaballosApostados); err != nil {
			return nil, err
		}
		out.Data = append(out.Data, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out.TotalRecords = len(out.Data)
	return out, nil
}

// EconomicoKPIs are the credit and debit totals over user balances.
type EconomicoKPIs struct {
	TotalAcreditado float64 `json:"total_acreditado"`
	TotalDebitado   float64 `json:"total_debitado"`
	Diferencia      float64 `json:"diferencia"`
}

// Economico is the cash-flow report. It carries no table rows.
type Economico struct {
	Data         []struct{}    `json:"data"`
	TotalRecords int           `json:"total_records"`
	KPIs         EconomicoKPIs `json:"kpis"`
}

// GetEconomico sums credits and debits over the user balance movements.
// Concepts 1, 2, 3, 6 and 9 credit the account; 4, 5 and 7 debit it.
func (s *Service) GetEconomico(ctx context.Context, f Filters) (*Economico, error) {
	var c cond
	if f.FechaDesde != "" {
		c.add("DATE(b.fecha) >= ?", f.FechaDesde)
	}
	if f.FechaHasta != "" {
		c.add("DATE(b.fecha) <= ?", f.FechaHasta)
	}

	query := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(CASE WHEN b.id_concepto IN (1,2,3,6,9) THEN b.credito ELSE 0 END), 0) AS total_acreditado,
			COALESCE(SUM(CASE WHEN b.id_concepto IN (4,5,7) THEN b.debito ELSE 0 END), 0) AS total_debitado
		FROM tbl_balances_usuarios b
		%s`, c.where())

	out := &Economico{Data: []struct{}{}}
	err := s.db.AppWeb().QueryRowContext(ctx, query, c.params...).
		Scan(&out.KPIs.TotalAcreditado, &out.KPIs.TotalDebitado)
	if err != nil {
		return nil, err
	}
	out.KPIs.Diferencia = out.KPIs.TotalAcreditado - out.KPIs.TotalDebitado
	return out, nil
}

// DineroRemanente is the platform's outstanding balance toward its players.
type DineroRemanente struct {
	Data         []struct{} `json:"data"`
	TotalRecords int        `json:"total_records"`
	KPIs         struct {
		TotalDineroRemanente float64 `json:"total_dinero_remanente"`
	} `json:"kpis"`
}

// GetDineroRemanente sums the available credit across every player account.
func (s *Service) GetDineroRemanente(ctx context.Context) (*DineroRemanente, error) {
	const query = `SELECT COALESCE(SUM(u.credito_disponible), 0) FROM tbl_usuarios u`

	out := &DineroRemanente{Data: []struct{}{}}
	if err := s.db.AppWeb().QueryRowContext(ctx, query).Scan(&out.KPIs.TotalDineroRemanente); err != nil {
		return nil, err
	}
	return out, nil
}

// ApuestasKPIs are the day's bet intake figures.
type ApuestasKPIs struct {
	TotalIngresoApuestas float64 `json:"total_ingreso_apuestas"`
	TotalPremiosPagados  float64 `json:"total_premios_pagados"`
	Diferencia           float64 `json:"diferencia"`
}

// Apuestas is the daily bets summary. It carries no table rows.
type Apuestas struct {
	Data         []struct{}   `json:"data"`
	TotalRecords int          `json:"total_records"`
	KPIs         ApuestasKPIs `json:"kpis"`
}

// GetApuestas summarizes bet intake and paid prizes. Without date filters it
// covers the current day.
func (s *Service) GetApuestas(ctx context.Context, f Filters) (*Apuestas, error) {
	var c cond
	if f.FechaDesde != "" {
		c.add("DATE(j.fecha) >= ?", f.FechaDesde)
	}
	if f.FechaHasta != "" {
		c.add("DATE(j.fecha) <= ?", f.FechaHasta)
	}
	if len(c.clauses) == 0 {
		c.add("DATE(j.fecha) = CURDATE()")
	}

	query := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(dj.total_apostado), 0) AS total_ingreso_apuestas,
			COALESCE(SUM(CASE WHEN dj.premio = 'si' THEN dj.total_premio ELSE 0 END), 0) AS total_premios_pagados
		FROM tbl_detalle_jugada dj
		INNER JOIN tbl_jugadas j ON dj.id_jugada = j.id_jugada
		%s`, c.where())

	out := &Apuestas{Data: []struct{}{}}
	err := s.db.AppWeb().QueryRowContext(ctx, query, c.params...).
		Scan(&out.KPIs.TotalIngresoApuestas, &out.KPIs.TotalPremiosPagados)
	if err != nil {
		return nil, err
	}
	out.KPIs.Diferencia = out.KPIs.TotalIngresoApuestas - out.KPIs.TotalPremiosPagados
	return out, nil
}

// ApuestaCarrera is one individual bet of the per-race performance listing.
type ApuestaCarrera struct {
	NroJugada             string  `json:"nro_jugada"`
	NombreUsuario         string  `json:"nombre_usuario"`
	Fecha                 string  `json:"fecha"`
	Hora                  string  `json:"hora"`
	TipoApuesta           string  `json:"tipo_apuesta"`
	CaballosSeleccionados string  `json:"caballos_seleccionados"`
	MontoApostado         float64 `json:"monto_apostado"`
	MontoGanado           float64 `json:"monto_ganado"`
	EstadoApuesta         string  `json:"estado_apuesta"`
}

// RendimientoApuestaCarrera wraps the per-race bet listing.
type RendimientoApuestaCarrera struct {
	Data         []ApuestaCarrera `json:"data"`
	TotalRecords int              `json:"total_records"`
}

// GetRendimientoApuestaCarrera lists each individual bet placed on a race
// with its selected horses and outcome.
func (s *Service) GetRendimientoApuestaCarrera(ctx context.Context, f Filters) (*RendimientoApuestaCarrera, error) {
	var c cond
	if f.FechaDesde != "" {
		c.add("DATE(j.fecha) >= ?", f.FechaDesde)
	}
	if f.FechaHasta != "" {
		c.add("DATE(j.fecha) <= ?", f.FechaHasta)
	}
	if f.CarreraID > 0 {
		c.add("j.id_carrera = ?", f.CarreraID)
	}

	query := fmt.Sprintf(`
		SELECT
			j.nro_jugada,
			u.nombre AS nombre_usuario,
			j.fecha,
			j.hora,
			a.nombre_apuesta AS tipo_apuesta,
			COALESCE(GROUP_CONCAT(cj.nro_caballo ORDER BY cj.ubicacion_caballo SEPARATOR '-'), '') AS caballos_seleccionados,
			dj.total_apostado AS monto_apostado,
			CASE WHEN j.premio = 'si' THEN dj.total_premio ELSE 0 END AS monto_ganado,
			CASE
				WHEN j.cancelado = 1 THEN 'Cancelada'
				WHEN j.anulado = 1 THEN 'Anulada'
				WHEN j.premio = 'si' THEN 'Ganadora'
				ELSE 'Perdedora'
			END AS estado_apuesta
		FROM tbl_jugadas j
		INNER JOIN tbl_usuarios u ON j.id_usuario = u.id_usuario
		INNER JOIN tbl_detalle_jugada dj ON j.id_jugada = dj.id_jugada
		INNER JOIN tbl_apuestas a ON dj.id_apuesta = a.id_apuesta
		LEFT JOIN tbl_caballos_jugadas cj ON dj.id_detalle_jugada = cj.id_detalle_jugada
		%s
		GROUP BY j.id_jugada, dj.id_detalle_jugada
		ORDER BY j.fecha DESC, j.hora DESC`, c.where())

	rows, err := s.db.AppWeb().QueryContext(ctx, query, c.params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &RendimientoApuestaCarrera{}
	for rows.Next() {
		var r ApuestaCarrera
		if err := rows.Scan(&r.NroJugada, &r.NombreUsuario, &r.Fecha, &r.Hora, &r.TipoApuesta,
			&r.CaballosSeleccionados, &r.MontoApostado, &r.MontoGanado, &r.EstadoApuesta); err != nil {
			return nil, err
		}
		out.Data = append(out.Data, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out.TotalRecords = len(out.Data)
	return out, nil
}
