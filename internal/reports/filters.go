package reports

import (
	"net/http"
	"strconv"
)

const defaultPageSize = 100

// Filters carries the sanitized query-string filters shared by every report.
// Limit semantics: 0 applies the default page size, negative disables
// pagination entirely (used by exports, which want the full result set).
type Filters struct {
	FechaDesde    string
	FechaHasta    string
	AgenciaID     int
	Origen        string
	EstadoTicket  string
	HipodromoID   int
	NumeroCarrera int
	CarreraID     int
	BuscarUsuario string
	Limit         int
	Offset        int
}

// ParseFilters reads the supported filters off the request's query string.
func ParseFilters(r *http.Request) Filters {
	q := r.URL.Query()

	f := Filters{
		FechaDesde:    q.Get("fecha_desde"),
		FechaHasta:    q.Get("fecha_hasta"),
		Origen:        q.Get("origen"),
		EstadoTicket:  q.Get("estado_ticket"),
		BuscarUsuario: q.Get("buscar_usuario"),
		AgenciaID:     atoi(q.Get("agencia_id")),
		HipodromoID:   atoi(q.Get("hipodromo_id")),
		NumeroCarrera: atoi(q.Get("numero_carrera")),
		CarreraID:     atoi(q.Get("carrera_id")),
	}

	if page := atoi(q.Get("page")); page > 0 {
		limit := atoi(q.Get("limit"))
		if limit <= 0 {
			limit = defaultPageSize
		}
		f.Limit = limit
		f.Offset = (page - 1) * limit
	}

	return f
}

// Unpaginated strips pagination so exports see the whole result set.
func (f Filters) Unpaginated() Filters {
	f.Limit = -1
	f.Offset = 0
	return f
}

func (f Filters) limit() int {
	if f.Limit == 0 {
		return defaultPageSize
	}
	return f.Limit
}

func (f Filters) paginated() bool { return f.Limit >= 0 }

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
