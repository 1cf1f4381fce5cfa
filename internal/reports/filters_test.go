package reports

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFilters(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/reports/carreras?fecha_desde=2024-06-01&fecha_hasta=2024-06-30&hipodromo_id=3&numero_carrera=7&agencia_id=42&buscar_usuario=lopez", nil)

	f := ParseFilters(r)
	require.Equal(t, "2024-06-01", f.FechaDesde)
	require.Equal(t, "2024-06-30", f.FechaHasta)
	require.Equal(t, 3, f.HipodromoID)
	require.Equal(t, 7, f.NumeroCarrera)
	require.Equal(t, 42, f.AgenciaID)
	require.Equal(t, "lopez", f.BuscarUsuario)
	require.Equal(t, 0, f.Limit)
	require.Equal(t, 0, f.Offset)
}

func TestParseFiltersPagination(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/reports/carreras?page=3&limit=50", nil)

	f := ParseFilters(r)
	require.Equal(t, 50, f.Limit)
	require.Equal(t, 100, f.Offset)
}

func TestParseFiltersPageWithoutLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/reports/carreras?page=2", nil)

	f := ParseFilters(r)
	require.Equal(t, defaultPageSize, f.Limit)
	require.Equal(t, defaultPageSize, f.Offset)
}

func TestParseFiltersIgnoresGarbage(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/reports/carreras?hipodromo_id=abc&page=xyz", nil)

	f := ParseFilters(r)
	require.Equal(t, 0, f.HipodromoID)
	require.Equal(t, 0, f.Limit)
}

func TestUnpaginated(t *testing.T) {
	f := Filters{Limit: 50, Offset: 100}.Unpaginated()

	require.Equal(t, -1, f.Limit)
	require.Equal(t, 0, f.Offset)
	require.False(t, f.paginated())
	require.Equal(t, "", limitClause(f))
}

func TestLimitClause(t *testing.T) {
	require.Equal(t, "LIMIT 100 OFFSET 0", limitClause(Filters{}))
	require.Equal(t, "LIMIT 25 OFFSET 50", limitClause(Filters{Limit: 25, Offset: 50}))
}

func TestCondBuilder(t *testing.T) {
	var c cond
	require.Equal(t, "", c.where())
	require.Equal(t, "", c.and())

	c.add("t.anulado = 1")
	c.add("u.id_agencia = ?", 42)

	require.Equal(t, "WHERE t.anulado = 1 AND u.id_agencia = ?", c.where())
	require.Equal(t, "AND t.anulado = 1 AND u.id_agencia = ?", c.and())
	require.Equal(t, []any{42}, c.params)
}

func TestDateRange(t *testing.T) {
	var c cond
	dateRange(&c, "t.fecha", Filters{FechaDesde: "2024-06-01", FechaHasta: "2024-06-30"})

	require.Equal(t,
		"WHERE STR_TO_DATE(t.fecha, '%d/%m/%Y') >= STR_TO_DATE(?, '%Y-%m-%d') "+
			"AND STR_TO_DATE(t.fecha, '%d/%m/%Y') <= STR_TO_DATE(?, '%Y-%m-%d')",
		c.where())
	require.Equal(t, []any{"2024-06-01", "2024-06-30"}, c.params)
}

func TestDateRangeOpenEnded(t *testing.T) {
	var c cond
	dateRange(&c, "c.fecha", Filters{FechaDesde: "2024-06-01"})

	require.Len(t, c.clauses, 1)
	require.Equal(t, []any{"2024-06-01"}, c.params)
}
