// Package reports runs the parameterized read-only aggregations behind every
// report endpoint, against the agencias and appweb databases.
package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"turfreports/internal/cache"
	"turfreports/internal/db"
)

const lookupTTL = 10 * time.Minute

// Service executes report queries through the database router, with the
// lookup lists going through the cache layer.
type Service struct {
	db    *db.Router
	cache cache.Store
	log   zerolog.Logger
}

func NewService(router *db.Router, store cache.Store, log zerolog.Logger) *Service {
	return &Service{db: router, cache: store, log: log}
}

// cond accumulates WHERE fragments and their parameters, mirroring how every
// report assembles its filter clauses.
type cond struct {
	clauses []string
	params  []any
}

func (c *cond) add(clause string, params ...any) {
	c.clauses = append(c.clauses, clause)
	c.params = append(c.params, params...)
}

func (c *cond) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(c.clauses, " AND ")
}

func (c *cond) and() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return "AND " + strings.Join(c.clauses, " AND ")
}

func dateRange(c *cond, column string, f Filters) {
	if f.FechaDesde != "" {
		c.add(fmt.Sprintf("STR_TO_DATE(%s, '%%d/%%m/%%Y') >= STR_TO_DATE(?, '%%Y-%%m-%%d')", column), f.FechaDesde)
	}
	if f.FechaHasta != "" {
		c.add(fmt.Sprintf("STR_TO_DATE(%s, '%%d/%%m/%%Y') <= STR_TO_DATE(?, '%%Y-%%m-%%d')", column), f.FechaHasta)
	}
}

// Agency is a filter-lookup row.
type Agency struct {
	IDAgencia     int    `json:"id_agencia"`
	NombreAgencia string `json:"nombre_agencia"`
}

// Hipodromo is a filter-lookup row.
type Hipodromo struct {
	IDHipodromo     int    `json:"id_hipodromo"`
	NombreHipodromo string `json:"nombre_hipodromo"`
}

// GetAgencies lists every agency, cached between requests.
func (s *Service) GetAgencies(ctx context.Context) ([]Agency, error) {
	const query = `SELECT id_agencia, nombre_agencia FROM tbl_agencias ORDER BY nombre_agencia ASC`

	return cache.Remember(ctx, s.cache, cache.QueryKey(db.Agencias, query), lookupTTL, func() ([]Agency, error) {
		rows, err := s.db.Agencias().QueryContext(ctx, query)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var out []Agency
		for rows.Next() {
			var a Agency
			if err := rows.Scan(&a.IDAgencia, &a.NombreAgencia); err != nil {
				return nil, err
			}
			out = append(out, a)
		}
		return out, rows.Err()
	})
}

// GetHipodromos lists the racetracks available as filters, cached.
func (s *Service) GetHipodromos(ctx context.Context) ([]Hipodromo, error) {
	const query = `SELECT id_hipodromo, nombre_hipodromo FROM tbl_hipodromos ORDER BY nombre_hipodromo ASC`

	return cache.Remember(ctx, s.cache, cache.QueryKey(db.Agencias, query), lookupTTL, func() ([]Hipodromo, error) {
		rows, err := s.db.Agencias().QueryContext(ctx, query)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var out []Hipodromo
		for rows.Next() {
			var h Hipodromo
			if err := rows.Scan(&h.IDHipodromo, &h.NombreHipodromo); err != nil {
				return nil, err
			}
			out = append(out, h)
		}
		return out, rows.Err()
	})
}

// GetNumerosCarreras lists the distinct race numbers, cached.
func (s *Service) GetNumerosCarreras(ctx context.Context) ([]int, error) {
	const query = `SELECT DISTINCT numero_carrera FROM tbl_carreras ORDER BY numero_carrera ASC`

	return cache.Remember(ctx, s.cache, cache.QueryKey(db.Agencias, query), lookupTTL, func() ([]int, error) {
		rows, err := s.db.Agencias().QueryContext(ctx, query)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var out []int
		for rows.Next() {
			var n int
			if err := rows.Scan(&n); err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, rows.Err()
	})
}
