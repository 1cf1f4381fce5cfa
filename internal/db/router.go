// Package db resolves logical database names to live connections. The two
// upstream stores are the agency operations database ("agencias") and the
// web betting platform database ("appweb").
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Logical database names.
const (
	Agencias = "agencias"
	AppWeb   = "appweb"
)

// Router holds one named connection pool per upstream database. It is
// constructed once at process start and shared by reference; there is no lazy
// singleton behind it.
type Router struct {
	conns map[string]*sql.DB
}

// NewRouter opens both pools. DSNs are go-sql-driver strings, e.g.
// "user:pass@tcp(host:3306)/dbname?charset=utf8mb4&parseTime=true".
func NewRouter(agenciasDSN, appwebDSN string) (*Router, error) {
	r := &Router{conns: make(map[string]*sql.DB, 2)}

	for name, dsn := range map[string]string{
		Agencias: agenciasDSN,
		AppWeb:   appwebDSN,
	} {
		conn, err := sql.Open("mysql", dsn)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("open %s database: %w", name, err)
		}
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(25)
		conn.SetConnMaxLifetime(5 * time.Minute)
		r.conns[name] = conn
	}

	return r, nil
}

// Get resolves a logical database name to its pool.
func (r *Router) Get(name string) (*sql.DB, error) {
	conn, ok := r.conns[name]
	if !ok {
		return nil, fmt.Errorf("database %q not configured", name)
	}
	return conn, nil
}

// Agencias returns the agency operations pool.
func (r *Router) Agencias() *sql.DB { return r.conns[Agencias] }

// AppWeb returns the web platform pool.
func (r *Router) AppWeb() *sql.DB { return r.conns[AppWeb] }

// Close closes every open pool.
func (r *Router) Close() {
	for _, conn := range r.conns {
		if conn != nil {
			conn.Close()
		}
	}
}
