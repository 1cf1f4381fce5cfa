package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"turfreports/internal/auth"
	"turfreports/internal/httputil"
	"turfreports/internal/reports"
)

type exportRequest struct {
	ReportType string        `json:"report_type"`
	Format     string        `json:"format"`
	Filters    exportFilters `json:"filters"`
}

type exportFilters struct {
	FechaDesde    string `json:"fecha_desde"`
	FechaHasta    string `json:"fecha_hasta"`
	AgenciaID     int    `json:"agencia_id"`
	NumeroCarrera int    `json:"numero_carrera"`
	HipodromoID   int    `json:"hipodromo_id"`
}

func (app *App) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequestError(w, "Cuerpo de petición inválido")
		return
	}
	if req.Format == "" {
		req.Format = "csv"
	}

	if err := auth.AuthorizeExport(sess, req.ReportType); err != nil {
		app.Log.Warn().
			Str("username", sess.Username).
			Str("role", string(sess.Role)).
			Str("report_type", req.ReportType).
			Msg("Export denied")
		httputil.RespondWithError(w, http.StatusForbidden, err.Error())
		return
	}

	f := reports.Filters{
		FechaDesde:    req.Filters.FechaDesde,
		FechaHasta:    req.Filters.FechaHasta,
		AgenciaID:     req.Filters.AgenciaID,
		NumeroCarrera: req.Filters.NumeroCarrera,
		HipodromoID:   req.Filters.HipodromoID,
	}

	// Agency exports always run scoped to the session's agency.
	var agenciaID *int
	if sess.Role == auth.RoleAgencia {
		agenciaID = sess.AgenciaID
		if agenciaID != nil {
			f.AgenciaID = *agenciaID
		}
	}

	filename, err := app.Exports.Export(r.Context(), req.ReportType, req.Format, f, agenciaID)
	if err != nil {
		httputil.RespondWithError(w, http.StatusInternalServerError, "Error generando exportación: "+err.Error())
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"filename":     filename,
		"download_url": "/api/download/" + filepath.Base(filename),
	})
}

func (app *App) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	filename := filepath.Base(mux.Vars(r)["filename"])

	// The same 404 covers missing files and foreign agency files, so the
	// response does not reveal which exports exist.
	if !auth.CanDownload(filename, sess) {
		app.Log.Warn().
			Str("username", sess.Username).
			Str("filename", filename).
			Msg("Download denied")
		httputil.NotFoundError(w, "Archivo no encontrado o sin permisos")
		return
	}

	path := filepath.Join(app.Exports.Dir(), filename)
	content, err := os.ReadFile(path)
	if err != nil {
		httputil.NotFoundError(w, "Archivo no encontrado o sin permisos")
		return
	}

	switch {
	case strings.HasSuffix(filename, ".pdf") && looksLikeHTML(content):
		// PDF exports without a converter are printable HTML under a .pdf
		// name. Serving them inline as HTML lets the browser render them.
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Disposition", `inline; filename="`+filename+`"`)
	case strings.HasSuffix(filename, ".pdf"):
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `inline; filename="`+filename+`"`)
	case strings.HasSuffix(filename, ".csv"):
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	default:
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}

	w.Write(content)
}

func looksLikeHTML(content []byte) bool {
	head := bytes.TrimSpace(content)
	if len(head) > 256 {
		head = head[:256]
	}
	lower := bytes.ToLower(head)
	return bytes.HasPrefix(lower, []byte("<!doctype html")) || bytes.HasPrefix(lower, []byte("<html"))
}
