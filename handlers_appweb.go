package main

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"turfreports/internal/httputil"
	"turfreports/internal/reports"
)

// Handlers for the online-platform reports. All of them run against the
// appweb database and are admin-only.

func (app *App) handlePorUsuario(w http.ResponseWriter, r *http.Request) {
	data, err := app.Reports.GetPorUsuario(r.Context(), reports.ParseFilters(r))
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, data)
}

func (app *App) handleDetalleUsuario(w http.ResponseWriter, r *http.Request) {
	idUsuario, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || idUsuario <= 0 {
		httputil.BadRequestError(w, "ID de usuario requerido")
		return
	}

	data, err := app.Reports.GetDetalleUsuario(r.Context(), idUsuario)
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, data)
}

func (app *App) handleEconomico(w http.ResponseWriter, r *http.Request) {
	data, err := app.Reports.GetEconomico(r.Context(), reports.ParseFilters(r))
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, data)
}

func (app *App) handleDineroRemanente(w http.ResponseWriter, r *http.Request) {
	data, err := app.Reports.GetDineroRemanente(r.Context())
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, data)
}

func (app *App) handleApuestas(w http.ResponseWriter, r *http.Request) {
	data, err := app.Reports.GetApuestas(r.Context(), reports.ParseFilters(r))
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, data)
}

func (app *App) handleRendimientoApuestaCarrera(w http.ResponseWriter, r *http.Request) {
	data, err := app.Reports.GetRendimientoApuestaCarrera(r.Context(), reports.ParseFilters(r))
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, data)
}
