package main

import (
	"net/http"
	"strconv"

	"turfreports/internal/auth"
	"turfreports/internal/httputil"
	"turfreports/internal/reports"
)

// scopedFilters parses the query filters and pins the agency for agency
// sessions, so an agency can never widen a report beyond its own data.
func scopedFilters(r *http.Request, sess *auth.Session) reports.Filters {
	f := reports.ParseFilters(r)
	if sess.Role == auth.RoleAgencia && sess.AgenciaID != nil {
		f.AgenciaID = *sess.AgenciaID
	}
	return f
}

func (app *App) handleAgencies(w http.ResponseWriter, r *http.Request) {
	data, err := app.Reports.GetAgencies(r.Context())
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func (app *App) handleHipodromos(w http.ResponseWriter, r *http.Request) {
	data, err := app.Reports.GetHipodromos(r.Context())
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func (app *App) handleNumerosCarreras(w http.ResponseWriter, r *http.Request) {
	data, err := app.Reports.GetNumerosCarreras(r.Context())
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func (app *App) handleListaTickets(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	data, err := app.Reports.GetListaTickets(r.Context(), scopedFilters(r, sess))
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, data)
}

func (app *App) handleInformePorAgencia(w http.ResponseWriter, r *http.Request) {
	data, err := app.Reports.GetInformePorAgencia(r.Context(), reports.ParseFilters(r))
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, data)
}

func (app *App) handleCaballosRetirados(w http.ResponseWriter, r *http.Request) {
	data, err := app.Reports.GetCaballosRetirados(r.Context(), reports.ParseFilters(r))
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, data)
}

func (app *App) handleCarreras(w http.ResponseWriter, r *http.Request) {
	data, err := app.Reports.GetCarreras(r.Context(), reports.ParseFilters(r))
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, data)
}

func (app *App) handleResultadosCarrera(w http.ResponseWriter, r *http.Request) {
	idCarrera, err := strconv.Atoi(r.URL.Query().Get("id_carrera"))
	if err != nil || idCarrera <= 0 {
		httputil.BadRequestError(w, "ID de carrera requerido")
		return
	}

	data, err := app.Reports.GetResultadosCarrera(r.Context(), idCarrera)
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, data)
}

func (app *App) handleTicketsAnulados(w http.ResponseWriter, r *http.Request) {
	data, err := app.Reports.GetTicketsAnulados(r.Context(), reports.ParseFilters(r))
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, data)
}

// requireAgencia resolves the agency of the session, rejecting sessions that
// lack one. The agency report handlers never read the agency from the query.
func (app *App) requireAgencia(w http.ResponseWriter, r *http.Request) (int, bool) {
	sess := SessionFromContext(r.Context())
	if sess.AgenciaID == nil {
		httputil.AuthorizationError(w)
		return 0, false
	}
	return *sess.AgenciaID, true
}

func (app *App) handleVentasDiariasAgencia(w http.ResponseWriter, r *http.Request) {
	idAgencia, ok := app.requireAgencia(w, r)
	if !ok {
		return
	}

	data, err := app.Reports.GetVentasDiariasAgencia(r.Context(), idAgencia, reports.ParseFilters(r))
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, data)
}

func (app *App) handleTicketsDevolucionesAgencia(w http.ResponseWriter, r *http.Request) {
	idAgencia, ok := app.requireAgencia(w, r)
	if !ok {
		return
	}

	data, err := app.Reports.GetTicketsDevolucionesAgencia(r.Context(), idAgencia, reports.ParseFilters(r))
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, data)
}

func (app *App) handleSportsCarrerasAgencia(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.requireAgencia(w, r); !ok {
		return
	}

	data, err := app.Reports.GetSportsCarrerasAgencia(r.Context(), reports.ParseFilters(r))
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, data)
}

func (app *App) handleTicketsAnuladosAgencia(w http.ResponseWriter, r *http.Request) {
	idAgencia, ok := app.requireAgencia(w, r)
	if !ok {
		return
	}

	data, err := app.Reports.GetTicketsAnuladosAgencia(r.Context(), idAgencia, reports.ParseFilters(r))
	if err != nil {
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, data)
}
