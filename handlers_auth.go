package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"turfreports/internal/auth"
	"turfreports/internal/httputil"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type sessionUser struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	AgenciaID *int   `json:"agencia_id"`
}

func (app *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequestError(w, "Cuerpo de petición inválido")
		return
	}
	if req.Username == "" || req.Password == "" {
		httputil.BadRequestError(w, "Usuario y contraseña son requeridos")
		return
	}

	user, sess, err := app.Sessions.Login(r.Context(), w, r, req.Username, req.Password, req.Remember)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			app.Log.Warn().Str("username", req.Username).Str("remote_addr", r.RemoteAddr).Msg("Login failed")
			httputil.RespondWithError(w, http.StatusUnauthorized, "Credenciales inválidas")
			return
		}
		httputil.InternalError(w, err, app.Config.Debug)
		return
	}

	app.Log.Info().Str("username", user.Username).Str("role", string(sess.Role)).Msg("Login successful")

	httputil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user": sessionUser{
			ID:        user.ID,
			Username:  user.Username,
			Role:      string(sess.Role),
			AgenciaID: user.AgenciaID,
		},
		"csrf_token": sess.CSRFToken,
	})
}

func (app *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	app.Sessions.Logout(r.Context(), w, r)
	httputil.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (app *App) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": sessionUser{
			ID:        sess.UserID,
			Username:  sess.Username,
			Role:      string(sess.Role),
			AgenciaID: sess.AgenciaID,
		},
		"permissions": sess.Permissions(),
	})
}

func (app *App) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	token := app.Sessions.CSRFToken(w, r)
	if token == "" {
		httputil.AuthenticationError(w)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, map[string]any{"csrf_token": token})
}
