package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"turfreports/internal/auth"
	"turfreports/internal/export"
	"turfreports/internal/ratelimit"
)

// md5("password123")
const testLegacyHash = "482c811da5d5b4bc6d497ffa98491e38"

type stubCredentialStore struct {
	users map[string]*auth.User
}

func (s *stubCredentialStore) FindByLogin(_ context.Context, login string) (*auth.User, error) {
	u, ok := s.users[login]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return u, nil
}

func (s *stubCredentialStore) SaveRememberToken(context.Context, int, string) error { return nil }
func (s *stubCredentialStore) ClearRememberToken(context.Context, int) error        { return nil }

func newTestApp(t *testing.T) *App {
	t.Helper()

	agencia := 42
	creds := &stubCredentialStore{users: map[string]*auth.User{
		"admin": {ID: 1, Username: "Administrador", Login: "admin", PasswordHash: testLegacyHash, PerfilID: 1},
		"centro": {
			ID: 7, Username: "Agencia Centro", Login: "centro",
			PasswordHash: testLegacyHash, PerfilID: 2, AgenciaID: &agencia,
		},
	}}

	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	manager := auth.NewManager(store, creds, 2*time.Hour, false, zerolog.Nop())

	return &App{
		Config:   &Config{Environment: "test", RateLimit: 100, RateWindow: 60},
		Log:      zerolog.Nop(),
		Sessions: manager,
		Limiter:  ratelimit.New(100, time.Minute),
		Exports:  export.NewService(nil, t.TempDir(), zerolog.Nop()),
	}
}

func login(t *testing.T, app *App, username string) ([]*http.Cookie, string) {
	t.Helper()

	body := strings.NewReader(`{"username":"` + username + `","password":"password123"}`)
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	rec := httptest.NewRecorder()
	app.handleLogin(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success   bool   `json:"success"`
		CSRFToken string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.CSRFToken)

	return rec.Result().Cookies(), resp.CSRFToken
}

func withCookies(r *http.Request, cookies []*http.Cookie) *http.Request {
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)

	body := strings.NewReader(`{"username":"admin","password":"wrong"}`)
	rec := httptest.NewRecorder()
	app.handleLogin(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", body))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Credenciales inválidas")
}

func TestLoginRejectsMissingFields(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.handleLogin(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"admin"}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthMiddlewareWithoutSession(t *testing.T) {
	app := newTestApp(t)
	handler := app.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a session")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/auth/status", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "No autenticado")
}

func TestAuthStatusReportsPermissions(t *testing.T) {
	app := newTestApp(t)
	cookies, _ := login(t, app, "centro")

	rec := httptest.NewRecorder()
	app.AuthMiddleware(app.handleAuthStatus)(rec,
		withCookies(httptest.NewRequest(http.MethodGet, "/api/auth/status", nil), cookies))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Authenticated bool `json:"authenticated"`
		User          struct {
			Role      string `json:"role"`
			AgenciaID *int   `json:"agencia_id"`
		} `json:"user"`
		Permissions []string `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Authenticated)
	require.Equal(t, "agencia", resp.User.Role)
	require.NotNil(t, resp.User.AgenciaID)
	require.Equal(t, 42, *resp.User.AgenciaID)
	require.Contains(t, resp.Permissions, "view_own_reports")
	require.NotContains(t, resp.Permissions, "manage_users")
}

func TestRequirePermissionRejectsAgencia(t *testing.T) {
	app := newTestApp(t)
	cookies, _ := login(t, app, "centro")

	handler := app.RequirePermission(auth.PermViewAllReports, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without the permission")
	})

	rec := httptest.NewRecorder()
	handler(rec, withCookies(httptest.NewRequest(http.MethodGet, "/api/reports/tickets-anulados", nil), cookies))

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "Sin permisos suficientes")
}

func TestCSRFMiddlewareRejectsMissingToken(t *testing.T) {
	app := newTestApp(t)
	cookies, _ := login(t, app, "admin")

	handler := app.AuthMiddleware(app.CSRFMiddleware(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a CSRF token")
	}))

	rec := httptest.NewRecorder()
	handler(rec, withCookies(httptest.NewRequest(http.MethodPost, "/api/reports/export", nil), cookies))

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFMiddlewareAcceptsHeaderToken(t *testing.T) {
	app := newTestApp(t)
	cookies, token := login(t, app, "admin")

	called := false
	handler := app.AuthMiddleware(app.CSRFMiddleware(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	r := withCookies(httptest.NewRequest(http.MethodPost, "/api/reports/export", nil), cookies)
	r.Header.Set("X-CSRF-Token", token)

	rec := httptest.NewRecorder()
	handler(rec, r)

	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	app := newTestApp(t)
	app.Limiter = ratelimit.New(2, time.Minute)

	handler := app.RateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(rec, r)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	handler.ServeHTTP(rec, r)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different client keeps its own budget.
	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	r.RemoteAddr = "10.0.0.2:1234"
	handler.ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSMiddlewareEchoesOrigin(t *testing.T) {
	app := newTestApp(t)
	handler := app.CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	r.Header.Set("Origin", "http://localhost:5173")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	app := newTestApp(t)
	handler := app.CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must short-circuit")
	}))

	r := httptest.NewRequest(http.MethodOptions, "/api/reports/export", nil)
	r.Header.Set("Origin", "http://localhost:5173")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-CSRF-Token")
}

func downloadRequest(cookies []*http.Cookie, filename string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/download/"+filename, nil)
	r = mux.SetURLVars(r, map[string]string{"filename": filename})
	return withCookies(r, cookies)
}

func TestDownloadOwnAgencyFile(t *testing.T) {
	app := newTestApp(t)
	cookies, _ := login(t, app, "centro")

	filename := "ventas_diarias_ag42_2024-06-01_10-00-00.csv"
	require.NoError(t, os.WriteFile(filepath.Join(app.Exports.Dir(), filename), []byte("\xEF\xBB\xBFa;b\n"), 0o644))

	rec := httptest.NewRecorder()
	app.AuthMiddleware(app.handleDownload)(rec, downloadRequest(cookies, filename))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
}

func TestDownloadForeignAgencyFileIs404(t *testing.T) {
	app := newTestApp(t)
	cookies, _ := login(t, app, "centro")

	filename := "ventas_diarias_ag7_2024-06-01_10-00-00.csv"
	require.NoError(t, os.WriteFile(filepath.Join(app.Exports.Dir(), filename), []byte("data"), 0o644))

	rec := httptest.NewRecorder()
	app.AuthMiddleware(app.handleDownload)(rec, downloadRequest(cookies, filename))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Archivo no encontrado o sin permisos")
}

func TestDownloadMissingFileIs404(t *testing.T) {
	app := newTestApp(t)
	cookies, _ := login(t, app, "admin")

	rec := httptest.NewRecorder()
	app.AuthMiddleware(app.handleDownload)(rec, downloadRequest(cookies, "no_existe_2024-06-01_10-00-00.csv"))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadSniffsHTMLInPDF(t *testing.T) {
	app := newTestApp(t)
	cookies, _ := login(t, app, "admin")

	filename := "carreras_2024-06-01_10-00-00.pdf"
	html := "<!DOCTYPE html>\n<html><body>reporte</body></html>"
	require.NoError(t, os.WriteFile(filepath.Join(app.Exports.Dir(), filename), []byte(html), 0o644))

	rec := httptest.NewRecorder()
	app.AuthMiddleware(app.handleDownload)(rec, downloadRequest(cookies, filename))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "inline")
}

func TestDownloadRealPDFServedAsPDF(t *testing.T) {
	app := newTestApp(t)
	cookies, _ := login(t, app, "admin")

	filename := "carreras_2024-06-01_10-00-00.pdf"
	require.NoError(t, os.WriteFile(filepath.Join(app.Exports.Dir(), filename), []byte("%PDF-1.4 fake"), 0o644))

	rec := httptest.NewRecorder()
	app.AuthMiddleware(app.handleDownload)(rec, downloadRequest(cookies, filename))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
}
