package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"turfreports/internal/auth"
)

// md5("password123"), the legacy hash format of tbl_usuarios.
const legacyHash = "482c811da5d5b4bc6d497ffa98491e38"

type fakeCredentialStore struct {
	users   map[string]*auth.User
	tokens  map[int]string
	cleared []int
}

func newFakeCredentialStore(users ...*auth.User) *fakeCredentialStore {
	s := &fakeCredentialStore{users: map[string]*auth.User{}, tokens: map[int]string{}}
	for _, u := range users {
		s.users[u.Login] = u
	}
	return s
}

func (s *fakeCredentialStore) FindByLogin(_ context.Context, login string) (*auth.User, error) {
	u, ok := s.users[login]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeCredentialStore) SaveRememberToken(_ context.Context, userID int, hash string) error {
	s.tokens[userID] = hash
	return nil
}

func (s *fakeCredentialStore) ClearRememberToken(_ context.Context, userID int) error {
	s.cleared = append(s.cleared, userID)
	delete(s.tokens, userID)
	return nil
}

func agencyID(id int) *int { return &id }

func newTestManager(t *testing.T, creds auth.CredentialStore, lifetime time.Duration) *auth.Manager {
	t.Helper()
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	return auth.NewManager(store, creds, lifetime, false, zerolog.Nop())
}

// requestWithCookies carries the Set-Cookie output of a previous response.
func requestWithCookies(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestLoginSuccessLegacyHash(t *testing.T) {
	creds := newFakeCredentialStore(&auth.User{
		ID: 7, Username: "Agencia Centro", Login: "centro",
		PasswordHash: legacyHash, PerfilID: 2, AgenciaID: agencyID(42),
	})
	m := newTestManager(t, creds, 2*time.Hour)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)

	user, sess, err := m.Login(context.Background(), rec, r, "centro", "password123", false)
	require.NoError(t, err)
	require.Equal(t, 7, user.ID)
	require.Equal(t, auth.RoleAgencia, sess.Role)
	require.NotNil(t, sess.AgenciaID)
	require.Equal(t, 42, *sess.AgenciaID)
	require.Len(t, sess.CSRFToken, 64)

	// The cookie from the login response resolves back to the same session.
	current := m.Current(httptest.NewRecorder(), requestWithCookies(t, rec))
	require.NotNil(t, current)
	require.Equal(t, 7, current.UserID)
	require.Equal(t, sess.CSRFToken, current.CSRFToken)
}

func TestLoginAdminProfile(t *testing.T) {
	creds := newFakeCredentialStore(&auth.User{
		ID: 1, Username: "Administrador", Login: "admin",
		PasswordHash: legacyHash, PerfilID: 1,
	})
	m := newTestManager(t, creds, 2*time.Hour)

	_, sess, err := m.Login(context.Background(), httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/api/auth/login", nil), "admin", "password123", false)
	require.NoError(t, err)
	require.Equal(t, auth.RoleAdmin, sess.Role)
	require.Nil(t, sess.AgenciaID)
	require.True(t, sess.HasPermission(auth.PermExportReports))
}

func TestLoginWrongPassword(t *testing.T) {
	creds := newFakeCredentialStore(&auth.User{
		ID: 7, Login: "centro", PasswordHash: legacyHash, PerfilID: 2,
	})
	m := newTestManager(t, creds, 2*time.Hour)

	_, _, err := m.Login(context.Background(), httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/api/auth/login", nil), "centro", "wrong", false)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	m := newTestManager(t, newFakeCredentialStore(), 2*time.Hour)

	_, _, err := m.Login(context.Background(), httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/api/auth/login", nil), "nadie", "password123", false)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginRememberPersistsTokenHash(t *testing.T) {
	creds := newFakeCredentialStore(&auth.User{
		ID: 7, Login: "centro", PasswordHash: legacyHash, PerfilID: 2, AgenciaID: agencyID(42),
	})
	m := newTestManager(t, creds, 2*time.Hour)

	rec := httptest.NewRecorder()
	_, _, err := m.Login(context.Background(), rec,
		httptest.NewRequest(http.MethodPost, "/api/auth/login", nil), "centro", "password123", true)
	require.NoError(t, err)

	var rememberCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "remember_token" {
			rememberCookie = c
		}
	}
	require.NotNil(t, rememberCookie)
	require.Len(t, rememberCookie.Value, 64)
	require.Len(t, creds.tokens[7], 64) // sha256 hex, not the raw token
	require.NotEqual(t, rememberCookie.Value, creds.tokens[7])
}

func TestCurrentExpiredSessionIsDestroyed(t *testing.T) {
	creds := newFakeCredentialStore(&auth.User{
		ID: 7, Login: "centro", PasswordHash: legacyHash, PerfilID: 2,
	})
	m := newTestManager(t, creds, time.Millisecond)

	rec := httptest.NewRecorder()
	_, _, err := m.Login(context.Background(), rec,
		httptest.NewRequest(http.MethodPost, "/api/auth/login", nil), "centro", "password123", false)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	require.Nil(t, m.Current(httptest.NewRecorder(), requestWithCookies(t, rec)))
	// A second probe with the same stale cookie still reports no session.
	require.Nil(t, m.Current(httptest.NewRecorder(), requestWithCookies(t, rec)))
}

func TestLogoutDestroysSession(t *testing.T) {
	creds := newFakeCredentialStore(&auth.User{
		ID: 7, Login: "centro", PasswordHash: legacyHash, PerfilID: 2,
	})
	m := newTestManager(t, creds, 2*time.Hour)

	loginRec := httptest.NewRecorder()
	_, _, err := m.Login(context.Background(), loginRec,
		httptest.NewRequest(http.MethodPost, "/api/auth/login", nil), "centro", "password123", true)
	require.NoError(t, err)

	logoutRec := httptest.NewRecorder()
	logoutReq := requestWithCookies(t, loginRec)
	m.Logout(context.Background(), logoutRec, logoutReq)

	require.Contains(t, creds.cleared, 7)

	// The cleared session cookie no longer authenticates.
	next := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	for _, c := range logoutRec.Result().Cookies() {
		if c.Name == auth.SessionName {
			next.AddCookie(c)
		}
	}
	require.Nil(t, m.Current(httptest.NewRecorder(), next))
}

func TestCSRFTokenRequiresSession(t *testing.T) {
	m := newTestManager(t, newFakeCredentialStore(), 2*time.Hour)

	token := m.CSRFToken(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/auth/csrf-token", nil))
	require.Empty(t, token)
}

func TestGenerateSecureToken(t *testing.T) {
	a, err := auth.GenerateSecureToken(32)
	require.NoError(t, err)
	b, err := auth.GenerateSecureToken(32)
	require.NoError(t, err)

	require.Len(t, a, 64)
	require.NotEqual(t, a, b)
}
