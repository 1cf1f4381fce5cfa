package auth

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	SessionName        = "turf-session"
	sessionDataKey     = "session_data"
	rememberCookieName = "remember_token"
	rememberCookieAge  = 30 * 24 * time.Hour
)

// ErrInvalidCredentials covers both an unknown login and a wrong password, so
// the caller cannot tell which factor failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Manager owns the session lifecycle: credential validation, lazy expiry,
// permission checks and CSRF token issuance.
type Manager struct {
	store    sessions.Store
	creds    CredentialStore
	lifetime time.Duration
	secure   bool
	log      zerolog.Logger
}

func NewManager(store sessions.Store, creds CredentialStore, lifetime time.Duration, secure bool, log zerolog.Logger) *Manager {
	return &Manager{
		store:    store,
		creds:    creds,
		lifetime: lifetime,
		secure:   secure,
		log:      log,
	}
}

// Current decodes the request's session. A stale session is destroyed on the
// spot and nil is returned, so a second immediate call also reports no session.
func (m *Manager) Current(w http.ResponseWriter, r *http.Request) *Session {
	gs, err := m.store.Get(r, SessionName)
	if err != nil {
		m.log.Debug().Err(err).Msg("failed to decode session, treating as anonymous")
		return nil
	}

	raw, ok := gs.Values[sessionDataKey].(string)
	if !ok || raw == "" {
		return nil
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		m.log.Warn().Err(err).Msg("corrupted session payload, destroying session")
		m.destroy(gs, w, r)
		return nil
	}

	if sess.IsExpired(m.lifetime) {
		m.log.Info().Int("user_id", sess.UserID).Msg("session expired")
		m.destroy(gs, w, r)
		return nil
	}

	return &sess
}

// Login validates credentials against the store and, on success, writes a fresh
// session with a new CSRF token. With remember set, a long-lived opaque cookie
// is issued and its sha256 hash persisted; a persistence failure is logged but
// does not fail the login.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, username, password string, remember bool) (*User, *Session, error) {
	user, err := m.creds.FindByLogin(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}

	if !verifyPassword(user.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	csrfToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, nil, err
	}

	sess := &Session{
		UserID:    user.ID,
		Username:  user.Username,
		Login:     user.Login,
		Role:      RoleForProfile(user.PerfilID),
		AgenciaID: user.AgenciaID,
		PerfilID:  user.PerfilID,
		LoginTime: time.Now(),
		CSRFToken: csrfToken,
	}

	if err := m.save(sess, w, r); err != nil {
		return nil, nil, err
	}

	if remember {
		m.issueRememberToken(ctx, w, user.ID)
	}

	m.log.Info().
		Int("user_id", user.ID).
		Str("login", user.Login).
		Str("role", string(sess.Role)).
		Msg("user logged in")

	return user, sess, nil
}

// Logout clears the remember cookie and its stored hash (best-effort), destroys
// the session, and immediately re-issues an empty one so the cookie transport
// stays valid for subsequent requests.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(rememberCookieName); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     rememberCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   m.secure,
		})

		if sess := m.Current(w, r); sess != nil {
			if err := m.creds.ClearRememberToken(ctx, sess.UserID); err != nil {
				m.log.Warn().Err(err).Int("user_id", sess.UserID).Msg("failed to clear remember token")
			}
		}
	}

	gs, err := m.store.Get(r, SessionName)
	if err != nil {
		gs, err = m.store.New(r, SessionName)
		if err != nil {
			m.log.Error().Err(err).Msg("failed to obtain session during logout")
			return
		}
	}
	m.destroy(gs, w, r)
}

// CSRFToken returns the current session's token, or empty when there is none.
func (m *Manager) CSRFToken(w http.ResponseWriter, r *http.Request) string {
	sess := m.Current(w, r)
	if sess == nil {
		return ""
	}
	return sess.CSRFToken
}

func (m *Manager) save(sess *Session, w http.ResponseWriter, r *http.Request) error {
	gs, err := m.store.Get(r, SessionName)
	if err != nil {
		gs, err = m.store.New(r, SessionName)
		if err != nil {
			return err
		}
	}

	for k := range gs.Values {
		delete(gs.Values, k)
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	gs.Values[sessionDataKey] = string(payload)
	gs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(m.lifetime / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	return gs.Save(r, w)
}

// destroy drops all session values and saves, which re-issues an empty session
// on the same cookie.
func (m *Manager) destroy(gs *sessions.Session, w http.ResponseWriter, r *http.Request) {
	for k := range gs.Values {
		delete(gs.Values, k)
	}
	if err := gs.Save(r, w); err != nil {
		m.log.Warn().Err(err).Msg("failed to save cleared session")
	}
}

func (m *Manager) issueRememberToken(ctx context.Context, w http.ResponseWriter, userID int) {
	token, err := GenerateSecureToken(32)
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to generate remember token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     rememberCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(rememberCookieAge / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
	})

	sum := sha256.Sum256([]byte(token))
	if err := m.creds.SaveRememberToken(ctx, userID, hex.EncodeToString(sum[:])); err != nil {
		m.log.Warn().Err(err).Int("user_id", userID).Msg("failed to persist remember token hash")
	}
}

// verifyPassword accepts the legacy md5 hashes still present in tbl_usuarios
// as well as bcrypt hashes for migrated rows.
func verifyPassword(stored, candidate string) bool {
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	}
	sum := md5.Sum([]byte(candidate))
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(stored)) == 1
}

// GenerateSecureToken returns length random bytes hex-encoded.
func GenerateSecureToken(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
