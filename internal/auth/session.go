package auth

import (
	"crypto/subtle"
	"time"
)

// Session is the server-side state bound to one session cookie. It is decoded
// once per request and passed explicitly to whatever needs it.
type Session struct {
	UserID    int       `json:"user_id"`
	Username  string    `json:"username"`
	Login     string    `json:"login"`
	Role      Role      `json:"role"`
	AgenciaID *int      `json:"agencia_id"`
	PerfilID  int       `json:"id_perfil"`
	LoginTime time.Time `json:"login_time"`
	CSRFToken string    `json:"csrf_token"`
}

// IsExpired reports whether the session is older than the configured lifetime.
func (s *Session) IsExpired(lifetime time.Duration) bool {
	return time.Since(s.LoginTime) > lifetime
}

// HasPermission is a membership test against the static role table.
func (s *Session) HasPermission(p Permission) bool {
	if s == nil {
		return false
	}
	return RoleHasPermission(s.Role, p)
}

// Permissions returns every permission granted to the session's role.
func (s *Session) Permissions() []Permission {
	if s == nil {
		return nil
	}
	return PermissionsForRole(s.Role)
}

// ValidateCSRFToken compares candidate against the session token in constant
// time. A session without a token rejects everything.
func (s *Session) ValidateCSRFToken(candidate string) bool {
	if s == nil || s.CSRFToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.CSRFToken), []byte(candidate)) == 1
}
