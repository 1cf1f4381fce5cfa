package auth

import (
	"fmt"
	"path"
	"strings"
)

// CanDownload decides whether the session may retrieve an export artifact,
// judging only by the agency tag embedded in the file name. It never touches
// the filesystem: the decision is independent of whether the file exists.
//
// Admins may download anything. An agency session needs its own agency id in
// the name, either as a `_ag{id}` substring or as an exact `_`-delimited
// `ag{id}` segment. A session without role or agency context is denied.
func CanDownload(filename string, sess *Session) bool {
	if sess == nil {
		return false
	}
	if sess.Role == RoleAdmin {
		return true
	}
	if sess.Role != RoleAgencia || sess.AgenciaID == nil {
		return false
	}

	base := path.Base(filename)
	tag := fmt.Sprintf("ag%d", *sess.AgenciaID)

	if strings.Contains(base, "_"+tag) {
		return true
	}
	for _, part := range strings.Split(base, "_") {
		if part == tag {
			return true
		}
	}
	return false
}
