package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"turfreports/internal/auth"
)

func TestRoleForProfile(t *testing.T) {
	require.Equal(t, auth.RoleAdmin, auth.RoleForProfile(1))
	require.Equal(t, auth.RoleAgencia, auth.RoleForProfile(2))
	require.Equal(t, auth.RoleAgencia, auth.RoleForProfile(7))
	require.Equal(t, auth.RoleAgencia, auth.RoleForProfile(0))
}

func TestAdminPermissions(t *testing.T) {
	for _, p := range []auth.Permission{
		auth.PermViewAllReports,
		auth.PermManageRaces,
		auth.PermManageUsers,
		auth.PermViewAuditLogs,
		auth.PermExportReports,
		auth.PermChangeRaceStatus,
		auth.PermViewAgencyReports,
	} {
		require.True(t, auth.RoleHasPermission(auth.RoleAdmin, p), "admin should have %s", p)
	}

	require.False(t, auth.RoleHasPermission(auth.RoleAdmin, auth.PermViewOwnReports))
	require.False(t, auth.RoleHasPermission(auth.RoleAdmin, auth.PermExportOwnReports))
}

func TestAgenciaPermissions(t *testing.T) {
	for _, p := range []auth.Permission{
		auth.PermViewOwnReports,
		auth.PermViewDailySales,
		auth.PermViewCancelledTickets,
		auth.PermViewRefunds,
		auth.PermViewSportsRaces,
		auth.PermExportOwnReports,
	} {
		require.True(t, auth.RoleHasPermission(auth.RoleAgencia, p), "agencia should have %s", p)
	}

	require.False(t, auth.RoleHasPermission(auth.RoleAgencia, auth.PermManageUsers))
	require.False(t, auth.RoleHasPermission(auth.RoleAgencia, auth.PermViewAllReports))
	require.False(t, auth.RoleHasPermission(auth.RoleAgencia, auth.PermExportReports))
}

func TestPermissionsForRoleMatchesMembership(t *testing.T) {
	for _, role := range []auth.Role{auth.RoleAdmin, auth.RoleAgencia} {
		perms := auth.PermissionsForRole(role)
		require.NotEmpty(t, perms)
		for _, p := range perms {
			require.True(t, auth.RoleHasPermission(role, p))
		}
	}
}

func TestUnknownRoleHasNothing(t *testing.T) {
	require.False(t, auth.RoleHasPermission(auth.Role("auditor"), auth.PermViewAllReports))
	require.Empty(t, auth.PermissionsForRole(auth.Role("auditor")))
}
