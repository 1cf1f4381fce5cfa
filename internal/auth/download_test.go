package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"turfreports/internal/auth"
)

func agenciaSession(id int) *auth.Session {
	return &auth.Session{Role: auth.RoleAgencia, AgenciaID: &id}
}

func TestCanDownloadAdmin(t *testing.T) {
	admin := &auth.Session{Role: auth.RoleAdmin}

	require.True(t, auth.CanDownload("informe_agencias_2024-01-01_10-00-00.csv", admin))
	require.True(t, auth.CanDownload("ventas_ag42_2024-01-01.csv", admin))
	require.True(t, auth.CanDownload("anything.pdf", admin))
}

func TestCanDownloadAgenciaOwnFiles(t *testing.T) {
	sess := agenciaSession(42)

	require.True(t, auth.CanDownload("ventas_ag42_2024-01-01.csv", sess))
	require.True(t, auth.CanDownload("ventas_2024-01-01_ag42.csv", sess))
	require.True(t, auth.CanDownload("ventas_diarias_ag42_2024-06-01_10-00-00.xlsx", sess))
}

func TestCanDownloadAgenciaForeignFiles(t *testing.T) {
	sess := agenciaSession(42)

	require.False(t, auth.CanDownload("ventas_ag4_2024-01-01.csv", sess))
	require.False(t, auth.CanDownload("ventas_ag7_2024-01-01.csv", sess))
	require.False(t, auth.CanDownload("informe_agencias_2024-01-01_10-00-00.csv", sess))
}

func TestCanDownloadFailClosed(t *testing.T) {
	require.False(t, auth.CanDownload("ventas_ag42_2024-01-01.csv", nil))
	require.False(t, auth.CanDownload("ventas_ag42_2024-01-01.csv", &auth.Session{Role: auth.RoleAgencia}))
	require.False(t, auth.CanDownload("ventas_ag42_2024-01-01.csv", &auth.Session{Role: auth.Role("auditor")}))
}

func TestCanDownloadIgnoresPathComponents(t *testing.T) {
	sess := agenciaSession(42)

	require.True(t, auth.CanDownload("exports/ventas_ag42_2024-01-01.csv", sess))
	require.False(t, auth.CanDownload("ag42/ventas_ag7_2024-01-01.csv", sess))
}
