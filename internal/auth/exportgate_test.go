package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"turfreports/internal/auth"
)

func TestAuthorizeExportAdmin(t *testing.T) {
	admin := &auth.Session{Role: auth.RoleAdmin}

	for _, reportType := range []string{
		"informe_agencias", "ventas_tickets", "caballos_retirados", "carreras", "tickets_anulados",
	} {
		require.NoError(t, auth.AuthorizeExport(admin, reportType))
	}

	require.ErrorIs(t, auth.AuthorizeExport(admin, "ventas_diarias"), auth.ErrExportTypeForbidden)
	require.ErrorIs(t, auth.AuthorizeExport(admin, "sports_carreras"), auth.ErrExportTypeForbidden)
	require.ErrorIs(t, auth.AuthorizeExport(admin, "desconocido"), auth.ErrExportTypeForbidden)
}

func TestAuthorizeExportAgencia(t *testing.T) {
	sess := agenciaSession(42)

	for _, reportType := range []string{
		"ventas_diarias", "tickets_anulados", "sports_carreras", "tickets_devoluciones",
	} {
		require.NoError(t, auth.AuthorizeExport(sess, reportType))
	}

	require.ErrorIs(t, auth.AuthorizeExport(sess, "informe_agencias"), auth.ErrExportTypeForbidden)
	require.ErrorIs(t, auth.AuthorizeExport(sess, "ventas_tickets"), auth.ErrExportTypeForbidden)
}

func TestAuthorizeExportAgenciaWithoutAgency(t *testing.T) {
	sess := &auth.Session{Role: auth.RoleAgencia}

	require.ErrorIs(t, auth.AuthorizeExport(sess, "ventas_diarias"), auth.ErrExportNoAgency)
}

func TestAuthorizeExportNoSession(t *testing.T) {
	require.ErrorIs(t, auth.AuthorizeExport(nil, "ventas_diarias"), auth.ErrExportNoPermission)
}

func TestAuthorizeExportUnknownRole(t *testing.T) {
	sess := &auth.Session{Role: auth.Role("auditor")}

	require.ErrorIs(t, auth.AuthorizeExport(sess, "carreras"), auth.ErrExportNoPermission)
}
