package auth

import "errors"

// Export gate errors, surfaced to the client as 403s.
var (
	ErrExportNoPermission  = errors.New("sin permisos de exportación")
	ErrExportTypeForbidden = errors.New("reporte no permitido para exportación")
	ErrExportNoAgency      = errors.New("agencia no identificada para el usuario actual")
)

// Report types each role may export. The two sets are disjoint except for
// tickets_anulados, which exists in an admin-wide and an agency-scoped form.
var (
	adminExportTypes = map[string]struct{}{
		"informe_agencias":   {},
		"ventas_tickets":     {},
		"caballos_retirados": {},
		"carreras":           {},
		"tickets_anulados":   {},
	}
	agencyExportTypes = map[string]struct{}{
		"ventas_diarias":       {},
		"tickets_anulados":     {},
		"sports_carreras":      {},
		"tickets_devoluciones": {},
	}
)

// AuthorizeExport is the pure validation step in front of the export renderer:
// it checks role, permission and per-role report-type whitelist, and never
// renders or queries anything itself.
func AuthorizeExport(sess *Session, reportType string) error {
	if sess == nil {
		return ErrExportNoPermission
	}

	switch sess.Role {
	case RoleAdmin:
		if !sess.HasPermission(PermExportReports) {
			return ErrExportNoPermission
		}
		if _, ok := adminExportTypes[reportType]; !ok {
			return ErrExportTypeForbidden
		}
		return nil

	case RoleAgencia:
		if !sess.HasPermission(PermExportOwnReports) {
			return ErrExportNoPermission
		}
		if sess.AgenciaID == nil {
			return ErrExportNoAgency
		}
		if _, ok := agencyExportTypes[reportType]; !ok {
			return ErrExportTypeForbidden
		}
		return nil
	}

	return ErrExportNoPermission
}
