package auth

// Role is the coarse access class assigned at login.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAgencia Role = "agencia"
)

// RoleForProfile derives the role from a user's profile id. Profile 1 is the
// administrator profile, everything else is an agency operator.
func RoleForProfile(perfilID int) Role {
	if perfilID == 1 {
		return RoleAdmin
	}
	return RoleAgencia
}

// Permission names a capability granted to a role. The set is closed: there are
// no per-user grants.
type Permission string

const (
	PermViewAllReports       Permission = "view_all_reports"
	PermViewOwnReports       Permission = "view_own_reports"
	PermManageRaces          Permission = "manage_races"
	PermManageUsers          Permission = "manage_users"
	PermViewAuditLogs        Permission = "view_audit_logs"
	PermExportReports        Permission = "export_reports"
	PermExportOwnReports     Permission = "export_own_reports"
	PermChangeRaceStatus     Permission = "change_race_status"
	PermViewCancelledTickets Permission = "view_cancelled_tickets"
	PermViewAgencyReports    Permission = "view_agency_reports"
	PermViewDailySales       Permission = "view_daily_sales"
	PermViewRefunds          Permission = "view_refunds"
	PermViewSportsRaces      Permission = "view_sports_races"
)

// AllPermissions is the order used when reporting a session's permissions.
var AllPermissions = []Permission{
	PermViewAllReports,
	PermViewOwnReports,
	PermManageRaces,
	PermManageUsers,
	PermViewAuditLogs,
	PermExportReports,
	PermExportOwnReports,
	PermChangeRaceStatus,
	PermViewCancelledTickets,
	PermViewAgencyReports,
	PermViewDailySales,
	PermViewRefunds,
	PermViewSportsRaces,
}

var rolePermissions = map[Role]map[Permission]struct{}{
	RoleAdmin: permSet(
		PermViewAllReports,
		PermManageRaces,
		PermManageUsers,
		PermViewAuditLogs,
		PermExportReports,
		PermChangeRaceStatus,
		PermViewCancelledTickets,
		PermViewAgencyReports,
		PermViewDailySales,
		PermViewRefunds,
		PermViewSportsRaces,
	),
	RoleAgencia: permSet(
		PermViewOwnReports,
		PermViewDailySales,
		PermViewCancelledTickets,
		PermViewRefunds,
		PermViewSportsRaces,
		PermExportOwnReports,
	),
}

func permSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// RoleHasPermission reports whether the static table grants p to role.
func RoleHasPermission(role Role, p Permission) bool {
	_, ok := rolePermissions[role][p]
	return ok
}

// PermissionsForRole returns the granted permissions in reporting order.
func PermissionsForRole(role Role) []Permission {
	granted := make([]Permission, 0, len(rolePermissions[role]))
	for _, p := range AllPermissions {
		if RoleHasPermission(role, p) {
			granted = append(granted, p)
		}
	}
	return granted
}
