package access

// Capability names one class of operation a route performs.
type Capability string

const (
	CapUsersManage   Capability = "users:manage"
	CapCatalogRead   Capability = "catalog:read"
	CapCatalogWrite  Capability = "catalog:write"
	CapOrdersRead    Capability = "orders:read"
	CapOrdersWrite   Capability = "orders:write"
	CapOrdersApprove Capability = "orders:approve"
	CapReportsView   Capability = "reports:view"
)

// grants is the single source of authorization decisions. AUDITOR holds
// reports only, so every catalog, order and user route is closed to it.
var grants = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapUsersManage:   true,
		CapCatalogRead:   true,
		CapCatalogWrite:  true,
		CapOrdersRead:    true,
		CapOrdersApprove: true,
		CapReportsView:   true,
	},
	RoleProcurement: {
		CapCatalogRead: true,
		CapOrdersRead:  true,
		CapOrdersWrite: true,
	},
	RoleAuditor: {
		CapReportsView: true,
	},
}

func Allows(r Role, c Capability) bool {
	return grants[r][c]
}

// CapabilitiesOf lists what a role may do, in declaration order.
func CapabilitiesOf(r Role) []Capability {
	all := []Capability{
		CapUsersManage, CapCatalogRead, CapCatalogWrite,
		CapOrdersRead, CapOrdersWrite, CapOrdersApprove, CapReportsView,
	}
	var out []Capability
	for _, c := range all {
		if Allows(r, c) {
			out = append(out, c)
		}
	}
	return out
}
