package session

// RoleTable maps a role string to the set of action permissions it may
// perform. Consulted client-side only, to decide which controls render; the
// backend enforces authorization independently on every request.
type RoleTable map[string][]string

// Permission names follow "<entity>.<action>".
const (
	PermProductsRead    = "products.read"
	PermProductsWrite   = "products.write"
	PermCatalogWrite    = "catalog.write" // categories, brands, suppliers
	PermCustomersRead   = "customers.read"
	PermCustomersWrite  = "customers.write"
	PermStaffManage     = "staff.manage"
	PermOrdersRead      = "orders.read"
	PermOrdersCreate    = "orders.create"
	PermOrdersUpdate    = "orders.update"
	PermPaymentsRead    = "payments.read"
	PermPaymentsCreate  = "payments.create"
	PermDashboardView   = "dashboard.view"
	PermNotificationsRW = "notifications.manage"
)

// DefaultRoles is the console's static role table.
var DefaultRoles = RoleTable{
	"admin": {
		PermProductsRead, PermProductsWrite, PermCatalogWrite,
		PermCustomersRead, PermCustomersWrite, PermStaffManage,
		PermOrdersRead, PermOrdersCreate, PermOrdersUpdate,
		PermPaymentsRead, PermPaymentsCreate,
		PermDashboardView, PermNotificationsRW,
	},
	"manager": {
		PermProductsRead, PermProductsWrite, PermCatalogWrite,
		PermCustomersRead, PermCustomersWrite,
		PermOrdersRead, PermOrdersCreate, PermOrdersUpdate,
		PermPaymentsRead, PermPaymentsCreate,
		PermDashboardView,
	},
	"sales_staff": {
		PermProductsRead,
		PermCustomersRead, PermCustomersWrite,
		PermOrdersRead, PermOrdersCreate,
		PermPaymentsRead, PermPaymentsCreate,
		PermDashboardView,
	},
}

// Allows reports whether role holds ANY of the given permissions (OR
// semantics). A control requiring ["create","update"] renders for a role that
// has either one; tightening to AND would hide controls the product expects
// visible. Unknown roles and empty permission lists report false.
func (t RoleTable) Allows(role string, perms ...string) bool {
	set, ok := t[role]
	if !ok || len(perms) == 0 {
		return false
	}
	for _, need := range perms {
		for _, have := range set {
			if need == have {
				return true
			}
		}
	}
	return false
}
