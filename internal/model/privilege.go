package model

type Privilege string

const (
	PrivProductView   Privilege = "product:view"
	PrivProductCreate Privilege = "product:create"
	PrivProductUpdate Privilege = "product:update"
	PrivProductDelete Privilege = "product:delete"
	PrivProductSeed   Privilege = "product:seed"

	PrivTransactionView   Privilege = "transaction:view"
	PrivTransactionCreate Privilege = "transaction:create"
	PrivTransactionUpdate Privilege = "transaction:update"
	PrivTransactionDelete Privilege = "transaction:delete"

	PrivShopView   Privilege = "shop:view"
	PrivShopCreate Privilege = "shop:create"
	PrivShopUpdate Privilege = "shop:update"
	PrivShopDelete Privilege = "shop:delete"

	PrivUserAssignRole  Privilege = "user:assign_role"
	PrivReportReconcile Privilege = "report:reconciliation"
	PrivDashboardView   Privilege = "dashboard:view"
)

var viewPrivileges = []Privilege{
	PrivProductView,
	PrivTransactionView,
	PrivShopView,
	PrivDashboardView,
}

// rolePrivileges is the capability table. Admin holds everything, manager
// may create and edit but never delete, staff is read only.
var rolePrivileges = map[Role][]Privilege{
	RoleAdmin: append([]Privilege{
		PrivProductCreate, PrivProductUpdate, PrivProductDelete, PrivProductSeed,
		PrivTransactionCreate, PrivTransactionUpdate, PrivTransactionDelete,
		PrivShopCreate, PrivShopUpdate, PrivShopDelete,
		PrivUserAssignRole, PrivReportReconcile,
	}, viewPrivileges...),
	RoleManager: append([]Privilege{
		PrivProductCreate, PrivProductUpdate,
		PrivTransactionCreate, PrivTransactionUpdate,
		PrivShopCreate, PrivShopUpdate,
	}, viewPrivileges...),
	RoleStaff: viewPrivileges,
}

// Privileges returns the capabilities granted to r. Unknown roles get none.
func (r Role) Privileges() []Privilege {
	return rolePrivileges[r]
}

func (r Role) Has(p Privilege) bool {
	for _, granted := range rolePrivileges[r] {
		if granted == p {
			return true
		}
	}
	return false
}
