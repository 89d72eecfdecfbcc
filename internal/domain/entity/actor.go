package entity

// Roles válidos para Actor. El motor no los almacena: llegan en cada llamada.
const (
	RoleRequester     = "requester"
	RoleApprover      = "approver"
	RoleFulfiller     = "fulfiller"
	RoleAdministrator = "administrator"
)

// Actor identidad y rol de quien ejecuta una operación (resuelto por el colaborador de autenticación).
type Actor struct {
	ID   string
	Role string
}

// IsValidRole indica si role es uno de los roles conocidos.
func IsValidRole(role string) bool {
	switch role {
	case RoleRequester, RoleApprover, RoleFulfiller, RoleAdministrator:
		return true
	}
	return false
}

// IsAdmin indica si el actor tiene el rol de administrador.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdministrator }

// CanDecide indica si el actor puede aprobar, rechazar o asignar solicitudes.
func (a Actor) CanDecide() bool {
	return a.Role == RoleApprover || a.Role == RoleAdministrator
}
