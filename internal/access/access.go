// Package access decides who may do what. Every check is a pure function of
// the caller, the action and (where relevant) the resource owner, so the
// rules can be tested without a transport or a database.
package access

type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type Actor struct {
	UserID uint
	Role   Role
}

type Action string

const (
	ActionOrderRead     Action = "order:read"
	ActionOrderUpdate   Action = "order:update"
	ActionPaymentStart  Action = "payment:start"
	ActionPaymentRefund Action = "payment:refund"
	ActionProductWrite  Action = "product:write"
	ActionAdminRead     Action = "admin:read"
	ActionUserManage    Action = "user:manage"
)

// Allow reports whether actor may perform action on a resource owned by
// ownerID. ownerID is ignored for actions that are not ownership-scoped.
func Allow(actor Actor, action Action, ownerID uint) bool {
	if actor.UserID == 0 || !actor.Role.IsValid() {
		return false
	}

	switch action {
	case ActionOrderRead, ActionPaymentStart:
		return ownerID == actor.UserID
	case ActionOrderUpdate:
		return ownerID == actor.UserID || actor.Role.IsAdmin()
	case ActionPaymentRefund, ActionProductWrite, ActionAdminRead, ActionUserManage:
		return actor.Role.IsAdmin()
	}
	return false
}

// CanManageUser guards role changes and deletions of target. A super_admin
// account is only touchable by another super_admin, and nobody manages
// their own account through the admin surface.
func CanManageUser(actor, target Actor) bool {
	if !Allow(actor, ActionUserManage, 0) {
		return false
	}
	if actor.UserID == target.UserID {
		return false
	}
	if target.Role == RoleSuperAdmin && actor.Role != RoleSuperAdmin {
		return false
	}
	return true
}

// CanGrantRole reports whether actor may set target's role to role.
func CanGrantRole(actor, target Actor, role Role) bool {
	if !role.IsValid() || !CanManageUser(actor, target) {
		return false
	}
	if role == RoleSuperAdmin && actor.Role != RoleSuperAdmin {
		return false
	}
	return true
}
