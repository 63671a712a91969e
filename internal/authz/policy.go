// Package authz holds the role hierarchy and resource ownership policies.
// Every function here is pure: all actor and resource facts arrive as
// arguments, nothing is read from ambient state, and identical inputs
// always produce identical answers.
package authz

// assignableRoles is the declarative grant table: for each actor role, the
// set of roles it may provision or manage. SUPER_ADMIN is intentionally
// absent from every target set; that account exists only via bootstrap.
var assignableRoles = map[Role]map[Role]bool{
	RoleSuperAdmin: {RoleAdmin: true, RoleEditor: true, RoleReporter: true, RoleUser: true},
	RoleAdmin:      {RoleEditor: true, RoleReporter: true, RoleUser: true},
	RoleEditor:     {RoleReporter: true, RoleUser: true},
	RoleReporter:   {},
	RoleUser:       {},
}

// ArticleManagerRoles may mutate any article regardless of ownership.
var ArticleManagerRoles = []Role{RoleEditor, RoleAdmin, RoleSuperAdmin}

// CommentManagerRoles may mutate any comment regardless of ownership.
var CommentManagerRoles = []Role{RoleAdmin, RoleEditor, RoleSuperAdmin}

// CanAssignRole reports whether an actor may provision an account holding
// the target role. SUPER_ADMIN is never an assignable target, checked
// before the grant table is consulted. Pairs outside the table deny.
func CanAssignRole(actor, target Role) bool {
	if target == RoleSuperAdmin {
		return false
	}
	return assignableRoles[actor][target]
}

// CanChangeRole reports whether an actor may change an existing account's
// role. Only SUPER_ADMIN may change roles at all; the SUPER_ADMIN
// account's own role is immutable; nobody changes their own role; and
// SUPER_ADMIN is never a valid new role.
func CanChangeRole(actor, existing, next Role, isSelf bool) bool {
	if actor != RoleSuperAdmin {
		return false
	}
	if existing == RoleSuperAdmin || next == RoleSuperAdmin {
		return false
	}
	if isSelf {
		return false
	}
	return next.Valid()
}

// CanDeleteIdentity reports whether an account holding targetRole may be
// deleted. The SUPER_ADMIN account is undeletable and no actor may delete
// themselves; the minimum actor privilege is enforced upstream at the
// route gate, so the actor role is not consulted here.
func CanDeleteIdentity(target Role, isSelf bool) bool {
	if target == RoleSuperAdmin {
		return false
	}
	return !isSelf
}

// CanMutate reports whether an actor may update or delete an owned
// resource. Ownership is always sufficient; otherwise the actor role must
// be in the resource's privileged set.
func CanMutate(actorID int64, actor Role, ownerID int64, privileged []Role) bool {
	if actorID == ownerID {
		return true
	}
	for _, role := range privileged {
		if actor == role {
			return true
		}
	}
	return false
}

// CanDeleteComment extends CanMutate for comments: SUPER_ADMIN may delete
// any comment unconditionally. The escalation applies to deletion only,
// updates still go through CanMutate.
func CanDeleteComment(actorID int64, actor Role, ownerID int64) bool {
	if actor == RoleSuperAdmin {
		return true
	}
	return CanMutate(actorID, actor, ownerID, CommentManagerRoles)
}
