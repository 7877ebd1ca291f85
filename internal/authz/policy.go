// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package authz

import "github.com/acmecorp/accountd/internal/models"

// Violation is a role-change rejected by the assignment policy. The
// message is the client-facing reason.
type Violation struct {
	Message string
}

func (v *Violation) Error() string {
	return v.Message
}

// Assignment policy messages.
const (
	msgCombineRoles = "The user cannot combine administrative and business roles!"
	msgRoleNotHeld  = "The user does not have a role!"
	msgRemoveAdmin  = "Can't remove ADMINISTRATOR role!"
	msgLastRole     = "The user must have at least one role!"
)

// CheckGrant validates granting role to the account. Administrator is
// assigned only at first-account bootstrap and can never be granted
// here; business roles (ACCOUNTANT, USER) are mutually exclusive with
// Administrator.
func CheckGrant(a *models.Account, role models.Role) error {
	if role == models.RoleAdministrator {
		return &Violation{Message: msgCombineRoles}
	}
	if a.IsAdministrator() && role.IsBusiness() {
		return &Violation{Message: msgCombineRoles}
	}
	return nil
}

// CheckRemove validates removing role from the account. Rules apply in
// order: the administrator role is irremovable, the account must hold
// the role, and the account must keep at least one role.
func CheckRemove(a *models.Account, role models.Role) error {
	if role == models.RoleAdministrator {
		return &Violation{Message: msgRemoveAdmin}
	}
	if !a.HasRole(role) {
		return &Violation{Message: msgRoleNotHeld}
	}
	if len(a.Roles) == 1 {
		return &Violation{Message: msgLastRole}
	}
	return nil
}
