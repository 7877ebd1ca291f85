// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

// Package models defines the core domain types shared across accountd:
// accounts, roles, payroll records, and the request/response DTOs.
package models

import (
	"errors"
	"sort"
	"strings"
)

// Role is an enumerated permission group. Roles are global singletons
// referenced by accounts.
type Role string

const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleAccountant    Role = "ACCOUNTANT"
	RoleUser          Role = "USER"
	RoleAuditor       Role = "AUDITOR"
)

// RolePrefix is prepended to role names on the wire, matching the
// GROUP naming convention used by the security layer.
const RolePrefix = "ROLE_"

// ErrUnknownRole is returned when a role name does not resolve.
var ErrUnknownRole = errors.New("role not found")

// ParseRole resolves a role name, with or without the ROLE_ prefix,
// case-insensitively.
func ParseRole(name string) (Role, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, RolePrefix)

	switch Role(n) {
	case RoleAdministrator, RoleAccountant, RoleUser, RoleAuditor:
		return Role(n), nil
	default:
		return "", ErrUnknownRole
	}
}

// WireName returns the prefixed form used in API responses, e.g.
// "ROLE_ADMINISTRATOR".
func (r Role) WireName() string {
	return RolePrefix + string(r)
}

// IsBusiness reports whether the role is a business role. Business
// roles are mutually exclusive with Administrator on the same account.
func (r Role) IsBusiness() bool {
	return r == RoleAccountant || r == RoleUser
}

// Account is an employee account. Email is the login identity and is
// stored in lowercased canonical form. Every account holds at least
// one role.
type Account struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Lastname     string `json:"lastname"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`

	// Roles is the unordered role set. Presentation order is applied
	// explicitly via SortedRoleNames.
	Roles []Role `json:"-"`

	// FailedLoginAttempts counts consecutive failed logins. A
	// successful login resets it to zero.
	FailedLoginAttempts int `json:"-"`

	// Locked blocks authentication when true. Administrator accounts
	// can never be locked.
	Locked bool `json:"-"`
}

// HasRole reports whether the account holds the given role.
func (a *Account) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdministrator reports whether the account holds the Administrator role.
func (a *Account) IsAdministrator() bool {
	return a.HasRole(RoleAdministrator)
}

// AddRole appends a role if the account does not already hold it.
func (a *Account) AddRole(role Role) {
	if !a.HasRole(role) {
		a.Roles = append(a.Roles, role)
	}
}

// RemoveRole drops a role from the set. Removing a role the account
// does not hold is a no-op.
func (a *Account) RemoveRole(role Role) {
	out := a.Roles[:0]
	for _, r := range a.Roles {
		if r != role {
			out = append(out, r)
		}
	}
	a.Roles = out
}

// SortedRoleNames returns the wire names of the account's roles in
// ascending lexical order. Storage order is deliberately not relied
// upon; sorting happens at the presentation edge.
func (a *Account) SortedRoleNames() []string {
	names := make([]string, 0, len(a.Roles))
	for _, r := range a.Roles {
		names = append(names, r.WireName())
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the account. Stores hand out clones so
// callers never share role slices with the stored record.
func (a *Account) Clone() *Account {
	c := *a
	c.Roles = append([]Role(nil), a.Roles...)
	return &c
}

// CanonicalEmail lowercases an email address into its canonical
// storage and comparison form.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AccountView is the non-sensitive representation of an account
// returned by the API.
type AccountView struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Lastname string   `json:"lastname"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// View maps an account to its API representation with sorted roles.
func (a *Account) View() AccountView {
	return AccountView{
		ID:       a.ID,
		Name:     a.Name,
		Lastname: a.Lastname,
		Email:    a.Email,
		Roles:    a.SortedRoleNames(),
	}
}
