// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

// Package accounts implements account lifecycle operations: signup
// with role bootstrap, password changes, role and access management,
// and deletion.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/acmecorp/accountd/internal/audit"
	"github.com/acmecorp/accountd/internal/auth"
	"github.com/acmecorp/accountd/internal/authz"
	"github.com/acmecorp/accountd/internal/httperr"
	"github.com/acmecorp/accountd/internal/logging"
	"github.com/acmecorp/accountd/internal/models"
	"github.com/acmecorp/accountd/internal/store"
	"github.com/acmecorp/accountd/internal/validation"
)

// Client-facing messages.
const (
	msgInvalidInput     = "Invalid input!"
	msgBadEmailDomain   = "Email must end with @acme.com"
	msgUserExists       = "User exist!"
	msgUserNotFound     = "User not found!"
	msgRoleNotFound     = "Role not found!"
	msgInvalidOperation = "Invalid operation!"
	msgRemoveAdminRole  = "Can't remove ADMINISTRATOR role!"
	msgLockAdmin        = "Can't lock the ADMINISTRATOR!"
)

// Role change operations.
const (
	OpGrant  = "GRANT"
	OpRemove = "REMOVE"
)

// Access change operations.
const (
	OpLock   = "LOCK"
	OpUnlock = "UNLOCK"
)

// Service implements account management over the user store.
type Service struct {
	users    store.UserStore
	hasher   *auth.Hasher
	lockout  *auth.Lockout
	recorder *audit.Recorder
}

// NewService wires the account service.
func NewService(users store.UserStore, hasher *auth.Hasher, lockout *auth.Lockout, recorder *audit.Recorder) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		lockout:  lockout,
		recorder: recorder,
	}
}

// Register creates a new account. Checks run in a fixed order and the
// first failure wins: corporate email domain, uniqueness, password
// policy. The very first account is granted Administrator; every later
// account is granted User.
func (s *Service) Register(ctx context.Context, req *models.SignupRequest, path string) (*models.Account, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, httperr.BadRequest(msgInvalidInput)
	}
	if !validation.IsCorporateEmail(req.Email) {
		return nil, httperr.BadRequest(msgBadEmailDomain)
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, httperr.BadRequest(msgUserExists)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if err := s.hasher.CheckPolicy(req.Password); err != nil {
		return nil, httperr.BadRequest(err.Error())
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	a := &models.Account{
		Name:         req.Name,
		Lastname:     req.Lastname,
		Email:        models.CanonicalEmail(req.Email),
		PasswordHash: hash,
	}

	// The role decision runs under the store's write serialization so
	// two concurrent first signups cannot both become Administrator.
	created, err := s.users.Create(ctx, a, func(count int64) {
		if count == 0 {
			a.Roles = []models.Role{models.RoleAdministrator}
		} else {
			a.Roles = []models.Role{models.RoleUser}
		}
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, httperr.BadRequest(msgUserExists)
		}
		return nil, err
	}

	s.recorder.Record(ctx, audit.ActionCreateUser, audit.SubjectAnonymous, created.Email, path)
	logging.Info().Str("email", created.Email).Msg("account created")
	return created, nil
}

// ChangePassword replaces the actor's password. The new password must
// satisfy the password policy and differ from the current one.
func (s *Service) ChangePassword(ctx context.Context, actor *models.Account, newPassword, path string) error {
	if err := s.hasher.CheckPolicy(newPassword); err != nil {
		return httperr.BadRequest(err.Error())
	}
	if s.hasher.Verify(actor.PasswordHash, newPassword) {
		return httperr.BadRequest(auth.ErrPasswordSame.Error())
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.users.Update(ctx, actor.Email, func(u *models.Account) error {
		u.PasswordHash = hash
		return nil
	}); err != nil {
		return err
	}

	s.recorder.Record(ctx, audit.ActionChangePassword, actor.Email, actor.Email, path)
	return nil
}

// ListUsers returns every account in ascending id order.
func (s *Service) ListUsers(ctx context.Context) ([]models.AccountView, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]models.AccountView, len(all))
	for i, a := range all {
		views[i] = a.View()
	}
	return views, nil
}

// DeleteUser removes an account. Administrator accounts cannot be
// deleted.
func (s *Service) DeleteUser(ctx context.Context, actor *models.Account, email, path string) error {
	target, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httperr.NotFound(msgUserNotFound)
		}
		return err
	}
	if target.IsAdministrator() {
		return httperr.BadRequest(msgRemoveAdminRole)
	}

	if err := s.users.Delete(ctx, target.Email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httperr.NotFound(msgUserNotFound)
		}
		return err
	}

	s.recorder.Record(ctx, audit.ActionDeleteUser, actor.Email, target.Email, path)
	return nil
}

// ChangeRole grants or removes a role per the assignment policy and
// returns the updated account.
func (s *Service) ChangeRole(ctx context.Context, actor *models.Account, req *models.RoleChangeRequest, path string) (*models.Account, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, httperr.BadRequest(msgInvalidInput)
	}

	op := strings.ToUpper(strings.TrimSpace(req.Operation))
	if op != OpGrant && op != OpRemove {
		return nil, httperr.BadRequest(msgInvalidOperation)
	}

	// The user lookup comes before the role lookup, so an unknown user
	// wins over an unknown role. Update reports ErrNotFound before the
	// closure runs.
	var role models.Role
	updated, err := s.users.Update(ctx, req.User, func(u *models.Account) error {
		parsed, perr := models.ParseRole(req.Role)
		if perr != nil {
			return httperr.NotFound(msgRoleNotFound)
		}
		role = parsed

		switch op {
		case OpGrant:
			if err := authz.CheckGrant(u, role); err != nil {
				return httperr.BadRequest(err.Error())
			}
			u.AddRole(role)
		case OpRemove:
			if err := authz.CheckRemove(u, role); err != nil {
				return httperr.BadRequest(err.Error())
			}
			u.RemoveRole(role)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, httperr.NotFound(msgUserNotFound)
		}
		return nil, err
	}

	switch op {
	case OpGrant:
		object := fmt.Sprintf("Grant role %s to %s", role, updated.Email)
		s.recorder.Record(ctx, audit.ActionGrantRole, actor.Email, object, path)
	case OpRemove:
		object := fmt.Sprintf("Remove role %s from %s", role, updated.Email)
		s.recorder.Record(ctx, audit.ActionRemoveRole, actor.Email, object, path)
	}
	return updated, nil
}

// ChangeAccess locks or unlocks an account. Administrator accounts are
// off limits to both operations; unlocking resets the failure counter.
func (s *Service) ChangeAccess(ctx context.Context, actor *models.Account, req *models.AccessChangeRequest, path string) (string, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return "", httperr.BadRequest(msgInvalidInput)
	}

	op := strings.ToUpper(strings.TrimSpace(req.Operation))
	if op != OpLock && op != OpUnlock {
		return "", httperr.BadRequest(msgInvalidOperation)
	}

	updated, err := s.users.Update(ctx, req.User, func(u *models.Account) error {
		// The admin check precedes the operation branch, so UNLOCK of
		// an administrator is rejected too.
		if u.IsAdministrator() {
			return httperr.BadRequest(msgLockAdmin)
		}
		switch op {
		case OpLock:
			s.lockout.AdminLock(u)
		case OpUnlock:
			s.lockout.AdminUnlock(u)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", httperr.NotFound(msgUserNotFound)
		}
		return "", err
	}

	if op == OpLock {
		s.recorder.Record(ctx, audit.ActionLockUser, actor.Email, "Lock user "+updated.Email, path)
		return fmt.Sprintf("User %s locked!", updated.Email), nil
	}
	s.recorder.Record(ctx, audit.ActionUnlockUser, actor.Email, "Unlock user "+updated.Email, path)
	return fmt.Sprintf("User %s unlocked!", updated.Email), nil
}
