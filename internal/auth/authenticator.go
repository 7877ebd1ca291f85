// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package auth

import (
	"context"
	"errors"

	"github.com/acmecorp/accountd/internal/audit"
	"github.com/acmecorp/accountd/internal/logging"
	"github.com/acmecorp/accountd/internal/models"
	"github.com/acmecorp/accountd/internal/store"
)

var (
	// ErrInvalidCredentials covers unknown email and wrong password
	// alike; callers must not distinguish the two on the wire.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountLocked is returned for a locked account before the
	// password is ever checked.
	ErrAccountLocked = errors.New("User account is locked")
)

// Authenticator verifies credentials against the user store and drives
// the lockout state machine. State mutations are persisted through the
// store's serialized read-modify-write before any event is emitted or
// an outcome is reported.
type Authenticator struct {
	users    store.UserStore
	hasher   *Hasher
	lockout  *Lockout
	recorder *audit.Recorder
}

// NewAuthenticator wires the credential verifier.
func NewAuthenticator(users store.UserStore, hasher *Hasher, lockout *Lockout, recorder *audit.Recorder) *Authenticator {
	return &Authenticator{
		users:    users,
		hasher:   hasher,
		lockout:  lockout,
		recorder: recorder,
	}
}

// Authenticate verifies the submitted email/password pair. path is the
// request path recorded on security events. On failure the LOGIN_FAILED
// subject is the raw submitted email, not a canonicalized or verified
// identity; an empty submission is recorded as Anonymous.
func (a *Authenticator) Authenticate(ctx context.Context, email, password, path string) (*models.Account, error) {
	acct, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.recorder.Record(ctx, audit.ActionLoginFailed, email, path, path)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// Locked accounts are rejected before password verification and
	// do not accumulate further failures.
	if acct.Locked {
		a.recorder.Record(ctx, audit.ActionLoginFailed, email, path, path)
		return nil, ErrAccountLocked
	}

	if a.hasher.Verify(acct.PasswordHash, password) {
		if acct.FailedLoginAttempts != 0 {
			if _, err := a.users.Update(ctx, acct.Email, func(u *models.Account) error {
				a.lockout.RecordSuccess(u)
				return nil
			}); err != nil {
				logging.Err(err).Str("email", acct.Email).Msg("failed to reset login attempt counter")
			}
		}
		acct.FailedLoginAttempts = 0
		return acct, nil
	}

	// Wrong password: advance the lockout machine under the store's
	// write serialization, then emit events in the mandated order.
	var crossed bool
	updated, err := a.users.Update(ctx, acct.Email, func(u *models.Account) error {
		crossed = a.lockout.RecordFailure(u)
		return nil
	})
	if err != nil {
		logging.Err(err).Str("email", acct.Email).Msg("failed to record login failure")
	}

	a.recorder.Record(ctx, audit.ActionLoginFailed, email, path, path)
	if crossed {
		a.recorder.Record(ctx, audit.ActionBruteForce, email, path, path)
		a.recorder.Record(ctx, audit.ActionLockUser, email, "Lock user "+acct.Email, path)
	}

	if updated != nil && updated.Locked {
		return nil, ErrAccountLocked
	}
	return nil, ErrInvalidCredentials
}
