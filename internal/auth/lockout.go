// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

// Package auth provides authentication functionality including the
// account lockout state machine.
package auth

import "github.com/acmecorp/accountd/internal/models"

// DefaultMaxAttempts is the lockout threshold: the failure that pushes
// the consecutive counter past this value locks the account.
const DefaultMaxAttempts = 5

// Lockout drives the per-account lockout state machine. The machine
// operates on an account loaded under the store's write lock; the
// caller persists the mutated account before emitting events or
// reporting an outcome.
//
// States: Unlocked(failures 0..max) and Locked. The threshold crossing
// is an edge, not a level: RecordFailure reports crossed=true exactly
// once per consecutive-failure run, so the BRUTE_FORCE/LOCK_USER event
// pair fires exactly once.
type Lockout struct {
	maxAttempts int
}

// NewLockout creates a lockout machine with the given threshold.
// A non-positive threshold falls back to DefaultMaxAttempts.
func NewLockout(maxAttempts int) *Lockout {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Lockout{maxAttempts: maxAttempts}
}

// MaxAttempts returns the configured threshold.
func (l *Lockout) MaxAttempts() int {
	return l.maxAttempts
}

// RecordFailure applies one failed authentication to the account.
// Locked accounts do not accumulate further failures. Administrator
// accounts count failures but never transition to Locked; their
// availability must not be degradable by online guessing.
func (l *Lockout) RecordFailure(a *models.Account) (crossed bool) {
	if a.Locked {
		return false
	}

	a.FailedLoginAttempts++

	if a.FailedLoginAttempts > l.maxAttempts && !a.IsAdministrator() {
		a.Locked = true
		return true
	}
	return false
}

// RecordSuccess resets the consecutive-failure counter. The
// authenticator never reaches this for a Locked account.
func (l *Lockout) RecordSuccess(a *models.Account) {
	a.FailedLoginAttempts = 0
}

// AdminUnlock clears the lock and resets the counter, regardless of
// its prior value.
func (l *Lockout) AdminUnlock(a *models.Account) {
	a.Locked = false
	a.FailedLoginAttempts = 0
}

// AdminLock sets the lock flag. The caller rejects Administrator
// targets before invoking this.
func (l *Lockout) AdminLock(a *models.Account) {
	a.Locked = true
}
