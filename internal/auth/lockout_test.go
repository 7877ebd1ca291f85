// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package auth

import (
	"testing"

	"github.com/acmecorp/accountd/internal/models"
)

func TestRecordFailureCrossesThresholdOnce(t *testing.T) {
	l := NewLockout(5)
	a := &models.Account{Email: "user@acme.com", Roles: []models.Role{models.RoleUser}}

	for i := 1; i <= 5; i++ {
		if crossed := l.RecordFailure(a); crossed {
			t.Fatalf("failure %d should not cross the threshold", i)
		}
		if a.Locked {
			t.Fatalf("account locked after %d failures", i)
		}
	}

	if crossed := l.RecordFailure(a); !crossed {
		t.Fatal("sixth failure should cross the threshold")
	}
	if !a.Locked {
		t.Fatal("account should be locked after crossing")
	}

	// Further failures on a locked account neither count nor re-cross.
	before := a.FailedLoginAttempts
	if crossed := l.RecordFailure(a); crossed {
		t.Fatal("crossing must only be reported once")
	}
	if a.FailedLoginAttempts != before {
		t.Errorf("locked account accumulated failures: %d -> %d", before, a.FailedLoginAttempts)
	}
}

func TestRecordSuccessResetsCounter(t *testing.T) {
	l := NewLockout(5)
	a := &models.Account{Email: "user@acme.com", Roles: []models.Role{models.RoleUser}}

	for i := 0; i < 5; i++ {
		l.RecordFailure(a)
	}
	l.RecordSuccess(a)
	if a.FailedLoginAttempts != 0 {
		t.Fatalf("counter = %d after success, want 0", a.FailedLoginAttempts)
	}

	// A fresh run needs six consecutive failures again.
	for i := 1; i <= 5; i++ {
		if crossed := l.RecordFailure(a); crossed {
			t.Fatalf("failure %d after reset should not lock", i)
		}
	}
	if !l.RecordFailure(a) {
		t.Fatal("sixth failure after reset should lock")
	}
}

func TestAdministratorNeverLocks(t *testing.T) {
	l := NewLockout(5)
	a := &models.Account{Email: "admin@acme.com", Roles: []models.Role{models.RoleAdministrator}}

	for i := 1; i <= 20; i++ {
		if crossed := l.RecordFailure(a); crossed {
			t.Fatalf("administrator crossed threshold on failure %d", i)
		}
		if a.Locked {
			t.Fatalf("administrator locked on failure %d", i)
		}
	}
	if a.FailedLoginAttempts != 20 {
		t.Errorf("counter = %d, want 20", a.FailedLoginAttempts)
	}
}

func TestAdminUnlockResetsState(t *testing.T) {
	l := NewLockout(5)
	a := &models.Account{Email: "user@acme.com", Roles: []models.Role{models.RoleUser}}

	for i := 0; i < 6; i++ {
		l.RecordFailure(a)
	}
	if !a.Locked {
		t.Fatal("precondition: account should be locked")
	}

	l.AdminUnlock(a)
	if a.Locked {
		t.Error("account still locked after unlock")
	}
	if a.FailedLoginAttempts != 0 {
		t.Errorf("counter = %d after unlock, want 0", a.FailedLoginAttempts)
	}
}

func TestNewLockoutDefaultsThreshold(t *testing.T) {
	if got := NewLockout(0).MaxAttempts(); got != DefaultMaxAttempts {
		t.Errorf("MaxAttempts() = %d, want %d", got, DefaultMaxAttempts)
	}
	if got := NewLockout(3).MaxAttempts(); got != 3 {
		t.Errorf("MaxAttempts() = %d, want 3", got)
	}
}
