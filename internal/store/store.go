// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

// Package store defines the persistence collaborators for accountd:
// the account store and the payroll ledger. Two implementations exist,
// an in-memory store for development and tests and a sqlite store for
// production.
package store

import (
	"context"
	"errors"

	"github.com/acmecorp/accountd/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert would violate a
	// uniqueness constraint (email, or employee+period).
	ErrDuplicate = errors.New("duplicate record")
)

// UserStore persists accounts keyed by canonical (lowercased) email.
//
// Implementations must serialize read-modify-write cycles on the same
// account: Create and Update run under a store write lock (or an
// exclusive transaction) so that concurrent failed-login counting and
// the first-account role decision cannot lose updates.
type UserStore interface {
	// FindByEmail looks up an account by email, case-insensitively.
	FindByEmail(ctx context.Context, email string) (*models.Account, error)

	// List returns all accounts ordered by id ascending.
	List(ctx context.Context) ([]*models.Account, error)

	// Count returns the total number of accounts.
	Count(ctx context.Context) (int64, error)

	// Create inserts a new account and assigns its ID. The prepare
	// hook, if non-nil, runs with the store's current account count
	// while the store is locked for writing; the first-account role
	// decision happens there so two concurrent first signups cannot
	// both observe a count of zero. Returns ErrDuplicate when the
	// email already exists.
	Create(ctx context.Context, a *models.Account, prepare func(count int64)) (*models.Account, error)

	// Update applies fn to the stored account under the store's write
	// lock and persists the result. If fn returns an error the account
	// is left unchanged and the error is returned verbatim.
	Update(ctx context.Context, email string, fn func(*models.Account) error) (*models.Account, error)

	// Delete removes an account. Returns ErrNotFound when absent.
	Delete(ctx context.Context, email string) error
}

// PayrollStore persists payroll records keyed by (employee, period).
type PayrollStore interface {
	// Find returns the record for an employee and period, or
	// ErrNotFound.
	Find(ctx context.Context, employee, period string) (*models.PayrollRecord, error)

	// FindAllFor returns all records for an employee, unordered.
	FindAllFor(ctx context.Context, employee string) ([]*models.PayrollRecord, error)

	// SaveAll inserts a batch of new records atomically. Returns
	// ErrDuplicate if any (employee, period) pair already exists.
	SaveAll(ctx context.Context, records []*models.PayrollRecord) error

	// Save updates an existing record's salary. Returns ErrNotFound
	// when the (employee, period) pair is absent.
	Save(ctx context.Context, record *models.PayrollRecord) error
}
