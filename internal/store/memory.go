// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/acmecorp/accountd/internal/models"
)

// MemoryUserStore implements UserStore using in-memory storage.
// Suitable for development and testing. Data is lost on restart.
type MemoryUserStore struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account // keyed by canonical email
	nextID   int64
}

// NewMemoryUserStore creates a new in-memory account store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		accounts: make(map[string]*models.Account),
		nextID:   1,
	}
}

// FindByEmail looks up an account by email, case-insensitively.
func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[models.CanonicalEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return a.Clone(), nil
}

// List returns all accounts ordered by id ascending.
func (s *MemoryUserStore) List(ctx context.Context) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Count returns the total number of accounts.
func (s *MemoryUserStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.accounts)), nil
}

// Create inserts a new account under the store write lock. The prepare
// hook observes the pre-insert count while the lock is held.
func (s *MemoryUserStore) Create(ctx context.Context, a *models.Account, prepare func(count int64)) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.CanonicalEmail(a.Email)
	if _, exists := s.accounts[key]; exists {
		return nil, ErrDuplicate
	}

	if prepare != nil {
		prepare(int64(len(s.accounts)))
	}

	stored := a.Clone()
	stored.Email = key
	stored.ID = s.nextID
	s.nextID++
	s.accounts[key] = stored

	return stored.Clone(), nil
}

// Update applies fn to the stored account under the write lock.
func (s *MemoryUserStore) Update(ctx context.Context, email string, fn func(*models.Account) error) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.CanonicalEmail(email)
	stored, ok := s.accounts[key]
	if !ok {
		return nil, ErrNotFound
	}

	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	// Identity fields are immutable through Update.
	working.ID = stored.ID
	working.Email = stored.Email
	s.accounts[key] = working

	return working.Clone(), nil
}

// Delete removes an account.
func (s *MemoryUserStore) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.CanonicalEmail(email)
	if _, ok := s.accounts[key]; !ok {
		return ErrNotFound
	}
	delete(s.accounts, key)
	return nil
}

// MemoryPayrollStore implements PayrollStore using in-memory storage.
type MemoryPayrollStore struct {
	mu      sync.RWMutex
	records map[payrollKey]*models.PayrollRecord
	nextID  int64
}

type payrollKey struct {
	employee string
	period   string
}

// NewMemoryPayrollStore creates a new in-memory payroll ledger.
func NewMemoryPayrollStore() *MemoryPayrollStore {
	return &MemoryPayrollStore{
		records: make(map[payrollKey]*models.PayrollRecord),
		nextID:  1,
	}
}

func (s *MemoryPayrollStore) key(employee, period string) payrollKey {
	return payrollKey{employee: models.CanonicalEmail(employee), period: period}
}

// Find returns the record for an employee and period.
func (s *MemoryPayrollStore) Find(ctx context.Context, employee, period string) (*models.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[s.key(employee, period)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// FindAllFor returns all records for an employee.
func (s *MemoryPayrollStore) FindAllFor(ctx context.Context, employee string) ([]*models.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	canonical := models.CanonicalEmail(employee)
	var out []*models.PayrollRecord
	for k, r := range s.records {
		if k.employee == canonical {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// SaveAll inserts a batch of new records atomically: either every
// record is inserted or none is.
func (s *MemoryPayrollStore) SaveAll(ctx context.Context, records []*models.PayrollRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[payrollKey]bool, len(records))
	for _, r := range records {
		k := s.key(r.Employee, r.Period)
		if seen[k] {
			return ErrDuplicate
		}
		if _, exists := s.records[k]; exists {
			return ErrDuplicate
		}
		seen[k] = true
	}

	for _, r := range records {
		cp := *r
		cp.Employee = models.CanonicalEmail(r.Employee)
		cp.ID = s.nextID
		s.nextID++
		s.records[s.key(r.Employee, r.Period)] = &cp
	}
	return nil
}

// Save updates an existing record's salary.
func (s *MemoryPayrollStore) Save(ctx context.Context, record *models.PayrollRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := s.key(record.Employee, record.Period)
	stored, ok := s.records[k]
	if !ok {
		return ErrNotFound
	}
	stored.Salary = record.Salary
	return nil
}
