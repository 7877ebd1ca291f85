// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package payroll

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/acmecorp/accountd/internal/httperr"
	"github.com/acmecorp/accountd/internal/models"
	"github.com/acmecorp/accountd/internal/store"
)

// Client-facing messages.
const (
	msgEmployeeNotFound = "Employee not found"
	msgNegativeSalary   = "Salary must be non negative!"
	msgDuplicateRecord  = "Duplicate record"
	msgRecordNotFound   = "Payment record not found"
)

// PaymentView is the employee-facing rendering of one payroll record.
type PaymentView struct {
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
	Period   string `json:"period"`
	Salary   string `json:"salary"`
}

// Service implements payroll uploads and queries over the ledger.
type Service struct {
	ledger store.PayrollStore
	users  store.UserStore
}

// NewService wires the payroll service.
func NewService(ledger store.PayrollStore, users store.UserStore) *Service {
	return &Service{ledger: ledger, users: users}
}

// validateRecord accumulates every field error for one upload record.
// Field order is fixed: employee, period, salary.
func (s *Service) validateRecord(ctx context.Context, req *models.PayrollUploadRequest) (*models.PayrollRecord, []string) {
	var errs []string

	employee := models.CanonicalEmail(req.Employee)
	if _, err := s.users.FindByEmail(ctx, employee); err != nil {
		errs = append(errs, "employee: "+msgEmployeeNotFound)
	}

	if err := ValidatePeriod(req.Period); err != nil {
		errs = append(errs, "period: "+err.Error())
	}

	salary, err := req.Salary.Int64()
	if err != nil {
		errs = append(errs, "salary: "+msgNegativeSalary)
	} else if salary < 0 {
		errs = append(errs, "salary: "+msgNegativeSalary)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &models.PayrollRecord{
		Employee: employee,
		Period:   req.Period,
		Salary:   salary,
	}, nil
}

// UploadBatch validates and stores a batch of payroll records. Field
// errors are collected across the whole batch, prefixed with the
// record index, and reported together. The batch is applied atomically:
// any error stores nothing.
func (s *Service) UploadBatch(ctx context.Context, batch []models.PayrollUploadRequest) error {
	if len(batch) == 0 {
		return httperr.BadRequest("payments: must not be empty")
	}

	var all []string
	records := make([]*models.PayrollRecord, 0, len(batch))
	seen := make(map[string]bool, len(batch))

	for i := range batch {
		record, errs := s.validateRecord(ctx, &batch[i])
		for _, e := range errs {
			all = append(all, fmt.Sprintf("payments[%d].%s", i, e))
		}
		if record == nil {
			continue
		}

		key := record.Employee + "|" + record.Period
		if seen[key] {
			all = append(all, fmt.Sprintf("payments[%d]: %s", i, msgDuplicateRecord))
			continue
		}

		// A pair already in the ledger is a validation error like any
		// other, collected with the rest of the batch.
		if _, err := s.ledger.Find(ctx, record.Employee, record.Period); err == nil {
			all = append(all, fmt.Sprintf("payments[%d]: %s", i, msgDuplicateRecord))
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		seen[key] = true
		records = append(records, record)
	}

	if len(all) > 0 {
		return httperr.BadRequest(strings.Join(all, ", "))
	}

	if err := s.ledger.SaveAll(ctx, records); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return httperr.BadRequest(msgDuplicateRecord)
		}
		return err
	}
	return nil
}

// UpdateRecord corrects the salary of an existing record. Only the
// salary field changes; the (employee, period) pair must already exist.
func (s *Service) UpdateRecord(ctx context.Context, req *models.PayrollUploadRequest) error {
	record, errs := s.validateRecord(ctx, req)
	if len(errs) > 0 {
		return httperr.BadRequest(strings.Join(errs, ", "))
	}

	if err := s.ledger.Save(ctx, record); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httperr.NotFound(msgRecordNotFound)
		}
		return err
	}
	return nil
}

// PaymentFor returns the rendered payment of one period for the
// account, or nil when no record exists for that period.
func (s *Service) PaymentFor(ctx context.Context, acct *models.Account, period string) (*PaymentView, error) {
	if err := ValidatePeriod(period); err != nil {
		return nil, httperr.BadRequest(err.Error())
	}

	record, err := s.ledger.Find(ctx, acct.Email, period)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	view := s.view(acct, record)
	return &view, nil
}

// PaymentsFor returns every payment for the account, newest period
// first (year descending, then month descending).
func (s *Service) PaymentsFor(ctx context.Context, acct *models.Account) ([]PaymentView, error) {
	records, err := s.ledger.FindAllFor(ctx, acct.Email)
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return periodSortKey(records[i].Period) > periodSortKey(records[j].Period)
	})

	views := make([]PaymentView, len(records))
	for i, r := range records {
		views[i] = s.view(acct, r)
	}
	return views, nil
}

func (s *Service) view(acct *models.Account, r *models.PayrollRecord) PaymentView {
	return PaymentView{
		Name:     acct.Name,
		Lastname: acct.Lastname,
		Period:   FormatPeriod(r.Period),
		Salary:   FormatSalary(r.Salary),
	}
}
