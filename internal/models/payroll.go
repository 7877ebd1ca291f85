// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package models

// PayrollRecord is one salary entry for an employee and period.
// (Employee, Period) is unique across the ledger. Salary is stored in
// minor units (cents) and is never negative.
type PayrollRecord struct {
	ID       int64  `json:"id"`
	Employee string `json:"employee"`
	Period   string `json:"period"`
	Salary   int64  `json:"salary"`
}
