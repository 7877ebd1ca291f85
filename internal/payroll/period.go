// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

// Package payroll implements the payment ledger: batch uploads,
// corrections, and per-employee payment views.
package payroll

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// periodPattern is the wire shape of a payroll period: two-digit month
// 01-12, a dash, and a four-digit year.
var periodPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])-\d{4}$`)

// ErrBadPeriod rejects a period that does not match the MM-YYYY shape.
var ErrBadPeriod = errors.New("Wrong date!")

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// ValidatePeriod checks the MM-YYYY shape with a valid month.
func ValidatePeriod(period string) error {
	if !periodPattern.MatchString(period) {
		return ErrBadPeriod
	}
	return nil
}

// periodSortKey maps a valid period to an integer ordering key
// (year*100 + month) so records sort by year then month.
func periodSortKey(period string) int {
	month, _ := strconv.Atoi(period[:2])
	year, _ := strconv.Atoi(period[3:])
	return year*100 + month
}

// FormatPeriod renders a valid MM-YYYY period as "MonthName-YYYY",
// e.g. "01-2024" becomes "January-2024".
func FormatPeriod(period string) string {
	if err := ValidatePeriod(period); err != nil {
		return period
	}
	month, _ := strconv.Atoi(period[:2])
	return monthNames[month-1] + "-" + period[3:]
}

// FormatSalary renders a salary in minor units as
// "X dollar(s) Y cent(s)".
func FormatSalary(cents int64) string {
	return fmt.Sprintf("%d dollar(s) %d cent(s)", cents/100, cents%100)
}
