// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package payroll

import "testing"

func TestValidatePeriod(t *testing.T) {
	valid := []string{"01-2024", "09-1999", "12-2030", "10-0001"}
	for _, p := range valid {
		if err := ValidatePeriod(p); err != nil {
			t.Errorf("ValidatePeriod(%q) = %v, want nil", p, err)
		}
	}

	invalid := []string{"13-2024", "00-2024", "1-2024", "012024", "01-24", "January-2024", "", "01-20245"}
	for _, p := range invalid {
		if err := ValidatePeriod(p); err == nil {
			t.Errorf("ValidatePeriod(%q) = nil, want error", p)
		}
	}
}

func TestFormatPeriod(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"01-2024", "January-2024"},
		{"06-2021", "June-2021"},
		{"12-1999", "December-1999"},
	}
	for _, tt := range tests {
		if got := FormatPeriod(tt.in); got != tt.want {
			t.Errorf("FormatPeriod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSalary(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{123456, "1234 dollar(s) 56 cent(s)"},
		{0, "0 dollar(s) 0 cent(s)"},
		{99, "0 dollar(s) 99 cent(s)"},
		{100, "1 dollar(s) 0 cent(s)"},
	}
	for _, tt := range tests {
		if got := FormatSalary(tt.cents); got != tt.want {
			t.Errorf("FormatSalary(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestPeriodSortKey(t *testing.T) {
	if periodSortKey("12-2023") >= periodSortKey("01-2024") {
		t.Error("December 2023 should sort before January 2024")
	}
	if periodSortKey("01-2024") >= periodSortKey("02-2024") {
		t.Error("January should sort before February of the same year")
	}
}
