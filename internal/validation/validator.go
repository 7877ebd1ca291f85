// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

// Package validation provides struct validation using
// go-playground/validator v10, plus the corporate email domain check.
// The domain check is not a struct tag: services apply it after the
// required-field pass so a bad domain gets its own message.
package validation

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// CorporateEmailSuffix is the mandatory email domain for accounts.
const CorporateEmailSuffix = "@acme.com"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single field validation failure.
type FieldError struct {
	Field string
	Tag   string
}

// RequestError is a collection of field validation failures for one
// request payload.
type RequestError struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}

	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return "invalid fields: " + strings.Join(names, ", ")
}

// Has reports whether the named field failed.
func (e *RequestError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// GetValidator returns the singleton validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	return validate
}

// IsCorporateEmail reports whether the address ends with the corporate
// suffix, case-insensitive, with a non-empty local part.
func IsCorporateEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	return strings.HasSuffix(email, CorporateEmailSuffix) && len(email) > len(CorporateEmailSuffix)
}

// ValidateStruct validates a struct using the singleton validator.
// Returns nil on success or a *RequestError listing every failed field.
func ValidateStruct(s interface{}) *RequestError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestError{Fields: []FieldError{{Field: "unknown", Tag: "unknown"}}}
	}

	fields := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fields[i] = FieldError{Field: fe.Field(), Tag: fe.Tag()}
	}
	return &RequestError{Fields: fields}
}
