// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package models

import "github.com/goccy/go-json"

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Lastname string `json:"lastname" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest is the body of POST /api/auth/changepass.
type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required"`
}

// RoleChangeRequest is the body of PUT /api/admin/user/role.
// Role is the bare role name (e.g. "ACCOUNTANT"); Operation is GRANT
// or REMOVE.
type RoleChangeRequest struct {
	User      string `json:"user" validate:"required"`
	Role      string `json:"role" validate:"required"`
	Operation string `json:"operation" validate:"required"`
}

// AccessChangeRequest is the body of PUT /api/admin/user/access.
// Operation is LOCK or UNLOCK.
type AccessChangeRequest struct {
	User      string `json:"user" validate:"required"`
	Operation string `json:"operation" validate:"required"`
}

// PayrollUploadRequest is one record of the POST /api/acct/payments
// batch body and the whole body of PUT /api/acct/payments.
// Salary is a json.Number so that non-integer input is reported as a
// validation error rather than a decode failure.
type PayrollUploadRequest struct {
	Employee string      `json:"employee"`
	Period   string      `json:"period"`
	Salary   json.Number `json:"salary"`
}

// TokenRequest is the body of POST /api/auth/token when credentials
// are supplied in the body instead of a Basic header.
type TokenRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// StatusResponse is the generic {"status": "..."} success body used by
// several mutation endpoints.
type StatusResponse struct {
	Status string `json:"status"`
}
