// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package auth

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrMalformedCredentials indicates an Authorization header that could
// not be decoded as HTTP Basic credentials.
var ErrMalformedCredentials = errors.New("malformed basic credentials")

// ParseBasic decodes an "Authorization: Basic ..." header value into
// the submitted email and password. The password may legally contain
// colons; only the first colon splits.
func ParseBasic(header string) (email, password string, err error) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", ErrMalformedCredentials
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return "", "", ErrMalformedCredentials
	}

	email, password, ok := strings.Cut(string(raw), ":")
	if !ok {
		return "", "", ErrMalformedCredentials
	}
	return email, password, nil
}
