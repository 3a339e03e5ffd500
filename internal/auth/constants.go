// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package auth

import (
	"time"

	"github.com/craftlyhq/craftly/internal/platform/sec"
)

// # Authentication Constraints

const (
	// SessionTTL is the duration a login session remains valid. It equals the
	// bearer token lifetime on purpose: both are minted together at login, so a
	// token never references a session that outlived it or vice versa.
	SessionTTL = sec.TokenValidity

	// ResetTokenTTL is the duration a password reset token remains valid.
	// Short-lived (1 hour) for security.
	ResetTokenTTL = 1 * time.Hour

	// ResetTokenLength is the byte length of the random password reset token.
	ResetTokenLength = 32
)
