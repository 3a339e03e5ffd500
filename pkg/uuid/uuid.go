// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

/*
Package uuid provides time-ordered unique identifiers for the platform.

It wraps the standard UUID library to generate Version 7 values, which embed
a millisecond timestamp in the high bits.

Advantages:

  - Sortable: Naturally ordered by creation time.
  - Index-friendly: Prevents B-tree fragmentation in PostgreSQL.
  - Compact: 128-bit storage, compatible with the standard 'uuid' column type.

This is the mandatory ID type for all primary keys in the Craftly ecosystem.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
func New() string {

	// Create a new version 7 UUID (time-sortable)
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}
