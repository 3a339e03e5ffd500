// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

// Package handle normalizes user-chosen handles into canonical ASCII form.
//
// # Usage
//
// Handles are the public identifiers shown on profiles and community posts
// (e.g., "/profile/ana-builds"). This package handles Unicode normalization,
// accent removal, and character sanitization so that two visually similar
// inputs map to the same stored handle.
package handle

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the upper bound for a stored handle.
const MaxLength = 30

var (
	// validHandle matches the canonical handle alphabet.
	validHandle = regexp.MustCompile(`^[a-z0-9_-]+$`)
	// multiHyphen collapses runs of consecutive hyphens into one.
	multiHyphen = regexp.MustCompile(`-{2,}`)
)

// Normalize converts an arbitrary Unicode string into a canonical handle.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Converts to lowercase.
// 4. Replaces disallowed characters with hyphens.
// 5. Collapses repeated hyphens, trims edges, and truncates to [MaxLength].
func Normalize(s string) string {
	// 1. Normalize and strip accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	// 2. Lowercase
	result = strings.ToLower(result)

	// 3. Map disallowed runes to hyphens, keeping underscores
	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			return r
		}
		return '-'
	}, result)

	// 4. Clean up hyphenation and bound the length
	result = multiHyphen.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > MaxLength {
		result = strings.Trim(result[:MaxLength], "-")
	}

	return result
}

// IsValid reports whether s is already a canonical handle.
func IsValid(s string) bool {
	return s != "" && len(s) <= MaxLength && validHandle.MatchString(s)
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
