// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDescriptionText is the sentinel error wrapped by InvalidDescriptionTextError.
var ErrInvalidDescriptionText = errors.New("invalid description text")

type (
	// DescriptionText is a human-readable description of a module or target.
	// The empty string means "no description"; anything else must contain
	// at least one non-space character.
	DescriptionText string

	// InvalidDescriptionTextError is returned for whitespace-only descriptions.
	InvalidDescriptionTextError struct {
		Value DescriptionText
	}
)

func (d DescriptionText) String() string { return string(d) }

// Summary returns the first line of the description, trimmed.
func (d DescriptionText) Summary() string {
	line, _, _ := strings.Cut(strings.TrimSpace(string(d)), "\n")
	return strings.TrimSpace(line)
}

// IsValid returns whether the DescriptionText is valid.
func (d DescriptionText) IsValid() (bool, []error) {
	if d != "" && strings.TrimSpace(string(d)) == "" {
		return false, []error{&InvalidDescriptionTextError{Value: d}}
	}
	return true, nil
}

func (e *InvalidDescriptionTextError) Error() string {
	return fmt.Sprintf("invalid description text: non-empty value must not be whitespace-only (got %q)", e.Value)
}

// Unwrap returns ErrInvalidDescriptionText for errors.Is() compatibility.
func (e *InvalidDescriptionTextError) Unwrap() error { return ErrInvalidDescriptionText }
