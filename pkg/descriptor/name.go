// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"errors"
	"fmt"
	"regexp"
)

// MaxNameLength bounds module and target names.
const MaxNameLength = 128

// ErrInvalidName is the sentinel wrapped by InvalidNameError.
var ErrInvalidName = errors.New("invalid name")

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// InvalidNameError reports a module, target or dependency name that does not
// match the name grammar.
type InvalidNameError struct {
	Field string
	Value string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid %s %q: must start with a letter or underscore, contain only letters, digits, '_', '.', '-' and be at most %d characters", e.Field, e.Value, MaxNameLength)
}

// Unwrap returns ErrInvalidName for errors.Is() compatibility.
func (e *InvalidNameError) Unwrap() error { return ErrInvalidName }

// ValidateName checks name against the shared module/target name grammar.
func ValidateName(field, name string) error {
	if len(name) == 0 || len(name) > MaxNameLength || !namePattern.MatchString(name) {
		return &InvalidNameError{Field: field, Value: name}
	}
	return nil
}
