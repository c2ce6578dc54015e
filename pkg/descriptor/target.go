// SPDX-License-Identifier: MPL-2.0

package descriptor

import "slices"

// TargetDescriptor names a buildable product: its type, the root modules
// whose closure forms it, and its build settings.
type TargetDescriptor struct {
	Name     string        `json:"name" yaml:"name" toml:"name"`
	Type     TargetType    `json:"type" yaml:"type" toml:"type"`
	Roots    []string      `json:"roots" yaml:"roots" toml:"roots"`
	Settings BuildSettings `json:"settings,omitzero" yaml:"settings,omitempty" toml:"settings,omitempty"`

	// Source is the file the descriptor was loaded from, if any.
	Source string `json:"-" yaml:"-" toml:"-"`
}

// Identity returns the target name.
func (t TargetDescriptor) Identity() string { return t.Name }

// Origin returns the file the target was loaded from.
func (t TargetDescriptor) Origin() string { return t.Source }

// IsValid checks the target name, type, roots and settings.
func (t TargetDescriptor) IsValid() (bool, []error) {
	var errs []error
	if err := ValidateName("target name", t.Name); err != nil {
		errs = append(errs, err)
	}
	if err := t.Type.Validate(); err != nil {
		errs = append(errs, err)
	}
	for _, root := range t.Roots {
		if err := ValidateName("root module", root); err != nil {
			errs = append(errs, err)
		}
	}
	if ok, settingErrs := t.Settings.IsValid(); !ok {
		errs = append(errs, settingErrs...)
	}
	return len(errs) == 0, errs
}

// Clone returns a deep copy of t.
func (t TargetDescriptor) Clone() TargetDescriptor {
	t.Roots = slices.Clone(t.Roots)
	return t
}
