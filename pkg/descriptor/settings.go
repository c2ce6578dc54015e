// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	OptimizationDebug       OptimizationLevel = "debug"
	OptimizationDevelopment OptimizationLevel = "development"
	OptimizationShipping    OptimizationLevel = "shipping"

	IncludeOrderLatest IncludeOrder = "latest"
	IncludeOrderLegacy IncludeOrder = "legacy"

	SettingsVersionLatest SettingsVersion = "latest"
	SettingsVersionV1     SettingsVersion = "v1"
	SettingsVersionV2     SettingsVersion = "v2"

	// Recognized setting keys, as spelled in descriptor files.
	SettingOptimizationLevel    = "optimization_level"
	SettingIncludeOrder         = "include_order"
	SettingBuildSettingsVersion = "build_settings_version"
)

// ErrUnknownSetting is the sentinel wrapped by UnknownSettingError.
var ErrUnknownSetting = errors.New("unknown build setting")

type (
	// OptimizationLevel selects the build configuration.
	OptimizationLevel string

	// IncludeOrder selects the header include order rules.
	IncludeOrder string

	// SettingsVersion pins the default build settings generation.
	SettingsVersion string

	// BuildSettings is the explicit configuration record attached to a
	// target. Empty fields are filled from the global defaults by Merge.
	BuildSettings struct {
		OptimizationLevel    OptimizationLevel `json:"optimization_level,omitempty" yaml:"optimization_level,omitempty" toml:"optimization_level,omitempty" mapstructure:"optimization_level"`
		IncludeOrder         IncludeOrder      `json:"include_order,omitempty" yaml:"include_order,omitempty" toml:"include_order,omitempty" mapstructure:"include_order"`
		BuildSettingsVersion SettingsVersion   `json:"build_settings_version,omitempty" yaml:"build_settings_version,omitempty" toml:"build_settings_version,omitempty" mapstructure:"build_settings_version"`
	}

	// UnknownSettingError is returned when a settings map holds a key
	// outside SettingKeys.
	UnknownSettingError struct {
		Key string
	}
)

func (e *UnknownSettingError) Error() string {
	return fmt.Sprintf("unknown build setting %q (recognized: %s)", e.Key, strings.Join(SettingKeys(), ", "))
}

// Unwrap returns ErrUnknownSetting for errors.Is() compatibility.
func (e *UnknownSettingError) Unwrap() error { return ErrUnknownSetting }

// SettingKeys returns the recognized setting keys in sorted order.
func SettingKeys() []string {
	return []string{SettingBuildSettingsVersion, SettingIncludeOrder, SettingOptimizationLevel}
}

// DefaultBuildSettings returns the built-in defaults used when neither the
// target nor the configuration set a value.
func DefaultBuildSettings() BuildSettings {
	return BuildSettings{
		OptimizationLevel:    OptimizationDevelopment,
		IncludeOrder:         IncludeOrderLatest,
		BuildSettingsVersion: SettingsVersionLatest,
	}
}

// SettingsFromMap converts a loosely typed settings map, as produced by the
// HCL decoder, into BuildSettings. Unknown keys are rejected.
func SettingsFromMap(m map[string]string) (BuildSettings, error) {
	var s BuildSettings
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		switch k {
		case SettingOptimizationLevel:
			s.OptimizationLevel = OptimizationLevel(m[k])
		case SettingIncludeOrder:
			s.IncludeOrder = IncludeOrder(m[k])
		case SettingBuildSettingsVersion:
			s.BuildSettingsVersion = SettingsVersion(m[k])
		default:
			return BuildSettings{}, &UnknownSettingError{Key: k}
		}
	}
	return s, nil
}

// Merge returns s with every empty field taken from defaults.
func (s BuildSettings) Merge(defaults BuildSettings) BuildSettings {
	if s.OptimizationLevel == "" {
		s.OptimizationLevel = defaults.OptimizationLevel
	}
	if s.IncludeOrder == "" {
		s.IncludeOrder = defaults.IncludeOrder
	}
	if s.BuildSettingsVersion == "" {
		s.BuildSettingsVersion = defaults.BuildSettingsVersion
	}
	return s
}

// IsZero reports whether no setting is set.
func (s BuildSettings) IsZero() bool { return s == BuildSettings{} }

// IsValid validates every non-empty field.
func (s BuildSettings) IsValid() (bool, []error) {
	var errs []error
	if s.OptimizationLevel != "" {
		if err := validateEnum(SettingOptimizationLevel, s.OptimizationLevel,
			[]OptimizationLevel{OptimizationDebug, OptimizationDevelopment, OptimizationShipping}); err != nil {
			errs = append(errs, err)
		}
	}
	if s.IncludeOrder != "" {
		if err := validateEnum(SettingIncludeOrder, s.IncludeOrder,
			[]IncludeOrder{IncludeOrderLatest, IncludeOrderLegacy}); err != nil {
			errs = append(errs, err)
		}
	}
	if s.BuildSettingsVersion != "" {
		if err := validateEnum(SettingBuildSettingsVersion, s.BuildSettingsVersion,
			[]SettingsVersion{SettingsVersionLatest, SettingsVersionV1, SettingsVersionV2}); err != nil {
			errs = append(errs, err)
		}
	}
	return len(errs) == 0, errs
}

// String renders the settings as space separated key=value pairs in key order.
func (s BuildSettings) String() string {
	return fmt.Sprintf("%s=%s %s=%s %s=%s",
		SettingBuildSettingsVersion, s.BuildSettingsVersion,
		SettingIncludeOrder, s.IncludeOrder,
		SettingOptimizationLevel, s.OptimizationLevel)
}
