// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestModuleDescriptor_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mod     ModuleDescriptor
		wantErr error
	}{
		{
			name: "game module",
			mod: ModuleDescriptor{
				Name:        "BastionLastStand",
				Kind:        KindRuntime,
				PCHUsage:    PCHExplicitOrShared,
				PublicDeps:  []string{"Core", "CoreUObject", "Engine", "InputCore"},
				PrivateDeps: []string{"Slate"},
			},
		},
		{
			name: "editor plugin module",
			mod: ModuleDescriptor{
				Name:         "UnrealMCP",
				Kind:         KindPlugin,
				Plugin:       "UnrealMCP",
				Availability: AvailabilityEditorOnly,
				Version:      "1.2.0",
			},
		},
		{
			name:    "bad name",
			mod:     ModuleDescriptor{Name: "9Lives", Kind: KindLibrary},
			wantErr: ErrInvalidName,
		},
		{
			name:    "missing kind",
			mod:     ModuleDescriptor{Name: "Core"},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "unknown availability",
			mod:     ModuleDescriptor{Name: "Core", Kind: KindRuntime, Availability: "server_only"},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "loose version",
			mod:     ModuleDescriptor{Name: "Core", Kind: KindRuntime, Version: "v1.2"},
			wantErr: ErrInvalidVersion,
		},
		{
			name:    "bad dependency name",
			mod:     ModuleDescriptor{Name: "Core", Kind: KindRuntime, PrivateDeps: []string{"has space"}},
			wantErr: ErrInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ok, errs := tt.mod.IsValid()
			if tt.wantErr == nil {
				if !ok {
					t.Fatalf("IsValid() errors = %v", errs)
				}
				return
			}
			if ok {
				t.Fatal("IsValid() = true, want false")
			}
			if !errors.Is(errors.Join(errs...), tt.wantErr) {
				t.Errorf("IsValid() errors = %v, want %v", errs, tt.wantErr)
			}
		})
	}
}

func TestModuleDescriptor_Declared(t *testing.T) {
	t.Parallel()

	mod := ModuleDescriptor{
		Name:        "Game",
		PublicDeps:  []string{"Engine", "Core"},
		PrivateDeps: []string{"Slate"},
	}
	want := []DependencyEdge{
		{Consumer: "Game", Dependency: "Engine", Visibility: VisibilityPublic},
		{Consumer: "Game", Dependency: "Core", Visibility: VisibilityPublic},
		{Consumer: "Game", Dependency: "Slate", Visibility: VisibilityPrivate},
	}
	if diff := cmp.Diff(want, mod.Declared()); diff != "" {
		t.Errorf("Declared() mismatch (-want +got):\n%s", diff)
	}
}

func TestModuleDescriptor_CloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := ModuleDescriptor{Name: "Game", PublicDeps: []string{"Engine"}}
	clone := orig.Clone()
	clone.PublicDeps[0] = "Changed"
	if orig.PublicDeps[0] != "Engine" {
		t.Error("Clone() shares the PublicDeps backing array")
	}
}

func TestModuleDescriptor_SemVer(t *testing.T) {
	t.Parallel()

	v, err := ModuleDescriptor{Name: "Core", Version: "5.4.1"}.SemVer()
	if err != nil {
		t.Fatalf("SemVer() error = %v", err)
	}
	if v.Major() != 5 || v.Minor() != 4 || v.Patch() != 1 {
		t.Errorf("SemVer() = %s, want 5.4.1", v)
	}

	v, err = ModuleDescriptor{Name: "Core"}.SemVer()
	if v != nil || err != nil {
		t.Errorf("SemVer() without version = %v, %v; want nil, nil", v, err)
	}
}
