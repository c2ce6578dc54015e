// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestFilesystemPath_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    FilesystemPath
		wantErr bool
	}{
		{"descriptors", false},
		{"/etc/modgraph/Game.target.toml", false},
		{"", true},
		{" \t", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.path), func(t *testing.T) {
			t.Parallel()

			ok, errs := tt.path.IsValid()
			if ok == tt.wantErr {
				t.Fatalf("IsValid() = %v, wantErr %v", ok, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(errs[0], ErrInvalidFilesystemPath) {
				t.Errorf("error does not wrap ErrInvalidFilesystemPath: %v", errs[0])
			}
		})
	}
}

func TestFilesystemPath_Ext(t *testing.T) {
	t.Parallel()

	if got := FilesystemPath("mods/Engine.YAML").Ext(); got != ".yaml" {
		t.Errorf("Ext() = %q, want .yaml", got)
	}
}
