// SPDX-License-Identifier: MIT
package build

import "testing"

func TestInitializeDefaults(t *testing.T) {
	Initialize()

	flags := GetBuildFlags()
	if flags.Name == "" {
		t.Error("expected non-empty build name after Initialize")
	}
	if flags.Time == "" || flags.Commit == "" || flags.Version == "" {
		t.Errorf("expected development defaults, got %+v", flags)
	}
}

func TestInitializeOverrides(t *testing.T) {
	buildName = "specmon-test"
	buildVersion = "1.2.3"
	defer func() {
		buildName = ""
		buildVersion = ""
	}()

	Initialize()

	flags := GetBuildFlags()
	if flags.Name != "specmon-test" {
		t.Errorf("expected name specmon-test, got %s", flags.Name)
	}
	if flags.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", flags.Version)
	}
}
