/*
Copyright 2024 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package version

import (
	"runtime"
	"testing"
)

func TestSplitVersion(t *testing.T) {
	tests := []struct {
		version   string
		wantMajor string
		wantMinor string
	}{
		{version: "v0.0.0-master", wantMajor: "0", wantMinor: "0+"},
		{version: "v1.4.2", wantMajor: "1", wantMinor: "4"},
		{version: "2.10.0+dirty", wantMajor: "2", wantMinor: "10+"},
		{version: "master", wantMajor: "", wantMinor: ""},
	}
	for _, tc := range tests {
		major, minor := SplitVersion(tc.version)
		if major != tc.wantMajor || minor != tc.wantMinor {
			t.Errorf("SplitVersion(%q) = (%q, %q), want (%q, %q)", tc.version, major, minor, tc.wantMajor, tc.wantMinor)
		}
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.GitVersion != gitVersion {
		t.Errorf("GitVersion = %q, want %q", info.GitVersion, gitVersion)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}
