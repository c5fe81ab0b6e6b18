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
	"fmt"
	"regexp"
	"runtime"
	"strings"
)

var (
	// gitVersion, buildDate and gitSHA are set with -ldflags -X at build time.
	gitVersion = "v0.0.0-master"
	buildDate  = "1970-01-01T00:00:00Z"
	gitSHA     = ""
)

// Info describes the running binary.
type Info struct {
	Major      string `json:"major"`
	Minor      string `json:"minor"`
	GitVersion string `json:"gitVersion"`
	GitSHA     string `json:"gitSHA,omitempty"`
	BuildDate  string `json:"buildDate"`
	GoVersion  string `json:"goVersion"`
	Compiler   string `json:"compiler"`
	Platform   string `json:"platform"`
}

// Get returns the build information of the running binary.
func Get() Info {
	major, minor := SplitVersion(gitVersion)
	return Info{
		Major:      major,
		Minor:      minor,
		GitVersion: gitVersion,
		GitSHA:     gitSHA,
		BuildDate:  buildDate,
		GoVersion:  runtime.Version(),
		Compiler:   runtime.Compiler,
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

var versionRegexp = regexp.MustCompile(`^v?(\d+)\.(\d+)`)

// SplitVersion returns the major and minor components of a semantic version.
// Minor carries a "+" suffix for pre-release or dirty builds.
func SplitVersion(version string) (string, string) {
	m := versionRegexp.FindStringSubmatch(version)
	if m == nil {
		return "", ""
	}
	major, minor := m[1], m[2]
	if rest := strings.TrimPrefix(version, m[0]); strings.ContainsAny(rest, "-+") {
		minor += "+"
	}
	return major, minor
}
