// SPDX-License-Identifier: MIT
//
// Package build exposes metadata embedded at link time:
//
//	go build -ldflags "-X dspview/pkg/build.buildVersion=0.1.0 \
//	    -X dspview/pkg/build.buildCommit=$(git rev-parse --short HEAD) \
//	    -X dspview/pkg/build.buildTime=$(date -u +%FT%TZ)"
//
// Development builds run with placeholder values.
package build

import (
	"errors"
	"fmt"
)

// Info describes the running binary.
type Info struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// String formats the info for --version output.
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", i.Name, i.Version, i.Commit, i.Time)
}

// ErrMissingFlag reports a link-time variable that was not set.
var ErrMissingFlag = errors.New("build flag not set")

// Package-level variables populated by -ldflags during compilation.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildInfo    = defaultInfo()
)

func defaultInfo() Info {
	return Info{
		Name:        "dspview",
		Description: "Spectral round trip and Linkwitz-Riley filter demonstrator",
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "dev",
	}
}

// Initialize copies the link-time variables into the build info. Unset
// variables keep their placeholder and are reported together as
// ErrMissingFlag; the info is usable either way.
func Initialize() error {
	info := defaultInfo()
	var errs []error

	fields := []struct {
		name  string
		value string
		dst   *string
	}{
		{"buildName", buildName, &info.Name},
		{"buildTime", buildTime, &info.Time},
		{"buildCommit", buildCommit, &info.Commit},
		{"buildVersion", buildVersion, &info.Version},
	}
	for _, f := range fields {
		if f.value == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingFlag, f.name))
			continue
		}
		*f.dst = f.value
	}

	buildInfo = info
	return errors.Join(errs...)
}

// Get returns the current build information.
func Get() Info {
	return buildInfo
}
