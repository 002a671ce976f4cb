// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "fmt"

// AppBuildInfo carries build-time metadata injected by linker flags and shown
// by --version and the serve startup log.
type AppBuildInfo struct {
	buildVersion string
	buildDate    string
	buildCommit  string
}

// NewAppBuildInfo constructs [AppBuildInfo]. Empty values read as "N/A".
func NewAppBuildInfo(buildVersion, buildDate, buildCommit string) AppBuildInfo {
	return AppBuildInfo{
		buildVersion: orNA(buildVersion),
		buildDate:    orNA(buildDate),
		buildCommit:  orNA(buildCommit),
	}
}

func (a AppBuildInfo) BuildVersion() string {
	return orNA(a.buildVersion)
}

func (a AppBuildInfo) BuildDate() string {
	return orNA(a.buildDate)
}

func (a AppBuildInfo) BuildCommit() string {
	return orNA(a.buildCommit)
}

func (a AppBuildInfo) String() string {
	return fmt.Sprintf("%s (built %s, commit %s)", a.BuildVersion(), a.BuildDate(), a.BuildCommit())
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
