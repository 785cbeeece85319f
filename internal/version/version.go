// Package version reports the build metadata stamped into the gridglot
// binary. Release builds set the package variables through -ldflags; plain
// `go build` and `go install` binaries fall back to the module and VCS
// information the toolchain records on its own.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Stamped at release time, e.g.
//
//	go build -ldflags "-X github.com/gridglot/gridglot/internal/version.Version=v1.0.0"
var (
	Version   = ""
	Commit    = ""
	Dirty     = "false"
	BuildDate = ""
)

// Info is the version report, serialized as-is by
// `gridglot version --format json|yaml`.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get assembles the report. Stamped variables win; gaps are filled from
// the toolchain's build info, and a build with neither reports "dev".
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Dirty:     Dirty == "true",
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(&info, bi)
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	return info
}

// fillFromBuildInfo copies module version and VCS details into the blank
// fields of info. "(devel)" is the toolchain's placeholder for an untagged
// build and is not worth reporting.
func fillFromBuildInfo(info *Info, bi *debug.BuildInfo) {
	if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.modified":
			if s.Value == "true" {
				info.Dirty = true
			}
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}
		}
	}
}

// Short is the one-line form shown by --version.
func (i Info) Short() string {
	if i.Dirty {
		return i.Version + "-dirty"
	}
	return i.Version
}

// String returns the short version of the current build.
func String() string {
	return Get().Short()
}

// Full returns the multi-line report for the bare `gridglot version`.
func Full() string {
	return verbose(Get())
}

func verbose(i Info) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "gridglot %s\n", i.Short())
	if i.Commit != "" {
		fmt.Fprintf(&sb, "  Commit:     %s\n", i.Commit)
	}
	if i.BuildDate != "" {
		fmt.Fprintf(&sb, "  Built:      %s\n", i.BuildDate)
	}
	fmt.Fprintf(&sb, "  Go version: %s\n", i.GoVersion)
	fmt.Fprintf(&sb, "  OS/Arch:    %s", i.Platform)
	return sb.String()
}
