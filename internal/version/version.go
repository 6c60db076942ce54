// Package version reports the running build's version.
package version

import (
	"runtime/debug"
	"strings"
)

// Fallback is reported when the binary carries no usable module version.
const Fallback = "0.3.0"

// Source records where a version string came from.
type Source string

const (
	SourceBuildInfo Source = "buildinfo"
	SourceFallback  Source = "fallback"
)

// Result is a resolved version.
type Result struct {
	Version  string
	Source   Source
	Revision string
	Modified bool
}

func (r Result) String() string { return r.Version }

var readBuildInfo = debug.ReadBuildInfo

// Resolve returns the main module version from the embedded build info, or
// Fallback when that is missing or a development build. It never fails.
func Resolve() Result {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return Result{Version: Fallback, Source: SourceFallback}
	}
	res := Result{Version: Fallback, Source: SourceFallback}
	if v := strings.TrimSpace(info.Main.Version); v != "" && v != "(devel)" {
		res.Version = strings.TrimPrefix(v, "v")
		res.Source = SourceBuildInfo
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			res.Revision = setting.Value
			if len(res.Revision) > 12 {
				res.Revision = res.Revision[:12]
			}
		case "vcs.modified":
			res.Modified = setting.Value == "true"
		}
	}
	return res
}
