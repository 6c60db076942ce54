package version

import (
	"runtime/debug"
	"testing"
)

func withBuildInfo(t *testing.T, info *debug.BuildInfo, ok bool) {
	t.Helper()
	prev := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, ok }
	t.Cleanup(func() { readBuildInfo = prev })
}

func TestResolveUsesModuleVersion(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Path: "customlogger", Version: "v1.4.2"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.modified", Value: "true"},
		},
	}, true)

	res := Resolve()
	if res.Version != "1.4.2" || res.Source != SourceBuildInfo {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Revision != "0123456789ab" || !res.Modified {
		t.Fatalf("unexpected vcs details %+v", res)
	}
	if res.String() != "1.4.2" {
		t.Fatalf("String() = %q", res.String())
	}
}

func TestResolveFallsBack(t *testing.T) {
	cases := map[string]struct {
		info *debug.BuildInfo
		ok   bool
	}{
		"no build info": {nil, false},
		"devel":         {&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true},
		"empty":         {&debug.BuildInfo{}, true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			withBuildInfo(t, tc.info, tc.ok)
			res := Resolve()
			if res.Version != Fallback || res.Source != SourceFallback {
				t.Fatalf("expected fallback, got %+v", res)
			}
		})
	}
}
