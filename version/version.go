package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is overridable at link time (-ldflags "-X ...version.Version=").
var Version = "dev"

type BuildInfo struct {
	Version   string
	Commit    string
	Date      string
	GoVersion string
}

func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				info.Commit = setting.Value
			case "vcs.time":
				info.Date = setting.Value
			}
		}
	}
	return info
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("Version: %s\nCommit: %s\nDate: %s\nGo: %s",
		b.Version, b.Commit, b.Date, b.GoVersion)
}
