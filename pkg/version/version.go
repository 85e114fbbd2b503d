package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the current version of the application.
	// This is set during build using -ldflags.
	Version = "dev"

	// GitCommit is the git commit hash of the current version.
	// This is set during build using -ldflags.
	GitCommit = "none"

	// BuildTime is the time when the binary was built.
	// This is set during build using -ldflags.
	BuildTime = "unknown"
)

// Info is the build information reported by the CLI and the API
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get returns the build information of the running binary
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (i Info) String() string {
	return fmt.Sprintf("regtest-tui %s (commit %s, built %s, %s %s)", i.Version, i.GitCommit, i.BuildTime, i.GoVersion, i.Platform)
}
