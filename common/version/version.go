package version

import (
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

var GitCommit string
var Version string

func SetDefaults() {
	build, infoOk := debug.ReadBuildInfo()

	if GitCommit == "" {
		GitCommit = ".dev"
		if infoOk {
			for _, setting := range build.Settings {
				if setting.Key == "vcs.revision" {
					GitCommit = setting.Value
					break
				}
			}
		}
	}

	if Version == "" {
		Version = "unknown"
		if infoOk && build.Main.Version != "" && build.Main.Version != "(devel)" {
			Version = build.Main.Version
		}
	}
}

// UserAgent is sent on every outbound request.
func UserAgent() string {
	SetDefaults()
	return "explormate-chain/" + Version
}

func String() string {
	SetDefaults()
	return fmt.Sprintf("Version: %s\nCommit: %s", Version, GitCommit)
}

func Print(usingLogger bool) {
	SetDefaults()

	if usingLogger {
		logrus.Info("Version: " + Version)
		logrus.Info("Commit: " + GitCommit)
	} else {
		fmt.Println(String())
	}
}
