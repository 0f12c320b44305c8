// Package misc keeps build identification set by the linker.
package misc

var (
	appName = "rstc"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string { return appName }
func GetVersion() string { return version }
func GetGitHash() string { return gitHash }
