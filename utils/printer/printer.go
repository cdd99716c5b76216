package printer

import (
	"fmt"
	"runtime"

	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// Version information.
var (
	CMBuildTS   = "None"
	CMGitHash   = "None"
	CMGitBranch = "None"
)

// PrintCMInfo prints the cache-monitoring version information.
func PrintCMInfo() {
	log.Info("Welcome to cache-monitoring.",
		zap.String("Git Commit Hash", CMGitHash),
		zap.String("Git Branch", CMGitBranch),
		zap.String("UTC Build Time", CMBuildTS),
		zap.String("GoVersion", runtime.Version()))
}

func GetCMInfo() string {
	return fmt.Sprintf("Git Commit Hash: %s\n"+
		"Git Branch: %s\n"+
		"UTC Build Time: %s\n"+
		"GoVersion: %s",
		CMGitHash,
		CMGitBranch,
		CMBuildTS,
		runtime.Version())
}
