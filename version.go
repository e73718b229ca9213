package l2node

import (
	"fmt"
	"io"
	"runtime"
)

// Populated at build time through -ldflags.
var (
	Version   = "v0.1.0"
	GitRev    = "undefined"
	GitBranch = "undefined"
	BuildDate = "undefined"
)

// FullVersion describes the running binary.
type FullVersion struct {
	Version   string
	GitRev    string
	GitBranch string
	BuildDate string
	GoVersion string
	OS        string
	Arch      string
}

// GetVersion returns the build information of the node.
func GetVersion() FullVersion {
	return FullVersion{
		Version:   Version,
		GitRev:    GitRev,
		GitBranch: GitBranch,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// PrintVersion writes the build information into w.
func PrintVersion(w io.Writer) {
	fmt.Fprint(w, GetVersion().String())
}

func (f FullVersion) String() string {
	return fmt.Sprintf("Version:      %s\n"+
		"Git revision: %s\n"+
		"Git branch:   %s\n"+
		"Go version:   %s\n"+
		"Built:        %s\n"+
		"OS/Arch:      %s/%s\n",
		f.Version, f.GitRev, f.GitBranch,
		f.GoVersion, f.BuildDate, f.OS, f.Arch)
}

// KeyValues returns the build information as a flat list of key/value pairs,
// ready to be handed to a structured logger.
func (f FullVersion) KeyValues() []interface{} {
	return []interface{}{
		"gitRevision", f.GitRev,
		"gitBranch", f.GitBranch,
		"goVersion", f.GoVersion,
		"built", f.BuildDate,
		"os/arch", fmt.Sprintf("%s/%s", f.OS, f.Arch),
	}
}
