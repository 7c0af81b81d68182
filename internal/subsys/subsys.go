// Package subsys discovers build kits on the host: MSYS2-style POSIX
// subsystem flavors on Windows, WSL distributions behind the bridge tool,
// and bare compilers on Unix-family hosts.
//
// Discovery is sequential and failure-tolerant: a flavor or distribution
// that cannot be probed is skipped with a warning and never aborts the
// others. An empty result is legal; callers warn the user instead of
// failing.
package subsys

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/cmkit/cmkit/internal/envprobe"
	"github.com/cmkit/cmkit/internal/kit"
	"github.com/cmkit/cmkit/pkgs/buildsys"
)

// msysFlavors are the four sibling subsystem installations, keyed by the
// MSYSTEM selector their shells honor.
var msysFlavors = []string{"ucrt64", "clang64", "mingw64", "mingw32"}

// hostCompilers are the well-known compiler names probed by the plain-host
// strategy.
var hostCompilers = []string{"gcc", "clang"}

// Options parameterize discovery. The zero value probes the real host.
type Options struct {
	// MSYSRoot is the subsystem install root. Default C:\msys64.
	MSYSRoot string

	// Bridge is the distribution bridge executable. Default wsl.exe.
	Bridge string

	// GOOS overrides runtime.GOOS, for tests.
	GOOS string

	// Capture overrides envprobe.Capture, for tests.
	Capture func(prog string, args []string, extra []buildsys.EnvVar, unset ...string) ([]string, error)

	// ListDistros returns the bridge's raw list output (wide-encoded).
	ListDistros func(bridge string) ([]byte, error)

	// BridgeRun runs argv inside a distribution and returns its output.
	BridgeRun func(bridge, distro string, argv ...string) (string, error)

	// LookPath overrides exec.LookPath, for tests.
	LookPath func(name string) (string, error)
}

func (o Options) withDefaults() Options {
	if o.MSYSRoot == "" {
		o.MSYSRoot = defaultMSYSRoot()
	}
	if o.Bridge == "" {
		o.Bridge = "wsl.exe"
	}
	if o.GOOS == "" {
		o.GOOS = runtime.GOOS
	}
	if o.Capture == nil {
		o.Capture = envprobe.Capture
	}
	if o.ListDistros == nil {
		o.ListDistros = func(bridge string) ([]byte, error) {
			return exec.Command(bridge, "-l").Output()
		}
	}
	if o.BridgeRun == nil {
		o.BridgeRun = func(bridge, distro string, argv ...string) (string, error) {
			args := append([]string{"-d", distro}, argv...)
			out, err := exec.Command(bridge, args...).Output()
			return string(out), err
		}
	}
	if o.LookPath == nil {
		o.LookPath = exec.LookPath
	}
	return o
}

func defaultMSYSRoot() string {
	if root := os.Getenv("MSYS2_ROOT"); root != "" {
		return root
	}
	return `C:\msys64`
}

// Discover probes the host class that matches and returns the kits found,
// in discovery order. Windows hosts get subsystem flavors plus bridge
// distributions; Unix-family hosts get plain compiler kits.
func Discover(opts Options) []kit.Kit {
	opts = opts.withDefaults()
	if opts.GOOS == "windows" {
		kits := discoverMSYS(opts)
		return append(kits, discoverBridge(opts)...)
	}
	return discoverHost(opts)
}
