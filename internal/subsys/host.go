package subsys

import "github.com/cmkit/cmkit/internal/kit"

// discoverHost registers a kit per well-known compiler present on the host
// PATH. There is no nested subsystem here, so no shell launching and no
// environment delta: the host environment is the kit environment.
func discoverHost(opts Options) []kit.Kit {
	var kits []kit.Kit
	for _, cc := range hostCompilers {
		if _, err := opts.LookPath(cc); err != nil {
			continue
		}
		kits = append(kits, kit.Build("unix-"+cc, kit.BuildOptions{
			Find: opts.LookPath,
		}))
	}
	return kits
}
