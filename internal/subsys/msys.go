package subsys

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cmkit/cmkit/internal/envprobe"
	"github.com/cmkit/cmkit/internal/kit"
	"github.com/cmkit/cmkit/pkgs/buildsys"
)

// discoverMSYS registers one kit per installed subsystem flavor. A flavor is
// installed iff its root directory exists. The kit's environment delta is
// the set difference between a capture with MSYSTEM forced and a baseline
// capture without it, so only what the flavor injects ends up on the kit.
// The baseline run unsets MSYSTEM so an inherited selector (cmkit invoked
// from inside a flavored shell) cannot turn the baseline into a flavor
// environment.
func discoverMSYS(opts Options) []kit.Kit {
	if _, err := os.Stat(opts.MSYSRoot); err != nil {
		return nil
	}
	shell := filepath.Join(opts.MSYSRoot, "usr", "bin", "bash.exe")
	shellArgs := []string{"-lc", "env"}

	baseline, err := opts.Capture(shell, shellArgs, nil, "MSYSTEM")
	if err != nil {
		log.Warn("subsystem baseline capture failed, skipping flavors", "shell", shell, "err", err)
		return nil
	}

	var kits []kit.Kit
	for _, flavor := range msysFlavors {
		flavorRoot := filepath.Join(opts.MSYSRoot, flavor)
		if _, err := os.Stat(flavorRoot); err != nil {
			continue
		}
		selector := buildsys.EnvVar{Name: "MSYSTEM", Value: strings.ToUpper(flavor)}
		capture, err := opts.Capture(shell, shellArgs, []buildsys.EnvVar{selector})
		if err != nil {
			// Partial failure: this flavor only, the others still probe.
			log.Warn("flavor shell probe failed, skipping", "flavor", flavor, "err", err)
			continue
		}
		kits = append(kits, kit.Build(flavor, kit.BuildOptions{
			Env:  envprobe.Diff(capture, baseline),
			Find: msysFinder(opts.MSYSRoot, flavor),
			Shell: &kit.ShellDescriptor{
				Program: shell,
				Args:    []string{"-l"},
				Env:     []buildsys.EnvVar{selector},
			},
		}))
	}
	return kits
}

// msysFinder resolves tool names inside the flavor's root rather than on
// the host PATH: <root>/<flavor>/bin first, <root>/usr/bin second.
func msysFinder(root, flavor string) kit.ExecFinder {
	return func(name string) (string, error) {
		for _, dir := range []string{
			filepath.Join(root, flavor, "bin"),
			filepath.Join(root, "usr", "bin"),
		} {
			path := filepath.Join(dir, name+".exe")
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
		return "", errors.New(name + " not found under " + root)
	}
}
