// Package kit defines the build-toolchain kit record, its builder, and the
// ordered registry of discovered kits.
package kit

import (
	"os/exec"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/cmkit/cmkit/pkgs/buildsys"
)

// Canonical tool names resolved for every kit.
const (
	toolCMake  = "cmake"
	toolCTest  = "ctest"
	toolClangd = "clangd"
	toolNinja  = "ninja"
)

// ShellDescriptor names an interactive shell: the program, its arguments,
// and the variables to lay over the host environment. It is a plain value
// the host's interactive-shell collaborator consumes.
type ShellDescriptor struct {
	Program string            `json:"program"`
	Args    []string          `json:"args,omitempty"`
	Env     []buildsys.EnvVar `json:"env,omitempty"`
}

// Kit is a fully resolved toolchain context. It is determined entirely at
// construction time and never mutated after registration; two kits may share
// tool paths but never a name.
type Kit struct {
	Name string `json:"name"`

	// Env is the delta of this kit's shell against the host baseline,
	// in capture order. Empty for plain-host kits.
	Env []buildsys.EnvVar `json:"env,omitempty"`

	// Tool paths; empty means the tool was not found, which is legal.
	CMake  string `json:"cmake,omitempty"`
	CTest  string `json:"ctest,omitempty"`
	Clangd string `json:"clangd,omitempty"`

	// CMakeVersion is the semver-normalized version reported by the
	// configure tool ("v3.28.1"), or empty if probing failed.
	CMakeVersion string `json:"cmake_version,omitempty"`

	// Generator is the preferred build-file generator, chosen once when
	// the kit is built and never re-probed.
	Generator string `json:"generator,omitempty"`

	// Shell launches an interactive shell inside the kit's subsystem.
	// Nil for kits with no nested shell.
	Shell *ShellDescriptor `json:"shell,omitempty"`
}

// ExecFinder resolves a tool name to an absolute path inside the kit's
// world. The default is host PATH lookup; subsystem kits substitute a
// resolver that looks inside the subsystem root.
type ExecFinder func(name string) (string, error)

// BuildOptions parameterize Build. Zero value means: no environment delta,
// host PATH lookup, no shell, no version probe.
type BuildOptions struct {
	Env   []buildsys.EnvVar
	Shell *ShellDescriptor
	Find  ExecFinder

	// Version reports a tool's version output given its resolved path.
	// Defaults to running "<path> --version".
	Version func(path string) (string, error)
}

// Build assembles an immutable kit. Each tool is resolved independently and
// absence is not an error: a kit with no configure tool simply cannot
// configure. The generator is Ninja when the finder resolves ninja, else the
// platform's classic generator.
func Build(name string, opts BuildOptions) Kit {
	find := opts.Find
	if find == nil {
		find = exec.LookPath
	}
	k := Kit{Name: name, Env: opts.Env, Shell: opts.Shell}
	if path, err := find(toolCMake); err == nil {
		k.CMake = path
		k.CMakeVersion = probeVersion(path, opts.Version)
	}
	if path, err := find(toolCTest); err == nil {
		k.CTest = path
	}
	if path, err := find(toolClangd); err == nil {
		k.Clangd = path
	}
	if _, err := find(toolNinja); err == nil {
		k.Generator = "Ninja"
	} else {
		k.Generator = classicGenerator()
	}
	return k
}

func classicGenerator() string {
	if runtime.GOOS == "windows" {
		return "MinGW Makefiles"
	}
	return "Unix Makefiles"
}

// probeVersion normalizes the first version-looking token of the tool's
// --version output to canonical semver. Failures leave the version empty.
func probeVersion(path string, version func(string) (string, error)) string {
	if version == nil {
		version = func(p string) (string, error) {
			out, err := exec.Command(p, "--version").Output()
			return string(out), err
		}
	}
	out, err := version(path)
	if err != nil {
		return ""
	}
	return ParseVersion(out)
}

// ParseVersion extracts the version from "cmake version 3.28.1"-style
// output and returns it in canonical "vMAJOR.MINOR.PATCH" form, or "".
func ParseVersion(out string) string {
	line, _, _ := strings.Cut(out, "\n")
	for _, field := range strings.Fields(line) {
		v := "v" + strings.TrimPrefix(field, "v")
		if semver.IsValid(v) {
			return semver.Canonical(v)
		}
	}
	return ""
}

// GeneratorOr returns the kit's generator, or def when unset. Absence and
// equal-to-default are indistinguishable by design.
func (k Kit) GeneratorOr(def string) string {
	if k.Generator == "" {
		return def
	}
	return k.Generator
}

// ShellOr returns the kit's shell descriptor, or def when the kit has none.
func (k Kit) ShellOr(def ShellDescriptor) ShellDescriptor {
	if k.Shell == nil {
		return def
	}
	return *k.Shell
}

// String renders the kit's full configuration for diagnostics.
func (k Kit) String() string {
	var b strings.Builder
	b.WriteString("kit " + k.Name)
	b.WriteString("\n  cmake:     " + orNone(k.CMake))
	if k.CMakeVersion != "" {
		b.WriteString(" (" + k.CMakeVersion + ")")
	}
	b.WriteString("\n  ctest:     " + orNone(k.CTest))
	b.WriteString("\n  clangd:    " + orNone(k.Clangd))
	b.WriteString("\n  generator: " + orNone(k.Generator))
	if k.Shell != nil {
		b.WriteString("\n  shell:     " + strings.Join(append([]string{k.Shell.Program}, k.Shell.Args...), " "))
	}
	if len(k.Env) > 0 {
		b.WriteString("\n  env:")
		for _, v := range k.Env {
			b.WriteString("\n    " + v.Name + "=" + v.Value)
		}
	}
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
