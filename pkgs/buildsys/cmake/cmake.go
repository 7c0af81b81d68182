// Package cmake plans the cmake/ctest configure/build/install/test workflow.
// Planning is pure: no process is spawned and no directory is created here.
package cmake

import (
	"strconv"

	"github.com/cmkit/cmkit/pkgs/buildsys"
)

// CMake plans CMake-based builds with chainable configuration.
type CMake struct {
	cmakePath string
	ctestPath string
	sourceDir string
	buildDir  string
	generator string
	env       []buildsys.EnvVar

	jobs       int
	cleanFirst bool
	extraArgs  []string
}

var _ buildsys.Planner = (*CMake)(nil)

// New returns a planner for the given tool paths. Either path may be empty;
// the corresponding lifecycle step then fails with ToolMissingError.
func New(cmakePath, ctestPath string) *CMake {
	return &CMake{cmakePath: cmakePath, ctestPath: ctestPath}
}

// Source sets the project source directory.
func (c *CMake) Source(dir string) *CMake {
	c.sourceDir = dir
	return c
}

// BuildDir sets the out-of-source build directory.
func (c *CMake) BuildDir(dir string) *CMake {
	c.buildDir = dir
	return c
}

// Generator sets the CMake generator (e.g. "Ninja", "Unix Makefiles").
func (c *CMake) Generator(name string) *CMake {
	c.generator = name
	return c
}

// Env sets the environment overlay carried by every planned invocation.
func (c *CMake) Env(vars []buildsys.EnvVar) *CMake {
	c.env = vars
	return c
}

// Jobs sets the parallel job count. Values below 1 mean "unset": no -j flag
// is emitted at all.
func (c *CMake) Jobs(n int) *CMake {
	c.jobs = n
	return c
}

// CleanFirst requests --clean-first on the next Build plan.
func (c *CMake) CleanFirst(clean bool) *CMake {
	c.cleanFirst = clean
	return c
}

// ExtraArgs appends caller-supplied arguments to the Configure plan.
func (c *CMake) ExtraArgs(args ...string) *CMake {
	c.extraArgs = append(c.extraArgs, args...)
	return c
}

func (c *CMake) Configure() (buildsys.Invocation, error) {
	if c.cmakePath == "" {
		return buildsys.Invocation{}, &buildsys.ToolMissingError{Tool: "cmake"}
	}
	argv := []string{c.cmakePath}
	if c.generator != "" {
		argv = append(argv, "-G", c.generator)
	}
	argv = append(argv, "-S", c.sourceDir, "-B", c.buildDir)
	argv = append(argv, c.extraArgs...)
	return buildsys.Invocation{Argv: argv, Dir: c.sourceDir, Env: c.env}, nil
}

func (c *CMake) Build() (buildsys.Invocation, error) {
	if c.cmakePath == "" {
		return buildsys.Invocation{}, &buildsys.ToolMissingError{Tool: "cmake"}
	}
	argv := []string{c.cmakePath, "--build", c.buildDir}
	if c.jobs >= 1 {
		argv = append(argv, "-j", strconv.Itoa(c.jobs))
	}
	if c.cleanFirst {
		argv = append(argv, "--clean-first")
	}
	return buildsys.Invocation{Argv: argv, Dir: c.sourceDir, Env: c.env}, nil
}

func (c *CMake) Install() (buildsys.Invocation, error) {
	if c.cmakePath == "" {
		return buildsys.Invocation{}, &buildsys.ToolMissingError{Tool: "cmake"}
	}
	argv := []string{c.cmakePath, "--install", c.buildDir}
	if c.jobs >= 1 {
		argv = append(argv, "-j", strconv.Itoa(c.jobs))
	}
	return buildsys.Invocation{Argv: argv, Dir: c.sourceDir, Env: c.env}, nil
}

// Test plans a ctest run from testDir, which must be the directory holding
// the generated CTestTestfile.cmake.
func (c *CMake) Test(testDir string) (buildsys.Invocation, error) {
	if c.ctestPath == "" {
		return buildsys.Invocation{}, &buildsys.ToolMissingError{Tool: "ctest"}
	}
	argv := []string{c.ctestPath, "--output-on-failure"}
	return buildsys.Invocation{Argv: argv, Dir: testDir, Env: c.env}, nil
}
