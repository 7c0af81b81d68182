// Package state tracks a project's build-directory lifecycle. State is
// derived, never stored: the directory's existence means "configured", and
// CMake's own cache inside it is treated as opaque.
package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ProjectFile is the top-level build-description file a project must have.
const ProjectFile = "CMakeLists.txt"

// testFile is the test database CTest generates per directory.
const testFile = "CTestTestfile.cmake"

// depsDir marks vendored/fetched-dependency subtrees (FetchContent et al);
// their test databases belong to nested projects, not ours.
const depsDir = "_deps"

var (
	// ErrNotConfigured reports a build/install attempt against a project
	// whose build directory does not exist yet.
	ErrNotConfigured = errors.New("project is not configured")

	// ErrMissingProjectFile reports a project root without CMakeLists.txt.
	ErrMissingProjectFile = errors.New("no " + ProjectFile + " in project root")

	// ErrNoTestDir reports a configured build directory with no generated
	// test database.
	ErrNoTestDir = errors.New("no " + testFile + " found; has the project been built with testing enabled?")
)

// Tracker observes one project/build-directory pair.
type Tracker struct {
	Root     string
	BuildDir string
}

// New returns a tracker for root. The build directory is override when
// non-empty, else <root>/build-<kitName>.
func New(root, kitName, override string) *Tracker {
	buildDir := override
	if buildDir == "" {
		buildDir = filepath.Join(root, "build-"+kitName)
	}
	return &Tracker{Root: root, BuildDir: buildDir}
}

// Configured reports whether the build directory exists. The tracker never
// creates it; configure runs do, as a side effect.
func (t *Tracker) Configured() bool {
	info, err := os.Stat(t.BuildDir)
	return err == nil && info.IsDir()
}

// EnsureSource fails with ErrMissingProjectFile unless the project root has
// its top-level build-description file. Called before constructing any
// configure command, so nothing is spawned against a non-project.
func (t *Tracker) EnsureSource() error {
	if _, err := os.Stat(filepath.Join(t.Root, ProjectFile)); err != nil {
		return fmt.Errorf("%w (%s)", ErrMissingProjectFile, t.Root)
	}
	return nil
}

// EnsureConfigured gates build/install on prior configuration. When the
// project is unconfigured it asks confirm whether to configure now: declined
// means ErrNotConfigured, accepted runs configure and reports its outcome.
func (t *Tracker) EnsureConfigured(confirm func(prompt string) (bool, error), configure func() error) error {
	if t.Configured() {
		return nil
	}
	ok, err := confirm(fmt.Sprintf("%s is not configured. Configure now?", t.BuildDir))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotConfigured, t.BuildDir)
	}
	return configure()
}

// Reset destructively removes the build directory after confirmation,
// returning the project to the unconfigured state. Declining is not an
// error; the reset is simply skipped.
func (t *Tracker) Reset(confirm func(prompt string) (bool, error)) (removed bool, err error) {
	if !t.Configured() {
		return false, nil
	}
	ok, err := confirm(fmt.Sprintf("Remove %s and all build artifacts?", t.BuildDir))
	if err != nil || !ok {
		return false, err
	}
	if err := os.RemoveAll(t.BuildDir); err != nil {
		return false, err
	}
	return true, nil
}

// TestDir locates the directory holding the project's generated test
// database. The build tree is walked in order, paths under a _deps segment
// are excluded (nested dependency projects generate their own test
// databases), and the last remaining match wins.
func (t *Tracker) TestDir() (string, error) {
	var last string
	err := filepath.WalkDir(t.BuildDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == depsDir {
			return filepath.SkipDir
		}
		if !d.IsDir() && d.Name() == testFile {
			last = filepath.Dir(path)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if last == "" {
		return "", ErrNoTestDir
	}
	return last, nil
}
