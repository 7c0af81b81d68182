// Package lifecycle sequences the user-facing build operations: configure,
// build, install, test, and the kit shell. It owns no process machinery of
// its own; invocations are constructed here and handed to the host
// collaborators.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/cmkit/cmkit/internal/host"
	"github.com/cmkit/cmkit/internal/kit"
	"github.com/cmkit/cmkit/internal/state"
	"github.com/cmkit/cmkit/pkgs/buildsys"
	"github.com/cmkit/cmkit/pkgs/buildsys/cmake"
)

// TestLogName is the per-build-directory test output sink, truncated on
// every test run (overlapping runs are last-wins, not coordinated).
const TestLogName = "cmkit-test.log"

// Orchestrator binds a project to the kit registry and the host
// collaborators. Fields are set once at construction.
type Orchestrator struct {
	Registry *kit.Registry
	Runner   host.Runner
	Confirm  host.Confirmer

	Root     string // project root
	KitName  string // explicit kit selection, "" = default
	BuildDir string // explicit build directory, "" = <root>/build-<kit>

	Jobs          int
	ConfigureArgs []string
}

// selected resolves the kit and the build-directory tracker for it.
func (o *Orchestrator) selected() (kit.Kit, *state.Tracker, error) {
	k, err := o.Registry.Select(o.KitName)
	if err != nil {
		return kit.Kit{}, nil, err
	}
	return k, state.New(o.Root, k.Name, o.BuildDir), nil
}

func (o *Orchestrator) planner(k kit.Kit, tr *state.Tracker) *cmake.CMake {
	return cmake.New(k.CMake, k.CTest).
		Source(o.Root).
		BuildDir(tr.BuildDir).
		Generator(k.Generator).
		Env(k.Env).
		Jobs(o.Jobs)
}

// describeToolMissing echoes the kit's full configuration alongside a
// missing-tool failure so the user can see what the kit resolved to.
func describeToolMissing(err error, k kit.Kit) error {
	var tm *buildsys.ToolMissingError
	if errors.As(err, &tm) {
		return fmt.Errorf("%w\n%s", err, k)
	}
	return err
}

// Configure runs the configure step. With clean set, the build directory is
// removed first (after confirmation). The source check runs before any
// command is constructed.
func (o *Orchestrator) Configure(ctx context.Context, clean bool) error {
	k, tr, err := o.selected()
	if err != nil {
		return err
	}
	if err := tr.EnsureSource(); err != nil {
		return err
	}
	if clean {
		if _, err := tr.Reset(o.Confirm.Confirm); err != nil {
			return err
		}
	}
	inv, err := o.planner(k, tr).ExtraArgs(o.ConfigureArgs...).Configure()
	if err != nil {
		return describeToolMissing(err, k)
	}
	log.Info("configuring", "kit", k.Name, "build-dir", tr.BuildDir, "generator", k.Generator)
	return o.Runner.Run(ctx, inv)
}

// Build runs the build step, gated on prior configuration: an unconfigured
// project triggers a confirmation to configure first, and declining fails
// with state.ErrNotConfigured.
func (o *Orchestrator) Build(ctx context.Context, clean bool) error {
	k, tr, err := o.selected()
	if err != nil {
		return err
	}
	if err := tr.EnsureConfigured(o.Confirm.Confirm, func() error {
		return o.Configure(ctx, false)
	}); err != nil {
		return err
	}
	inv, err := o.planner(k, tr).CleanFirst(clean).Build()
	if err != nil {
		return describeToolMissing(err, k)
	}
	log.Info("building", "kit", k.Name, "build-dir", tr.BuildDir)
	return o.Runner.Run(ctx, inv)
}

// Install runs the install step behind the same configuration gate as
// Build.
func (o *Orchestrator) Install(ctx context.Context) error {
	k, tr, err := o.selected()
	if err != nil {
		return err
	}
	if err := tr.EnsureConfigured(o.Confirm.Confirm, func() error {
		return o.Configure(ctx, false)
	}); err != nil {
		return err
	}
	inv, err := o.planner(k, tr).Install()
	if err != nil {
		return describeToolMissing(err, k)
	}
	log.Info("installing", "kit", k.Name, "build-dir", tr.BuildDir)
	return o.Runner.Run(ctx, inv)
}

// Test locates the project's test database and spawns the test runner in
// the background, writing into the build directory's test log (truncated
// per run). It returns the log path.
func (o *Orchestrator) Test() (string, error) {
	k, tr, err := o.selected()
	if err != nil {
		return "", err
	}
	if !tr.Configured() {
		return "", fmt.Errorf("%w: %s", state.ErrNotConfigured, tr.BuildDir)
	}
	testDir, err := tr.TestDir()
	if err != nil {
		return "", err
	}
	inv, err := o.planner(k, tr).Test(testDir)
	if err != nil {
		return "", describeToolMissing(err, k)
	}

	logPath := filepath.Join(tr.BuildDir, TestLogName)
	sink, err := os.OpenFile(logPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return "", err
	}
	defer sink.Close()

	if err := o.Runner.Start(inv, sink); err != nil {
		return "", err
	}
	log.Info("test run started", "kit", k.Name, "dir", testDir, "log", logPath)
	return logPath, nil
}

// Shell opens an interactive shell for the kit: its own shell descriptor
// when it has one, the host's default shell with the kit's environment laid
// over it otherwise.
func (o *Orchestrator) Shell(ctx context.Context) error {
	k, _, err := o.selected()
	if err != nil {
		return err
	}
	sh := k.ShellOr(hostShell())
	argv := append([]string{sh.Program}, sh.Args...)
	env := append(append([]buildsys.EnvVar(nil), k.Env...), sh.Env...)
	log.Info("entering kit shell", "kit", k.Name, "shell", sh.Program)
	return o.Runner.Interactive(ctx, buildsys.Invocation{Argv: argv, Dir: o.Root, Env: env})
}

func hostShell() kit.ShellDescriptor {
	if runtime.GOOS == "windows" {
		if comspec := os.Getenv("COMSPEC"); comspec != "" {
			return kit.ShellDescriptor{Program: comspec}
		}
		return kit.ShellDescriptor{Program: "cmd.exe"}
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return kit.ShellDescriptor{Program: shell}
	}
	return kit.ShellDescriptor{Program: "/bin/sh"}
}

// LanguageServer exposes the kit's language-server invocation for the host
// environment to launch on its own terms. The build directory is passed as
// the compile-commands root.
func (o *Orchestrator) LanguageServer() (buildsys.Invocation, error) {
	k, tr, err := o.selected()
	if err != nil {
		return buildsys.Invocation{}, err
	}
	if k.Clangd == "" {
		return buildsys.Invocation{}, describeToolMissing(&buildsys.ToolMissingError{Tool: "clangd"}, k)
	}
	argv := []string{k.Clangd, "--compile-commands-dir=" + tr.BuildDir}
	return buildsys.Invocation{Argv: argv, Dir: o.Root, Env: k.Env}, nil
}

// Reset destructively removes the build directory after confirmation.
func (o *Orchestrator) Reset() error {
	_, tr, err := o.selected()
	if err != nil {
		return err
	}
	removed, err := tr.Reset(o.Confirm.Confirm)
	if err != nil {
		return err
	}
	if removed {
		log.Info("build directory removed", "build-dir", tr.BuildDir)
	}
	return nil
}
