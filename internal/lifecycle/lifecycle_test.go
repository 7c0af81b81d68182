package lifecycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cmkit/cmkit/internal/kit"
	"github.com/cmkit/cmkit/internal/state"
	"github.com/cmkit/cmkit/pkgs/buildsys"
)

// fakeRunner records invocations and simulates cmake's side effect of
// creating the build directory on configure.
type fakeRunner struct {
	runs   []buildsys.Invocation
	starts []buildsys.Invocation
}

func (r *fakeRunner) Run(_ context.Context, inv buildsys.Invocation) error {
	r.runs = append(r.runs, inv)
	for i, a := range inv.Argv {
		if a == "-B" && i+1 < len(inv.Argv) {
			if err := os.MkdirAll(inv.Argv[i+1], 0755); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *fakeRunner) Start(inv buildsys.Invocation, sink *os.File) error {
	r.starts = append(r.starts, inv)
	_, err := sink.WriteString("100% tests passed\n")
	return err
}

func (r *fakeRunner) Interactive(_ context.Context, inv buildsys.Invocation) error {
	r.runs = append(r.runs, inv)
	return nil
}

type staticConfirm bool

func (c staticConfirm) Confirm(string) (bool, error) { return bool(c), nil }

func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "CMakeLists.txt"), []byte("project(demo)\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return root
}

func testKit() kit.Kit {
	return kit.Kit{
		Name:      "unix-gcc",
		CMake:     "/usr/bin/cmake",
		CTest:     "/usr/bin/ctest",
		Generator: "Ninja",
		Env:       []buildsys.EnvVar{{Name: "CC", Value: "gcc"}},
	}
}

func newOrchestrator(root string, k kit.Kit, runner *fakeRunner, confirm staticConfirm) *Orchestrator {
	reg := kit.NewRegistry()
	reg.Replace([]kit.Kit{k})
	return &Orchestrator{
		Registry: reg,
		Runner:   runner,
		Confirm:  confirm,
		Root:     root,
	}
}

func TestConfigureInvocation(t *testing.T) {
	root := newProject(t)
	runner := &fakeRunner{}
	o := newOrchestrator(root, testKit(), runner, false)
	o.ConfigureArgs = []string{"-DCMAKE_BUILD_TYPE=Debug"}

	if err := o.Configure(context.Background(), false); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if len(runner.runs) != 1 {
		t.Fatalf("got %d runs", len(runner.runs))
	}
	want := []string{
		"/usr/bin/cmake", "-G", "Ninja",
		"-S", root, "-B", filepath.Join(root, "build-unix-gcc"),
		"-DCMAKE_BUILD_TYPE=Debug",
	}
	if diff := cmp.Diff(want, runner.runs[0].Argv); diff != "" {
		t.Fatalf("argv mismatch (-want +got):\n%s", diff)
	}
	if len(runner.runs[0].Env) != 1 || runner.runs[0].Env[0].Name != "CC" {
		t.Fatalf("kit env not carried: %v", runner.runs[0].Env)
	}
}

func TestConfigureWithoutProjectFile(t *testing.T) {
	runner := &fakeRunner{}
	o := newOrchestrator(t.TempDir(), testKit(), runner, true)
	err := o.Configure(context.Background(), false)
	if !errors.Is(err, state.ErrMissingProjectFile) {
		t.Fatalf("err = %v, want ErrMissingProjectFile", err)
	}
	if len(runner.runs) != 0 {
		t.Fatal("a process was spawned despite the missing project file")
	}
}

func TestConfigureToolMissingEchoesKit(t *testing.T) {
	root := newProject(t)
	k := testKit()
	k.CMake = ""
	o := newOrchestrator(root, k, &fakeRunner{}, false)
	err := o.Configure(context.Background(), false)
	var tm *buildsys.ToolMissingError
	if !errors.As(err, &tm) {
		t.Fatalf("err = %v, want ToolMissingError", err)
	}
	if !strings.Contains(err.Error(), "kit unix-gcc") {
		t.Fatalf("error does not echo kit configuration: %v", err)
	}
}

func TestBuildDeclinedConfigure(t *testing.T) {
	root := newProject(t)
	runner := &fakeRunner{}
	o := newOrchestrator(root, testKit(), runner, false)

	err := o.Build(context.Background(), false)
	if !errors.Is(err, state.ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
	if len(runner.runs) != 0 {
		t.Fatal("build ran despite declined configure")
	}
}

func TestBuildAutoConfigures(t *testing.T) {
	root := newProject(t)
	runner := &fakeRunner{}
	o := newOrchestrator(root, testKit(), runner, true)
	o.Jobs = 4

	if err := o.Build(context.Background(), false); err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(runner.runs) != 2 {
		t.Fatalf("got %d runs, want configure then build", len(runner.runs))
	}
	buildArgv := runner.runs[1].Argv
	want := []string{"/usr/bin/cmake", "--build", filepath.Join(root, "build-unix-gcc"), "-j", "4"}
	if diff := cmp.Diff(want, buildArgv); diff != "" {
		t.Fatalf("build argv mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildOnConfiguredProject(t *testing.T) {
	root := newProject(t)
	runner := &fakeRunner{}
	o := newOrchestrator(root, testKit(), runner, false) // confirm=no: must not be asked
	if err := os.MkdirAll(filepath.Join(root, "build-unix-gcc"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := o.Build(context.Background(), true); err != nil {
		t.Fatalf("build: %v", err)
	}
	argv := runner.runs[0].Argv
	if argv[len(argv)-1] != "--clean-first" {
		t.Fatalf("clean build argv = %v", argv)
	}
}

func TestInstallGuarded(t *testing.T) {
	root := newProject(t)
	runner := &fakeRunner{}
	o := newOrchestrator(root, testKit(), runner, false)
	if err := o.Install(context.Background()); !errors.Is(err, state.ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}

	if err := os.MkdirAll(filepath.Join(root, "build-unix-gcc"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := o.Install(context.Background()); err != nil {
		t.Fatalf("install: %v", err)
	}
	argv := runner.runs[len(runner.runs)-1].Argv
	if argv[1] != "--install" {
		t.Fatalf("install argv = %v", argv)
	}
}

func TestTestSpawnsBackgroundRun(t *testing.T) {
	root := newProject(t)
	runner := &fakeRunner{}
	o := newOrchestrator(root, testKit(), runner, false)

	buildDir := filepath.Join(root, "build-unix-gcc")
	for _, dir := range []string{buildDir, filepath.Join(buildDir, "_deps", "dep-build")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "CTestTestfile.cmake"), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	logPath, err := o.Test()
	if err != nil {
		t.Fatalf("test: %v", err)
	}
	if logPath != filepath.Join(buildDir, TestLogName) {
		t.Fatalf("log path = %q", logPath)
	}
	if len(runner.starts) != 1 {
		t.Fatalf("got %d background starts", len(runner.starts))
	}
	inv := runner.starts[0]
	if inv.Program() != "/usr/bin/ctest" {
		t.Fatalf("test program = %q", inv.Program())
	}
	if inv.Dir != buildDir {
		t.Fatalf("test dir = %q, want the non-_deps match %q", inv.Dir, buildDir)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "tests passed") {
		t.Fatalf("log contents %q", data)
	}
}

func TestTestUnconfigured(t *testing.T) {
	root := newProject(t)
	o := newOrchestrator(root, testKit(), &fakeRunner{}, true)
	if _, err := o.Test(); !errors.Is(err, state.ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestShellUsesDescriptor(t *testing.T) {
	root := newProject(t)
	runner := &fakeRunner{}
	k := testKit()
	k.Shell = &kit.ShellDescriptor{
		Program: "wsl.exe",
		Args:    []string{"-d", "Ubuntu"},
		Env:     []buildsys.EnvVar{{Name: "WSLENV", Value: "CC"}},
	}
	o := newOrchestrator(root, k, runner, false)
	if err := o.Shell(context.Background()); err != nil {
		t.Fatalf("shell: %v", err)
	}
	inv := runner.runs[0]
	if diff := cmp.Diff([]string{"wsl.exe", "-d", "Ubuntu"}, inv.Argv); diff != "" {
		t.Fatalf("shell argv mismatch (-want +got):\n%s", diff)
	}
	// Kit delta first, then the descriptor's own overlay.
	if len(inv.Env) != 2 || inv.Env[0].Name != "CC" || inv.Env[1].Name != "WSLENV" {
		t.Fatalf("shell env = %v", inv.Env)
	}
}

func TestLanguageServer(t *testing.T) {
	root := newProject(t)
	k := testKit()
	k.Clangd = "/usr/bin/clangd"
	o := newOrchestrator(root, k, &fakeRunner{}, false)

	inv, err := o.LanguageServer()
	if err != nil {
		t.Fatalf("language server: %v", err)
	}
	if inv.Program() != "/usr/bin/clangd" {
		t.Fatalf("program = %q", inv.Program())
	}
	found := false
	for _, a := range inv.Argv {
		if strings.HasPrefix(a, "--compile-commands-dir=") {
			found = true
		}
	}
	if !found {
		t.Fatalf("argv %v missing compile-commands dir", inv.Argv)
	}

	k.Clangd = ""
	o = newOrchestrator(root, k, &fakeRunner{}, false)
	if _, err := o.LanguageServer(); err == nil {
		t.Fatal("missing clangd did not error")
	}
}

func TestSelectionErrorsPropagate(t *testing.T) {
	o := &Orchestrator{Registry: kit.NewRegistry(), Runner: &fakeRunner{}, Confirm: staticConfirm(true), Root: t.TempDir()}
	if err := o.Configure(context.Background(), false); !errors.Is(err, kit.ErrNoKitSelected) {
		t.Fatalf("err = %v, want ErrNoKitSelected", err)
	}
}
