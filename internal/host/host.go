// Package host implements the collaborator contracts the lifecycle core
// expects from its surroundings: running commands and asking the user
// yes/no questions.
package host

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/cmkit/cmkit/pkgs/buildsys"
)

// Runner executes invocations. The core hands over argv, working directory
// and environment overlay; everything else is the runner's business.
type Runner interface {
	// Run executes the invocation synchronously with inherited stdio.
	Run(ctx context.Context, inv buildsys.Invocation) error

	// Start launches the invocation in the background with stdout and
	// stderr attached to sink. The child keeps running when this process
	// exits; the caller owns nothing but the sink's path.
	Start(inv buildsys.Invocation, sink *os.File) error

	// Interactive executes the invocation with the terminal attached,
	// for kit shells.
	Interactive(ctx context.Context, inv buildsys.Invocation) error
}

// Confirmer answers yes/no prompts.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ExecRunner runs invocations with os/exec.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

var errEmptyArgv = errors.New("empty argv")

func (ExecRunner) Run(ctx context.Context, inv buildsys.Invocation) error {
	if len(inv.Argv) == 0 {
		return errEmptyArgv
	}
	cmd := exec.CommandContext(ctx, inv.Argv[0], inv.Argv[1:]...)
	cmd.Dir = inv.Dir
	cmd.Env = MergeEnv(os.Environ(), inv.Env)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (ExecRunner) Start(inv buildsys.Invocation, sink *os.File) error {
	if len(inv.Argv) == 0 {
		return errEmptyArgv
	}
	cmd := exec.Command(inv.Argv[0], inv.Argv[1:]...)
	cmd.Dir = inv.Dir
	cmd.Env = MergeEnv(os.Environ(), inv.Env)
	// The child writes to the sink directly, so it survives our exit.
	cmd.Stdout = sink
	cmd.Stderr = sink
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

func (ExecRunner) Interactive(ctx context.Context, inv buildsys.Invocation) error {
	if len(inv.Argv) == 0 {
		return errEmptyArgv
	}
	cmd := exec.CommandContext(ctx, inv.Argv[0], inv.Argv[1:]...)
	cmd.Dir = inv.Dir
	cmd.Env = MergeEnv(os.Environ(), inv.Env)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// MergeEnv lays overlay over base. Base order is preserved, overlaid names
// are replaced in place, new names are appended in overlay order; on
// repeated overlay names the later entry wins.
func MergeEnv(base []string, overlay []buildsys.EnvVar) []string {
	out := append([]string(nil), base...)
	index := make(map[string]int, len(out))
	for i, kv := range out {
		if name, _, ok := strings.Cut(kv, "="); ok {
			index[name] = i
		}
	}
	for _, v := range overlay {
		if i, ok := index[v.Name]; ok {
			out[i] = v.Name + "=" + v.Value
		} else {
			index[v.Name] = len(out)
			out = append(out, v.Name+"="+v.Value)
		}
	}
	return out
}

// PromptConfirmer asks on the terminal.
type PromptConfirmer struct{}

var _ Confirmer = PromptConfirmer{}

func (PromptConfirmer) Confirm(prompt string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// AssumeYes confirms everything, for --yes runs.
type AssumeYes struct{}

var _ Confirmer = AssumeYes{}

func (AssumeYes) Confirm(string) (bool, error) { return true, nil }
