// Package envprobe captures the environment of a non-interactive shell as
// raw NAME=VALUE lines and computes deltas between two captures.
package envprobe

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/cmkit/cmkit/pkgs/buildsys"
)

// ProbeError reports that a probe process could not be started or exited
// non-zero. Callers decide whether that is fatal or just "no such tool".
type ProbeError struct {
	Prog string
	Args []string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s %s: %v", e.Prog, strings.Join(e.Args, " "), e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// Capture runs prog with args non-interactively and returns the NAME=VALUE
// lines of its combined output. Banners, prompts and any other
// non-assignment lines are dropped. Variables named in unset are removed
// from the probe's environment before extra is laid on top, so a capture
// can be forced clean of selectors the calling process itself inherited.
func Capture(prog string, args []string, extra []buildsys.EnvVar, unset ...string) ([]string, error) {
	cmd := exec.Command(prog, args...)
	if len(extra) > 0 || len(unset) > 0 {
		env := cmd.Environ()
		if len(unset) > 0 {
			drop := make(map[string]struct{}, len(unset))
			for _, name := range unset {
				drop[name] = struct{}{}
			}
			kept := env[:0]
			for _, kv := range env {
				if name, _, ok := strings.Cut(kv, "="); ok {
					if _, skip := drop[name]; skip {
						continue
					}
				}
				kept = append(kept, kv)
			}
			env = kept
		}
		for _, v := range extra {
			env = append(env, v.Name+"="+v.Value)
		}
		cmd.Env = env
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, &ProbeError{Prog: prog, Args: args, Err: err}
	}
	return ParseLines(string(out)), nil
}

// ParseLines keeps only lines that start with IDENTIFIER= and returns them
// unmodified, in input order.
func ParseLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if isAssignment(line) {
			lines = append(lines, line)
		}
	}
	return lines
}

func isAssignment(line string) bool {
	name, _, ok := strings.Cut(line, "=")
	if !ok || name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Diff returns the variables present in capture and absent from baseline,
// in capture order. Absence is exact-line absence: a variable that exists in
// both but with a different value is part of the delta. Pure and idempotent.
func Diff(capture, baseline []string) []buildsys.EnvVar {
	base := make(map[string]struct{}, len(baseline))
	for _, line := range baseline {
		base[line] = struct{}{}
	}
	var delta []buildsys.EnvVar
	for _, line := range capture {
		if _, ok := base[line]; ok {
			continue
		}
		if name, value, ok := strings.Cut(line, "="); ok {
			delta = append(delta, buildsys.EnvVar{Name: name, Value: value})
		}
	}
	return delta
}
