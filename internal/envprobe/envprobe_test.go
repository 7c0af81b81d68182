package envprobe

import (
	"errors"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cmkit/cmkit/pkgs/buildsys"
)

func TestParseLinesDropsNoise(t *testing.T) {
	out := "Welcome to some shell!\n" +
		"PATH=/usr/bin:/bin\n" +
		"  indented=nope\n" +
		"1BAD=skipped\n" +
		"_OK=yes\n" +
		"no assignment here\n" +
		"MULTI=a=b=c\n" +
		"\n"
	got := ParseLines(out)
	want := []string{"PATH=/usr/bin:/bin", "_OK=yes", "MULTI=a=b=c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLinesCRLF(t *testing.T) {
	got := ParseLines("FOO=bar\r\nBAZ=qux\r\n")
	want := []string{"FOO=bar", "BAZ=qux"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffIsSetDifference(t *testing.T) {
	baseline := []string{"HOME=/home/u", "PATH=/usr/bin", "LANG=C"}
	// HOME is identical and excluded; PATH changed value and is part of
	// the delta; the rest are new.
	capture := []string{
		"HOME=/home/u",
		"PATH=/mingw64/bin",
		"MSYSTEM=UCRT64",
		"PKG_CONFIG_PATH=/p",
	}
	want := []buildsys.EnvVar{
		{Name: "PATH", Value: "/mingw64/bin"},
		{Name: "MSYSTEM", Value: "UCRT64"},
		{Name: "PKG_CONFIG_PATH", Value: "/p"},
	}
	got := Diff(capture, baseline)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("delta mismatch (-want +got):\n%s", diff)
	}

	// Idempotent: same inputs, same result.
	again := Diff(capture, baseline)
	if diff := cmp.Diff(got, again); diff != "" {
		t.Fatalf("diff not idempotent (-first +second):\n%s", diff)
	}
}

func TestDiffEmptyWhenIdentical(t *testing.T) {
	lines := []string{"A=1", "B=2"}
	if got := Diff(lines, lines); len(got) != 0 {
		t.Fatalf("identical captures produced delta %v", got)
	}
}

func TestCaptureRunsShell(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on /bin/sh")
	}
	lines, err := Capture("/bin/sh", []string{"-c", "echo ignored banner; env"},
		[]buildsys.EnvVar{{Name: "CMKIT_PROBE_MARK", Value: "42"}})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	found := false
	for _, l := range lines {
		if l == "CMKIT_PROBE_MARK=42" {
			found = true
		}
		if l == "ignored banner" {
			t.Fatalf("banner line survived parsing")
		}
	}
	if !found {
		t.Fatalf("forced variable missing from capture (%d lines)", len(lines))
	}
}

func TestCaptureUnsetRemovesInherited(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on /bin/sh")
	}
	t.Setenv("CMKIT_INHERITED", "stale")

	lines, err := Capture("/bin/sh", []string{"-c", "env"}, nil)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if !containsLine(lines, "CMKIT_INHERITED=stale") {
		t.Fatalf("inherited variable missing without unset (%d lines)", len(lines))
	}

	lines, err = Capture("/bin/sh", []string{"-c", "env"}, nil, "CMKIT_INHERITED")
	if err != nil {
		t.Fatalf("capture with unset: %v", err)
	}
	for _, l := range lines {
		if l == "CMKIT_INHERITED=stale" {
			t.Fatalf("unset variable leaked into capture")
		}
	}
}

func containsLine(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}

func TestCaptureFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on /bin/sh")
	}
	_, err := Capture("/bin/sh", []string{"-c", "exit 3"}, nil)
	var pe *ProbeError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want ProbeError", err)
	}

	_, err = Capture("/nonexistent/shell-xyz", nil, nil)
	if !errors.As(err, &pe) {
		t.Fatalf("spawn failure err = %v, want ProbeError", err)
	}
}
