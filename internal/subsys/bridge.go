package subsys

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/encoding/unicode"

	"github.com/cmkit/cmkit/internal/kit"
)

// discoverBridge registers one kit per distribution the bridge tool lists.
// Tool lookup for these kits runs `which` inside the distribution instead
// of searching the host PATH, and the shell descriptor always targets the
// distribution. Enumeration or per-distro failures skip with a warning and
// never abort the other distributions.
func discoverBridge(opts Options) []kit.Kit {
	if _, err := opts.LookPath(opts.Bridge); err != nil {
		return nil
	}
	raw, err := opts.ListDistros(opts.Bridge)
	if err != nil {
		log.Warn("bridge distribution listing failed", "bridge", opts.Bridge, "err", err)
		return nil
	}
	text, err := DecodeWide(raw)
	if err != nil {
		log.Warn("bridge listing not decodable", "bridge", opts.Bridge, "err", err)
		return nil
	}

	var kits []kit.Kit
	for _, distro := range ParseDistroList(text) {
		k, err := bridgeKit(opts, distro)
		if err != nil {
			log.Warn("distribution probe failed, skipping", "distro", distro, "err", err)
			continue
		}
		kits = append(kits, k)
	}
	return kits
}

func bridgeKit(opts Options, distro string) (kit.Kit, error) {
	// A distribution that cannot run anything is not a kit.
	if _, err := opts.BridgeRun(opts.Bridge, distro, "true"); err != nil {
		return kit.Kit{}, fmt.Errorf("launch %s: %w", distro, err)
	}
	find := func(name string) (string, error) {
		out, err := opts.BridgeRun(opts.Bridge, distro, "which", name)
		if err != nil {
			return "", err
		}
		path := strings.TrimSpace(out)
		if path == "" {
			return "", fmt.Errorf("%s not found in %s", name, distro)
		}
		return path, nil
	}
	version := func(path string) (string, error) {
		return opts.BridgeRun(opts.Bridge, distro, path, "--version")
	}
	return kit.Build("wsl-"+distro, kit.BuildOptions{
		Find:    find,
		Version: version,
		Shell:   &kit.ShellDescriptor{Program: opts.Bridge, Args: []string{"-d", distro}},
	}), nil
}

// DecodeWide decodes the bridge tool's 16-bit wide-character output
// (UTF-16LE, optionally BOM-prefixed) into a plain string.
func DecodeWide(raw []byte) (string, error) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ParseDistroList extracts distribution names from the bridge's list
// output: the header line and blank lines are skipped, and each remaining
// line contributes its first whitespace-separated token (so decorations
// like "(Default)" are dropped).
func ParseDistroList(text string) []string {
	var names []string
	header := true
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		if header {
			header = false
			continue
		}
		if fields := strings.Fields(line); len(fields) > 0 {
			names = append(names, fields[0])
		}
	}
	return names
}
