package kit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrNoKitSelected reports selection against an empty registry.
var ErrNoKitSelected = errors.New("no kit selected: registry is empty, run a kit scan first")

// Registry holds the ordered collection of kits and the default selection.
// A scan replaces the whole collection (last scan wins, no merge); apart
// from Add for hand-authored entries it is read-only for a session.
// Concurrent scans are not supported; callers serialize them.
type Registry struct {
	kits        []Kit
	defaultName string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Replace installs kits as the entire new collection, dropping whatever was
// there before. The default name is kept only if it still resolves.
func (r *Registry) Replace(kits []Kit) {
	r.kits = append([]Kit(nil), kits...)
	if r.defaultName != "" {
		if _, ok := r.lookup(r.defaultName); !ok {
			r.defaultName = ""
		}
	}
}

// Add registers a hand-authored kit, replacing any same-named entry in
// place and otherwise appending.
func (r *Registry) Add(k Kit) {
	for i := range r.kits {
		if r.kits[i].Name == k.Name {
			r.kits[i] = k
			return
		}
	}
	r.kits = append(r.kits, k)
}

// Kits returns the kits in discovery order.
func (r *Registry) Kits() []Kit {
	return append([]Kit(nil), r.kits...)
}

// Len reports the number of registered kits.
func (r *Registry) Len() int { return len(r.kits) }

// SetDefault records the default kit name. The name need not resolve yet;
// hand-authored entries may arrive later.
func (r *Registry) SetDefault(name string) {
	r.defaultName = name
}

// Default returns the configured default kit name, or "".
func (r *Registry) Default() string { return r.defaultName }

// Select resolves the explicit name, else the configured default, else the
// first discovered kit. An empty registry yields ErrNoKitSelected; an
// unknown explicit name is its own error.
func (r *Registry) Select(name string) (Kit, error) {
	if len(r.kits) == 0 {
		return Kit{}, ErrNoKitSelected
	}
	if name == "" {
		name = r.defaultName
	}
	if name == "" {
		return r.kits[0], nil
	}
	if k, ok := r.lookup(name); ok {
		return k, nil
	}
	return Kit{}, fmt.Errorf("unknown kit %q", name)
}

func (r *Registry) lookup(name string) (Kit, bool) {
	for _, k := range r.kits {
		if k.Name == name {
			return k, true
		}
	}
	return Kit{}, false
}

type registryFile struct {
	Default string `json:"default,omitempty"`
	Kits    []Kit  `json:"kits"`
}

// Save writes the registry to path as JSON, preserving order.
func (r *Registry) Save(path string) error {
	data, err := json.MarshalIndent(registryFile{Default: r.defaultName, Kits: r.kits}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}

// Load reads a registry previously written by Save. A missing file yields
// an empty registry, not an error.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewRegistry(), nil
		}
		return nil, err
	}
	var f registryFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse kit registry %s: %w", path, err)
	}
	return &Registry{kits: f.Kits, defaultName: f.Default}, nil
}
