package internal

import (
	"path/filepath"
	"testing"

	"github.com/cmkit/cmkit/internal/kit"
)

func TestRescanKeepsPersistedDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kits.json")

	seed := kit.NewRegistry()
	seed.Replace([]kit.Kit{{Name: "unix-gcc"}, {Name: "unix-clang"}})
	seed.SetDefault("unix-clang")
	if err := seed.Save(path); err != nil {
		t.Fatal(err)
	}

	// A rescan that rediscovers the default kit must not reset the choice.
	reg, err := rescanRegistry(path, []kit.Kit{{Name: "unix-gcc"}, {Name: "unix-clang"}})
	if err != nil {
		t.Fatal(err)
	}
	if reg.Default() != "unix-clang" {
		t.Fatalf("default after rescan = %q, want unix-clang", reg.Default())
	}

	// And the surviving default is what got persisted, too.
	loaded, err := kit.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Default() != "unix-clang" {
		t.Fatalf("persisted default = %q, want unix-clang", loaded.Default())
	}
	if k, err := loaded.Select(""); err != nil || k.Name != "unix-clang" {
		t.Fatalf("Select(\"\") = %v, %v", k, err)
	}
}

func TestRescanDropsVanishedDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kits.json")

	seed := kit.NewRegistry()
	seed.Replace([]kit.Kit{{Name: "ucrt64"}})
	seed.SetDefault("ucrt64")
	if err := seed.Save(path); err != nil {
		t.Fatal(err)
	}

	reg, err := rescanRegistry(path, []kit.Kit{{Name: "unix-gcc"}})
	if err != nil {
		t.Fatal(err)
	}
	if reg.Default() != "" {
		t.Fatalf("default after rescan = %q, want cleared", reg.Default())
	}
}
