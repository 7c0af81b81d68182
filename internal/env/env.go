package env

import (
	"os"
	"path/filepath"
)

func WorkDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userCacheDir, "cmkit"), nil
}

// RegistryFile returns the path of the persisted kit registry, creating the
// work directory if needed.
func RegistryFile() (string, error) {
	dir, err := WorkDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "kits.json"), nil
}
