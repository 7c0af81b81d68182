package internal

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/cmkit/cmkit/internal/config"
	"github.com/cmkit/cmkit/internal/env"
	"github.com/cmkit/cmkit/internal/host"
	"github.com/cmkit/cmkit/internal/kit"
	"github.com/cmkit/cmkit/internal/lifecycle"
	"github.com/cmkit/cmkit/internal/lockfile"
	"github.com/cmkit/cmkit/internal/subsys"
)

// scanKits rediscovers the host's kits and rewrites the registry cache
// wholesale. Scans are serialized across processes by a lock file next to
// the cache; concurrent scans are otherwise unsupported.
func scanKits(cfg *config.Config) (*kit.Registry, error) {
	path, err := env.RegistryFile()
	if err != nil {
		return nil, err
	}
	unlock, err := lockfile.MutexAt(path + ".lock").Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	kits := subsys.Discover(subsys.Options{
		MSYSRoot: cfg.MSYSRoot,
		Bridge:   cfg.Bridge,
	})
	if len(kits) == 0 {
		log.Warn("no kits discovered on this host; check your toolchain installations")
	}
	reg, err := rescanRegistry(path, kits)
	if err != nil {
		return nil, err
	}
	for _, k := range kits {
		log.Debug("discovered kit", "name", k.Name, "cmake", k.CMake, "generator", k.Generator)
	}
	return reg, nil
}

// rescanRegistry replaces the persisted kit collection with kits and saves
// the result. The collection is wholesale-replaced, but the persisted
// default survives as long as the scan rediscovers a kit of that name.
func rescanRegistry(path string, kits []kit.Kit) (*kit.Registry, error) {
	reg, err := kit.Load(path)
	if err != nil {
		return nil, err
	}
	reg.Replace(kits)
	if err := reg.Save(path); err != nil {
		return nil, fmt.Errorf("save kit registry: %w", err)
	}
	return reg, nil
}

// loadRegistry returns the persisted registry, scanning first if none has
// been persisted yet, then layers hand-authored config kits on top.
func loadRegistry(cfg *config.Config) (*kit.Registry, error) {
	path, err := env.RegistryFile()
	if err != nil {
		return nil, err
	}
	reg, err := kit.Load(path)
	if err != nil {
		return nil, err
	}
	if reg.Len() == 0 && len(cfg.Kits) == 0 {
		log.Info("no kit registry yet, scanning")
		if reg, err = scanKits(cfg); err != nil {
			return nil, err
		}
	}
	for _, entry := range cfg.Kits {
		reg.Add(entry.Kit())
	}
	if reg.Default() == "" && cfg.DefaultKit != "" {
		reg.SetDefault(cfg.DefaultKit)
	}
	return reg, nil
}

// newOrchestrator assembles the lifecycle orchestrator from flags, config
// and the persisted registry.
func newOrchestrator() (*lifecycle.Orchestrator, error) {
	root, err := filepath.Abs(flagDirectory)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}

	jobs := cfg.Jobs
	if flagJobs > 0 {
		jobs = flagJobs
	}
	buildDir := cfg.BuildDir
	if flagBuildDir != "" {
		buildDir = flagBuildDir
	}
	if buildDir != "" && !filepath.IsAbs(buildDir) {
		buildDir = filepath.Join(root, buildDir)
	}

	var confirm host.Confirmer = host.PromptConfirmer{}
	if flagYes {
		confirm = host.AssumeYes{}
	}

	return &lifecycle.Orchestrator{
		Registry:      reg,
		Runner:        host.ExecRunner{},
		Confirm:       confirm,
		Root:          root,
		KitName:       flagKit,
		BuildDir:      buildDir,
		Jobs:          jobs,
		ConfigureArgs: cfg.ConfigureArgs,
	}, nil
}
