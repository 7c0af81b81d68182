package internal

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cmkit/cmkit/internal/config"
	"github.com/cmkit/cmkit/internal/env"
	"github.com/cmkit/cmkit/internal/kit"
)

var kitsCmd = &cobra.Command{
	Use:   "kits",
	Short: "Manage the kit registry",
}

var kitsScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Rediscover kits on this host",
	Long: `Scan probes the host for build kits - MSYS2 subsystem flavors, WSL
distributions, plain compilers - and replaces the kit registry with the
result. Scanning is destructive: previously discovered kits that no longer
probe are gone.`,
	RunE: runKitsScan,
}

var kitsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered kits",
	RunE:  runKitsList,
}

var kitsDefaultCmd = &cobra.Command{
	Use:   "default <kit>",
	Short: "Set the default kit",
	Args:  cobra.ExactArgs(1),
	RunE:  runKitsDefault,
}

func init() {
	kitsCmd.AddCommand(kitsScanCmd, kitsListCmd, kitsDefaultCmd)
	rootCmd.AddCommand(kitsCmd)
}

func loadConfig() (*config.Config, error) {
	root, err := filepath.Abs(flagDirectory)
	if err != nil {
		return nil, err
	}
	return config.Load(root)
}

func runKitsScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := scanKits(cfg)
	if err != nil {
		return err
	}
	for _, k := range reg.Kits() {
		fmt.Println(k.Name)
	}
	return nil
}

func runKitsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	def, _ := reg.Select("")
	for _, k := range reg.Kits() {
		marker := " "
		if k.Name == def.Name {
			marker = "*"
		}
		cmake := k.CMake
		if cmake == "" {
			cmake = "(no cmake)"
		}
		fmt.Printf("%s %-16s %-16s %s\n", marker, k.Name, k.Generator, cmake)
	}
	return nil
}

func runKitsDefault(cmd *cobra.Command, args []string) error {
	path, err := env.RegistryFile()
	if err != nil {
		return err
	}
	reg, err := kit.Load(path)
	if err != nil {
		return err
	}
	if _, err := reg.Select(args[0]); err != nil {
		return err
	}
	reg.SetDefault(args[0])
	return reg.Save(path)
}
