package internal

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	flagDirectory string
	flagKit       string
	flagBuildDir  string
	flagJobs      int
	flagYes       bool
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "cmkit",
	Short: "cmkit discovers build kits and drives the CMake lifecycle",
	Long: `cmkit discovers the native build toolchains ("kits") available on this
host - plain compilers, MSYS2 subsystem flavors, WSL distributions - and
uses the selected kit's environment and tools to configure, build, install
and test a CMake project.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDirectory, "directory", "C", ".", "Project root directory")
	rootCmd.PersistentFlags().StringVarP(&flagKit, "kit", "k", "", "Kit to use (default: configured default, else first discovered)")
	rootCmd.PersistentFlags().StringVarP(&flagBuildDir, "build-dir", "B", "", "Build directory (default: <root>/build-<kit>)")
	rootCmd.PersistentFlags().IntVarP(&flagJobs, "jobs", "j", 0, "Parallel jobs (default: tool decides)")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Answer yes to all confirmations")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}
