package internal

import (
	"github.com/spf13/cobra"
)

var buildClean bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the project with the selected kit",
	Long: `Build runs the selected kit's cmake --build against the project's build
directory. An unconfigured project triggers a confirmation to configure
first.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildClean, "clean", false, "Clean before building (--clean-first)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}
	return o.Build(cmd.Context(), buildClean)
}
