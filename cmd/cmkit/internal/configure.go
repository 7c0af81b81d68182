package internal

import (
	"github.com/spf13/cobra"
)

var configureClean bool

var configureCmd = &cobra.Command{
	Use:   "configure [-- extra cmake args]",
	Short: "Configure the project with the selected kit",
	Long: `Configure generates build files for the project using the selected kit's
cmake and generator. Arguments after -- are passed to cmake verbatim.`,
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().BoolVar(&configureClean, "clean", false, "Remove the build directory first (asks for confirmation)")
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}
	o.ConfigureArgs = append(o.ConfigureArgs, args...)
	return o.Configure(cmd.Context(), configureClean)
}
