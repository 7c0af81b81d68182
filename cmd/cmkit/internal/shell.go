package internal

import (
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open an interactive shell inside the selected kit",
	Long: `Shell starts the kit's interactive shell - the subsystem's login shell or
the bridge tool for a WSL kit - with the kit's environment applied. Kits
without a shell of their own get the host shell plus the kit environment.`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}
	return o.Shell(cmd.Context())
}
