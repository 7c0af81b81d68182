package internal

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Print the kit's language-server command",
	Long: `Lsp prints the selected kit's clangd invocation and environment overlay,
one NAME=VALUE per line followed by the command line, for editors and
other host tooling to consume before launching their own server.`,
	RunE: runLsp,
}

func init() {
	rootCmd.AddCommand(lspCmd)
}

func runLsp(cmd *cobra.Command, args []string) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}
	inv, err := o.LanguageServer()
	if err != nil {
		return err
	}
	for _, v := range inv.Env {
		fmt.Printf("%s=%s\n", v.Name, v.Value)
	}
	fmt.Println(strings.Join(inv.Argv, " "))
	return nil
}
