package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the project's tests in the background",
	Long: `Test locates the generated CTest test database in the build directory
(vendored _deps subtrees excluded) and spawns ctest in the background.
Output goes to cmkit-test.log inside the build directory; each run
truncates the previous log.`,
	RunE: runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}
	logPath, err := o.Test()
	if err != nil {
		return err
	}
	fmt.Println(logPath)
	return nil
}
