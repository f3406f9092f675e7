package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"routinely/internal/assistant"
)

var routineOutputFile string

var routineCmd = &cobra.Command{
	Use:   "routine",
	Short: "Generate a personalized routine from the selection",
	Long: `Ask the assistant to build a personalized routine from the currently
selected products.

The selected product details are sent with the request but never stored
in the conversation, so a follow-up question refers to the routine, not
to a wall of product JSON.

Examples:
  routinely routine
  routinely routine -o routine.md`,
	RunE: runRoutine,
}

func init() {
	routineCmd.Flags().StringVarP(&routineOutputFile, "output", "o", "", "write the routine to a file")
}

func runRoutine(cmd *cobra.Command, args []string) error {
	reply, err := runWithSpinner("Generating routine...", func() (string, error) {
		return orchestrator.GenerateRoutine(cmd.Context())
	})
	if err != nil {
		if errors.Is(err, assistant.ErrEmptySelection) {
			return fmt.Errorf("no products selected; use 'routinely pick <id>' first")
		}
		return err
	}

	fmt.Println(reply)

	if routineOutputFile != "" {
		if err := os.WriteFile(routineOutputFile, []byte(reply+"\n"), 0644); err != nil {
			return fmt.Errorf("write routine: %w", err)
		}
		fmt.Printf("\nRoutine written to %s\n", routineOutputFile)
	}
	return nil
}
