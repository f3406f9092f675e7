package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the assistant a single question",
	Long: `Ask the assistant a single question about products, routines or
related topics.

Examples:
  routinely ask "What order should I apply serum and moisturizer?"
  routinely ask "Is the gentle foaming cleanser okay for dry skin?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	reply, err := runWithSpinner("Thinking...", func() (string, error) {
		return orchestrator.Chat(cmd.Context(), args[0])
	})
	if err != nil {
		return err
	}

	fmt.Println(reply)
	return nil
}
