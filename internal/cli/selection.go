package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pickCmd = &cobra.Command{
	Use:   "pick <product-id>...",
	Short: "Toggle products in the selection",
	Long: `Toggle one or more products in the selection by id. Picking an
already-selected product removes it. The selection is saved immediately
and restored on the next run.

Examples:
  routinely pick 12
  routinely pick 12 34 56`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPick,
}

var dropCmd = &cobra.Command{
	Use:   "drop <product-id>...",
	Short: "Remove products from the selection",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDrop,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the selection",
	RunE:  runClear,
}

var selectedCmd = &cobra.Command{
	Use:   "selected",
	Short: "Show the current selection",
	RunE:  runSelected,
}

func runPick(cmd *cobra.Command, args []string) error {
	for _, id := range args {
		p, ok := products.FindByID(id)
		if !ok {
			return fmt.Errorf("unknown product id: %s", id)
		}
		if selection.Toggle(p) {
			fmt.Printf("+ %s (%s)\n", p.Name, p.Brand)
		} else {
			fmt.Printf("- %s (%s)\n", p.Name, p.Brand)
		}
	}
	fmt.Printf("%d selected\n", selection.Len())
	return nil
}

func runDrop(cmd *cobra.Command, args []string) error {
	for _, id := range args {
		selection.Remove(id)
	}
	fmt.Printf("%d selected\n", selection.Len())
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	selection.Clear()
	fmt.Println("Selection cleared.")
	return nil
}

func runSelected(cmd *cobra.Command, args []string) error {
	list := selection.Products()
	if len(list) == 0 {
		fmt.Println("No products selected. Use 'routinely pick <id>' to add some.")
		return nil
	}

	for _, p := range list {
		fmt.Printf("%-6s %-28s %-16s %s\n", p.ID, p.Name, p.Brand, p.Category)
	}
	fmt.Printf("\n%d selected\n", len(list))
	return nil
}
