package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var productsCategory string

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the product catalog",
	Long: `List the product catalog, optionally filtered by category.

Examples:
  routinely products
  routinely products --category cleanser`,
	RunE: runProducts,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the catalog categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, c := range products.Categories() {
			fmt.Println(c)
		}
		return nil
	},
}

func init() {
	productsCmd.Flags().StringVarP(&productsCategory, "category", "c", "", "filter by category")
}

func runProducts(cmd *cobra.Command, args []string) error {
	list := products.Products()
	if productsCategory != "" {
		list = products.FilterByCategory(productsCategory)
	}

	if len(list) == 0 {
		if productsCategory != "" {
			fmt.Printf("No products in category %q. Categories: %v\n", productsCategory, products.Categories())
		} else {
			fmt.Println("The catalog is empty.")
		}
		return nil
	}

	selected := make(map[string]bool)
	for _, id := range selection.IDs() {
		selected[id] = true
	}

	for _, p := range list {
		marker := " "
		if selected[p.ID] {
			marker = "*"
		}
		fmt.Printf("%s %-6s %-28s %-16s %s\n", marker, p.ID, p.Name, p.Brand, p.Category)
	}
	fmt.Printf("\n%d products (* = selected)\n", len(list))
	return nil
}
