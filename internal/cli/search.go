package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/artpar/portfolio/internal/config"
	"github.com/artpar/portfolio/internal/portfolio"
	"github.com/spf13/cobra"
)

// SearchOptions holds options for the search command.
type SearchOptions struct {
	Category  string
	Threshold float64
	JSON      bool
}

// NewSearchCommand creates the search command.
func NewSearchCommand(load ConfigLoader) *cobra.Command {
	opts := &SearchOptions{}

	cmd := &cobra.Command{
		Use:   "search [QUERY]",
		Short: "Search the public gallery",
		Long:  "Rank visible gallery items against QUERY by category and tag names.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var query string
			if len(args) == 1 {
				query = args[0]
			}
			return runSearch(cmd, load, query, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", portfolio.AllCategories, "Category slug to search within")
	cmd.Flags().Float64Var(&opts.Threshold, "threshold", 0, "Match threshold in [0, 1] (default from config)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output results as JSON")

	return cmd
}

func runSearch(cmd *cobra.Command, load ConfigLoader, query string, opts *SearchOptions) error {
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return fmt.Errorf("threshold must be within [0, 1], got %v", opts.Threshold)
	}
	if opts.Threshold > 0 {
		base := load
		load = func() (config.Config, error) {
			cfg, err := base()
			cfg.Search.ItemThreshold = opts.Threshold
			return cfg, err
		}
	}

	a, err := openLocal(cmd.Context(), load)
	if err != nil {
		return err
	}
	defer a.Close()

	g, err := a.Portfolio().Items(cmd.Context(), portfolio.GalleryQuery{Category: opts.Category, Query: query})
	if err != nil {
		return err
	}
	return printGallery(cmd, g, opts.JSON)
}

func printGallery(cmd *cobra.Command, g portfolio.Gallery, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	}

	if len(g.Items) == 0 {
		msg := g.Message
		if msg == "" {
			msg = "No items found"
		}
		fmt.Fprintln(out, msg)
		return nil
	}
	for _, it := range g.Items {
		star := " "
		if it.IsStarred {
			star = "★"
		}
		category := ""
		if it.Category != nil {
			category = it.Category.Name
		}
		fmt.Fprintf(out, "%s %-14s %-5s %s  %s\n", star, category, it.FileType, strings.Join(it.TagNames(), ", "), it.FileURL)
	}
	fmt.Fprintf(out, "\n%d items\n", len(g.Items))
	return nil
}
