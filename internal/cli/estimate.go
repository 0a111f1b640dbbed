package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/artpar/portfolio/internal/estimate"
	"github.com/artpar/portfolio/internal/portfolio"
	"github.com/spf13/cobra"
)

// NewEstimateCommand creates the estimate command.
func NewEstimateCommand(load ConfigLoader) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "estimate [COUNT]",
		Short: "Show the delivery estimate",
		Long:  "Print the delivery tier for COUNT thumbnails in progress, or for the stored count when COUNT is omitted.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p portfolio.ProgressEstimate
			if len(args) == 1 {
				n, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil || n < 0 {
					return fmt.Errorf("invalid count %q: must be a non-negative integer", args[0])
				}
				p = portfolio.ProgressEstimate{ThumbnailsInProgress: n, Estimate: estimate.Tier(int(n))}
			} else {
				a, err := openLocal(cmd.Context(), load)
				if err != nil {
					return err
				}
				defer a.Close()
				if p, err = a.Portfolio().Progress(cmd.Context()); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}
			fmt.Fprintf(out, "%s (%s): %d in progress\n", p.Estimate.TimeLabel, p.Estimate.Status, p.ThumbnailsInProgress)
			fmt.Fprintln(out, p.Estimate.Description)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
