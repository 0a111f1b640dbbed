package cli

import (
	"fmt"
	"os"

	"github.com/artpar/portfolio/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand(load ConfigLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the gallery in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openLocal(cmd.Context(), load)
			if err != nil {
				return err
			}
			defer a.Close()

			browser := tui.NewBrowser(cmd.Context(), a.Portfolio())
			p := tea.NewProgram(browser, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
				return err
			}
			return nil
		},
	}
}
