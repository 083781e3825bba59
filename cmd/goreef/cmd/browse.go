package cmd

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/goreef/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse survey records interactively",
	Long: `Browse opens a terminal browser over the filter store.

Keys:
  up/down, j/k   move the cursor
  enter          select the record under the cursor
  esc            clear the selection
  tab/shift+tab  focus the next/previous facet
  left/right     cycle the focused facet through its values
  x              unset the focused facet
  r              reload
  c              recenter on the selection
  q              quit

Example:
  goreef browse --campagne 2024`,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
	addFilterFlags(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signalContext(cmd.Context(), a.log)
	defer stop()

	p := tea.NewProgram(tui.New(ctx, a.store),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	_, err = p.Run()
	return browseExitErr(ctx, err)
}

// browseExitErr treats a program killed by a cancelled context (a signal)
// as a clean exit.
func browseExitErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("browser failed: %w", err)
}
