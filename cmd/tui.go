package cmd

import (
	"context"
	"fmt"
	"os"

	errors "github.com/Laisky/errors/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Laisky/zine-site/cmd/tui"
	"github.com/Laisky/zine-site/library/log"
)

var tuiCMD = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive search console",
	Long: `Launch an interactive terminal console that searches stories,
pages and contributors against the configured content store.

Keyboard shortcuts:
  Enter       Search
  Esc         New search (or quit from the prompt)
  ↑/↓         Browse results
  q / Ctrl+C  Quit`,
	Args: gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if err := runTUI(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCMD.AddCommand(tuiCMD)
}

// runTUI opens the content store and runs the console until the user quits.
func runTUI(ctx context.Context) error {
	store, svc, err := openSearch(ctx)
	if err != nil {
		return errors.Wrap(err, "open search")
	}
	defer closeStore(ctx, store)

	p := tea.NewProgram(
		tui.NewModel(ctx, svc),
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err = p.Run()
	return errors.WithStack(err)
}
