package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat <url>",
	Short: "Chat with a document in the terminal",
	Long: `Open an interactive chat over the document at url.

Controls:
  enter   - Ask the typed question
  ctrl+s  - Summarise the document
  ctrl+r  - Scan for risky clauses
  pgup/dn - Scroll the transcript
  esc     - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// runProgram runs a bubbletea model; replaced in tests.
var runProgram = func(model tea.Model) error {
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func runChat(cmd *cobra.Command, args []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}
	defer svc.close()

	app, err := tui.NewApp(&tui.Ports{QA: svc.QA, Analysis: svc.Analysis}, args[0])
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(commandContext(cmd))

	if err := runProgram(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
