package mode

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/mdw/internal/document"
	"github.com/Paintersrp/mdw/internal/state"
	"github.com/Paintersrp/mdw/pkg/shared/prompt"
)

var choices = []string{document.ModeEdit.String(), document.ModeRender.String()}

func NewCmdMode(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mode [edit|render]",
		Short: "Show or set the view mode the editor starts in.",
		Long: heredoc.Doc(`
			Shows or changes the persisted view mode. The editor starts in this
			mode and updates it whenever the mode is toggled. Without an
			argument an interactive selection is shown when running in a
			terminal; otherwise the current mode is printed.
		`),
		Example:   "mdw mode edit",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: choices,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, s, args, prompt.IsInteractive())
		},
	}

	return cmd
}

func run(cmd *cobra.Command, s *state.State, args []string, interactive bool) error {
	current := document.ParseViewMode(s.Config.ViewMode)

	var choice string
	switch {
	case len(args) == 1:
		choice = args[0]
	case interactive:
		selected, err := prompt.Select(
			fmt.Sprintf("Select the default view mode (currently %s).", current),
			choices,
		)
		if err != nil {
			if document.IsCancelled(err) {
				return nil
			}
			return err
		}
		choice = selected
	default:
		fmt.Fprintln(cmd.OutOrStdout(), current)
		return nil
	}

	mode := document.ViewMode(strings.ToLower(strings.TrimSpace(choice)))
	if !mode.Valid() {
		return fmt.Errorf("invalid view mode: %q. Please choose from 'edit' or 'render'", choice)
	}

	if err := s.Config.SetViewMode(mode); err != nil {
		return err
	}

	cmd.Printf("View mode set to %s\n", mode)
	return nil
}
