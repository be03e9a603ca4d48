package open

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/mdw/internal/document"
	"github.com/Paintersrp/mdw/internal/fzf"
	"github.com/Paintersrp/mdw/internal/pathutil"
	"github.com/Paintersrp/mdw/internal/state"
	"github.com/Paintersrp/mdw/internal/tui/editor"
	"github.com/Paintersrp/mdw/pkg/flags"
	"github.com/Paintersrp/mdw/pkg/shared/prompt"
)

func NewCmdOpen(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "open [file|query]",
		Aliases: []string{"o"},
		Short:   "Open a markdown file in the editor.",
		Long: heredoc.Doc(`
			Opens a markdown file in the editor. The argument may be a path or a
			file:// URL. Anything that does not name a markdown file is used as
			the starting query of a fuzzy finder over the markdown files below
			the current directory, which also runs when no argument is given.
		`),
		Example: heredoc.Doc(`
			mdw open notes/todo.md
			mdw open file:///home/me/notes/todo.md
			mdw open todo
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolve(s, args, prompt.IsInteractive())
			if err != nil {
				if document.IsCancelled(err) {
					return nil
				}
				return err
			}
			return Launch(cmd, s, path)
		},
	}

	return cmd
}

// Launch starts the editor on path, or on an empty document when path is "".
func Launch(cmd *cobra.Command, s *state.State, path string) error {
	mode, err := flags.HandleMode(cmd)
	if err != nil {
		return err
	}

	return editor.Run(cmd.Context(), s, editor.RunOptions{
		Path:      path,
		Mode:      mode,
		ServeAddr: flags.HandleServe(cmd),
	})
}

func resolve(s *state.State, args []string, interactive bool) (string, error) {
	if len(args) == 0 {
		if !interactive {
			return "", nil
		}
		return find(s, "")
	}

	if path := pathutil.ExtractMarkdownPath(args); path != "" {
		return path, nil
	}

	if !interactive {
		return "", fmt.Errorf("not a markdown file: %s", args[0])
	}
	return find(s, args[0])
}

func find(s *state.State, query string) (string, error) {
	root, err := os.Getwd()
	if err != nil {
		return "", err
	}

	finder := fzf.NewFuzzyFinder(s.Handler, s.Terminal, root, "Select file to open.")
	return finder.Run(query)
}
