package render

import (
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/mdw/internal/document"
	"github.com/Paintersrp/mdw/internal/pathutil"
	"github.com/Paintersrp/mdw/internal/state"
	"github.com/Paintersrp/mdw/pkg/arg"
	"github.com/Paintersrp/mdw/pkg/shared/prompt"
)

func NewCmdRender(s *state.State) *cobra.Command {
	var output string
	var force bool

	cmd := &cobra.Command{
		Use:     "render <file>",
		Aliases: []string{"r"},
		Short:   "Render a markdown file to sanitized HTML.",
		Long: heredoc.Doc(`
			Renders a markdown file with the same pipeline as the editor preview
			and writes the sanitized HTML to stdout, or to the file given with -o.
			An existing output file is only replaced after confirmation, or
			straight away with --force.
		`),
		Example: heredoc.Doc(`
			mdw render notes/todo.md
			mdw render notes/todo.md -o todo.html --force
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := arg.HandlePath(args)
			if err != nil {
				return err
			}
			return run(cmd, s, path, output, force)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the HTML to this file instead of stdout")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite the output file without asking")

	return cmd
}

func run(cmd *cobra.Command, s *state.State, path, output string, force bool) error {
	content, err := s.Handler.Read(path)
	if err != nil {
		return err
	}

	html, err := s.HTML.Render(content)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}

	if output == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), html)
		return err
	}

	dest, err := pathutil.ArgToPath(output)
	if err != nil {
		return err
	}

	if _, err := os.Stat(dest); err == nil && !force {
		ok, err := confirmOverwrite(dest)
		if err != nil {
			if document.IsCancelled(err) {
				return nil
			}
			return err
		}
		if !ok {
			cmd.Println("Aborted, nothing written.")
			return nil
		}
	}

	if err := s.Handler.Write(dest, html); err != nil {
		return err
	}

	cmd.Printf("Rendered %s to %s\n", path, dest)
	return nil
}

func confirmOverwrite(dest string) (bool, error) {
	if !prompt.IsInteractive() {
		return false, fmt.Errorf("%s already exists, use --force to overwrite it", dest)
	}
	return prompt.Confirm(fmt.Sprintf("%s already exists. Overwrite it?", dest))
}
