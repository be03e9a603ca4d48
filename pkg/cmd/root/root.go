package root

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Paintersrp/mdw/internal/constants"
	"github.com/Paintersrp/mdw/internal/pathutil"
	"github.com/Paintersrp/mdw/internal/state"
	"github.com/Paintersrp/mdw/pkg/cmd/mode"
	"github.com/Paintersrp/mdw/pkg/cmd/open"
	"github.com/Paintersrp/mdw/pkg/cmd/render"
	"github.com/Paintersrp/mdw/pkg/cmd/version"
	"github.com/Paintersrp/mdw/pkg/cmd/watch"
	"github.com/Paintersrp/mdw/pkg/flags"
)

func NewCmdRoot(s *state.State) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     "mdw [file]",
		Short:   "Edit markdown with a live preview that follows the file on disk.",
		Version: constants.Version,
		Long: heredoc.Doc(`
			A terminal markdown editor with a rendered preview. The open file is
			watched, so changes made by other programs are picked up: a clean
			buffer reloads on its own and unsaved edits are never thrown away
			without asking.

			The first markdown path or file:// URL among the arguments is opened.
		`),
		Example: heredoc.Doc(`
			mdw notes/todo.md
			mdw --mode edit --serve notes/todo.md
		`),
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			s.SetVerbose(viper.GetBool("verbose"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return open.Launch(cmd, s, pathutil.ExtractMarkdownPath(args))
		},
	}

	flags.AddVerbose(cmd)
	flags.AddMode(cmd)
	flags.AddServe(cmd)

	cmd.AddCommand(
		open.NewCmdOpen(s),
		render.NewCmdRender(s),
		mode.NewCmdMode(s),
		watch.NewCmdWatch(s),
		version.NewCmdVersion(),
	)

	return cmd, nil
}
