package watch

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/mdw/internal/document"
	"github.com/Paintersrp/mdw/internal/state"
	docwatch "github.com/Paintersrp/mdw/internal/watch"
	"github.com/Paintersrp/mdw/pkg/arg"
)

func NewCmdWatch(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Print the debounced change events the editor would see for a file.",
		Long: heredoc.Doc(`
			Watches a single file the same way the editor watches the open
			document and prints one line per debounced change until interrupted.
			Useful for checking how an external tool's saves are observed.
		`),
		Example: "mdw watch notes/todo.md",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := arg.HandlePath(args)
			if err != nil {
				return err
			}
			return run(cmd, s, path)
		},
	}

	return cmd
}

func run(cmd *cobra.Command, s *state.State, path string) error {
	if _, err := os.Stat(path); err != nil {
		return document.Wrap("watch", path, err)
	}

	out := &eventPrinter{w: cmd.OutOrStdout()}
	controller := s.NewWatchController(out.print)
	controller.Watch(path)
	defer controller.Stop()

	if !controller.Active() {
		return fmt.Errorf("could not watch %s, see the log for details", path)
	}

	cmd.PrintErrf("Watching %s, press ctrl+c to stop.\n", path)
	<-cmd.Context().Done()
	return nil
}

type eventPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *eventPrinter) print(ev docwatch.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s %s\n", ev.ObservedAt.Format(time.TimeOnly), ev.Kind, ev.Path)
}
