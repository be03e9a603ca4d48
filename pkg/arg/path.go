package arg

import (
	"errors"

	"github.com/Paintersrp/mdw/internal/pathutil"
)

// HandlePath resolves the single file argument of a command, accepting
// plain paths and file:// URLs.
func HandlePath(args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("error: No file given. Try again")
	}
	return pathutil.ArgToPath(args[0])
}
