package document

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies failures surfaced to the user.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindPermissionDenied
	KindIOError
	KindRenderError
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPermissionDenied:
		return "permission_denied"
	case KindIOError:
		return "io_error"
	case KindRenderError:
		return "render_error"
	default:
		return "unknown"
	}
}

// ErrCancelled is returned by dialogs when the user backs out. It is a normal
// early exit, not a failure.
var ErrCancelled = errors.New("cancelled by user")

type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap classifies err and attaches the operation and path. A nil err stays nil.
func Wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var derr *Error
	if errors.As(err, &derr) {
		return err
	}
	return &Error{Kind: classify(err), Op: op, Path: path, Err: err}
}

// KindOf reports the Kind of err, falling back to filesystem sentinels when
// err is not a *Error.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return classify(err)
}

func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermissionDenied
	default:
		return KindIOError
	}
}
