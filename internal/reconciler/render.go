package reconciler

import (
	"fmt"

	"github.com/Paintersrp/mdw/internal/document"
	"github.com/Paintersrp/mdw/internal/render"
)

// safeRender runs the renderer and turns a panic into a render_error.
func safeRender(renderer Renderer, markdown string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = ""
			err = &document.Error{
				Kind: document.KindRenderError,
				Op:   "render",
				Err:  fmt.Errorf("renderer panic: %v", rec),
			}
		}
	}()

	out, err = renderer.Render(markdown)
	if err != nil {
		return "", asRenderError(err)
	}
	return out, nil
}

func asRenderError(err error) error {
	if document.KindOf(err) == document.KindRenderError {
		return err
	}
	return &document.Error{Kind: document.KindRenderError, Op: "render", Err: err}
}

func errorHTML(err error) string {
	return render.ErrorHTML(err)
}
