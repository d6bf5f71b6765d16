package render

import (
	"fmt"
	"net/http"
)

// HelperError reports a helper that panicked while it was evaluated.
type HelperError struct {
	Helper string
	Err    error
}

func (e *HelperError) Error() string {
	return fmt.Sprintf("evaluate helper %q: %v", e.Helper, e.Err)
}

func (e *HelperError) Unwrap() error { return e.Err }

// injectHelpers merges the configured helpers into ctx, evaluating request
// helpers against r and w, and sets "request" when the caller left it empty.
// Helpers take precedence over caller data of the same name.
func (p *Pipeline) injectHelpers(ctx Context, r *http.Request, w http.ResponseWriter) (err error) {
	var current string
	defer func() {
		if rec := recover(); rec != nil {
			err = &HelperError{Helper: current, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	for name, helper := range p.settings.helpers {
		current = name
		switch fn := helper.(type) {
		case HelperFunc:
			ctx[name] = fn(r, w)
		case func(*http.Request, http.ResponseWriter) any:
			ctx[name] = fn(r, w)
		default:
			ctx[name] = helper
		}
	}
	if ctx["request"] == nil && r != nil {
		ctx["request"] = r
	}
	return nil
}
