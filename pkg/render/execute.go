package render

import (
	"bytes"
	"fmt"
)

// ExecError reports a failure raised while executing a compiled view.
type ExecError struct {
	View string
	Err  error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("execute view %q: %v", e.View, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// execute runs r against ctx. The context's "scope" entry is handed to the
// renderer as its scope. Output is buffered so a failed execution never
// yields partial text, and panics are returned as errors.
func execute(view string, r Renderer, ctx Context) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, err = "", &ExecError{View: view, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	var buf bytes.Buffer
	if err := r.Execute(&buf, ctx, ctx["scope"]); err != nil {
		return "", &ExecError{View: view, Err: err}
	}
	return buf.String(), nil
}
