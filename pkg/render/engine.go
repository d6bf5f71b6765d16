package render

import (
	"fmt"
	"io"
	"io/fs"
	"maps"
)

// Supported engine names.
const (
	EngineHTML   = "html"
	EnginePongo2 = "pongo2"
)

// Context is the data a view is executed against.
type Context map[string]any

// Delims describes how an engine marks actions in template text.
type Delims struct {
	Open  string
	Close string
	// Modifiers lists the characters an engine accepts right after Open or right before Close.
	Modifiers string
}

// Renderer is a compiled view.
type Renderer interface {
	// Execute writes the output of the view for data. scope, when non-nil, is
	// exposed to the template as "self".
	Execute(w io.Writer, data Context, scope any) error
}

// Engine compiles template text into a Renderer.
type Engine interface {
	Name() string
	Delims() Delims
	// Compile parses text. name is only used in diagnostics.
	Compile(name, text string) (Renderer, error)
	// Trusted marks already rendered output so that embedding it in another
	// view does not escape it again.
	Trusted(s string) any
}

// newEngine builds the engine named in settings. fsys backs engines with
// their own include mechanism.
func newEngine(s Settings, fsys fs.FS) (Engine, error) {
	switch s.Engine {
	case EngineHTML:
		return newHTMLEngine(s.open, s.close, builtinFuncs()), nil
	case EnginePongo2:
		return newPongoEngine(fsys)
	default:
		return nil, fmt.Errorf("unknown template engine %q", s.Engine)
	}
}

// withScope returns data extended with scope under "self". data itself is left untouched.
func withScope(data Context, scope any) Context {
	if scope == nil {
		return data
	}
	out := maps.Clone(data)
	if out == nil {
		out = Context{}
	}
	out["self"] = scope
	return out
}
