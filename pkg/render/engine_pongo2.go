package render

import (
	"io"
	"io/fs"
	"sync"

	"github.com/flosch/pongo2/v6"
)

type pongoEngine struct {
	set *pongo2.TemplateSet
}

// newPongoEngine creates a pongo2 template set whose {% include %} and
// {% extends %} tags load from fsys.
func newPongoEngine(fsys fs.FS) (*pongoEngine, error) {
	registerPongoFilters()
	return &pongoEngine{
		set: pongo2.NewSet("verbena", pongo2.NewFSLoader(fsys)),
	}, nil
}

func (e *pongoEngine) Name() string { return EnginePongo2 }

func (e *pongoEngine) Delims() Delims {
	return Delims{Open: "{{", Close: "}}", Modifiers: "-"}
}

func (e *pongoEngine) Compile(_, text string) (Renderer, error) {
	tpl, err := e.set.FromString(text)
	if err != nil {
		return nil, err
	}
	return pongoRenderer{tpl: tpl}, nil
}

// Trusted marks s as safe so autoescaping leaves it alone.
func (e *pongoEngine) Trusted(s string) any { return pongo2.AsSafeValue(s) }

type pongoRenderer struct {
	tpl *pongo2.Template
}

func (r pongoRenderer) Execute(w io.Writer, data Context, scope any) error {
	return r.tpl.ExecuteWriter(pongo2.Context(withScope(data, scope)), w)
}

// pongo2 keeps filters in a package-level registry.
var registerFiltersOnce sync.Once

func registerPongoFilters() {
	registerFiltersOnce.Do(func() {
		if !pongo2.FilterExists("sanitize") {
			_ = pongo2.RegisterFilter("sanitize", filterSanitize)
		}
	})
}

func filterSanitize(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(sanitizePolicy.Sanitize(in.String())), nil
}
