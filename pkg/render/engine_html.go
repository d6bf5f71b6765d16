package render

import (
	"html/template"
	"io"
)

type htmlEngine struct {
	open, close string
	funcs       template.FuncMap
}

func newHTMLEngine(open, close string, funcs template.FuncMap) *htmlEngine {
	return &htmlEngine{open: open, close: close, funcs: funcs}
}

func (e *htmlEngine) Name() string { return EngineHTML }

func (e *htmlEngine) Delims() Delims {
	return Delims{Open: e.open, Close: e.close, Modifiers: "-"}
}

// Compile parses text as an html/template. Missing map keys are execution
// errors rather than "<no value>".
func (e *htmlEngine) Compile(name, text string) (Renderer, error) {
	t, err := template.New(name).
		Delims(e.open, e.close).
		Funcs(e.funcs).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, err
	}
	return htmlRenderer{t: t}, nil
}

func (e *htmlEngine) Trusted(s string) any { return template.HTML(s) }

type htmlRenderer struct {
	t *template.Template
}

func (r htmlRenderer) Execute(w io.Writer, data Context, scope any) error {
	return r.t.Execute(w, withScope(data, scope))
}
