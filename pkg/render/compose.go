package render

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

// RenderEvent describes one finished top-level render.
type RenderEvent struct {
	View     string
	Layout   string
	Bytes    int
	Duration time.Duration
	Err      error
}

// Observer is notified after every top-level render, successful or not.
type Observer interface {
	ObserveRender(ctx context.Context, ev RenderEvent)
}

// Compose renders view for one request and returns the final body.
//
// data is copied into a fresh context, helpers are merged into it, then the
// view is rendered. Unless layouts are disabled the layout is rendered next
// with the same context and the view output under "body". A failure in either
// stage, or a panicking helper, aborts the render; no body is returned with an
// error.
//
// The layout comes from data["layout"] when it is a string, is skipped when it
// is false or "", and otherwise falls back to Settings.Layout.
func (p *Pipeline) Compose(w http.ResponseWriter, r *http.Request, view string, data Context) ([]byte, error) {
	start := time.Now()

	ctx := make(Context, len(data)+len(p.settings.helpers)+2)
	maps.Copy(ctx, data)
	var out []byte
	layout := ""
	err := p.injectHelpers(ctx, r, w)
	if err == nil {
		layout = p.layoutFor(ctx)
		out, err = p.compose(view, layout, ctx)
	}

	if p.observer != nil {
		octx := context.Background()
		if r != nil {
			octx = r.Context()
		}
		p.observer.ObserveRender(octx, RenderEvent{
			View:     view,
			Layout:   layout,
			Bytes:    len(out),
			Duration: time.Since(start),
			Err:      err,
		})
	}
	return out, err
}

func (p *Pipeline) compose(view, layout string, ctx Context) ([]byte, error) {
	body, err := p.renderView(view, ctx)
	if err != nil {
		return nil, err
	}

	if layout != "" {
		ctx["body"] = p.engine.Trusted(body)
		if body, err = p.renderView(layout, ctx); err != nil {
			return nil, err
		}
	}

	return p.finalize(body)
}

func (p *Pipeline) layoutFor(ctx Context) string {
	switch v := ctx["layout"].(type) {
	case string:
		return strings.TrimSpace(v)
	case bool:
		if !v {
			return ""
		}
	}
	return p.settings.Layout
}

// finalize turns the composed output into the response payload.
func (p *Pipeline) finalize(s string) ([]byte, error) {
	b := []byte(s)
	if p.minifier == nil {
		return b, nil
	}
	out, err := p.minifier.Bytes("text/html", b)
	if err != nil {
		return nil, fmt.Errorf("minify output: %w", err)
	}
	return out, nil
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	return m
}
