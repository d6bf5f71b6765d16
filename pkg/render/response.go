package render

import (
	"context"
	"errors"
	"net/http"
	"strconv"
)

// ErrorHandler receives renders that failed. It is called at most once per
// render and nothing has been written to w when it runs.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Render composes view and sends it. Content-Length is set from the composed
// body. On failure the pipeline's ErrorHandler gets the error and no body is
// written by Render.
func (p *Pipeline) Render(w http.ResponseWriter, r *http.Request, view string, data Context) {
	body, err := p.Compose(w, r, view, data)
	if err != nil {
		p.onError(w, r, err)
		return
	}
	p.send(w, body)
}

func (p *Pipeline) send(w http.ResponseWriter, body []byte) {
	h := w.Header()
	if h.Get("Content-Type") == "" && p.settings.ContentType != "" {
		h.Set("Content-Type", p.settings.ContentType)
	}
	h.Set("Content-Length", strconv.Itoa(len(body)))
	if _, err := w.Write(body); err != nil {
		p.logger.Debug("Failed to write rendered view", "error", err)
	}
}

func (p *Pipeline) defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ErrViewNotFound) {
		status = http.StatusNotFound
	}
	p.logger.Error("Failed to render view", "path", r.URL.Path, "status", status, "error", err)
	http.Error(w, http.StatusText(status), status)
}

type responseKey struct{}

// Response binds a pipeline to one request.
type Response struct {
	p *Pipeline
	w http.ResponseWriter
	r *http.Request
}

// Render composes view with data and sends it, see Pipeline.Render.
func (res *Response) Render(view string, data Context) {
	res.p.Render(res.w, res.r, view, data)
}

// Middleware makes a Response available to next through FromRequest.
func (p *Pipeline) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := &Response{p: p, w: w}
		r = r.WithContext(context.WithValue(r.Context(), responseKey{}, res))
		res.r = r
		next.ServeHTTP(w, r)
	})
}

// FromRequest returns the Response attached by Middleware, or nil.
func FromRequest(r *http.Request) *Response {
	res, _ := r.Context().Value(responseKey{}).(*Response)
	return res
}
