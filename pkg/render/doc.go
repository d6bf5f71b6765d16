/*
Package render implements a server-side view rendering pipeline on top of a
single template engine.

A render call resolves a view identifier to a file under the configured root,
statically inlines every partial('name') directive found in it, compiles the
expanded text once (the compiled renderer is cached per view), executes it
against a per-request context and finally wraps the output in a layout view
that receives it as "body".

	p, err := render.New(logger, render.DefaultConfig())
	if err != nil {
		// handle error
	}
	mux.Handle("/", p.Middleware(handler))

	// inside handler
	render.FromRequest(r).Render("index.html", render.Context{"title": "Home"})

Partials are plain text inclusion performed before compilation, so the syntax
of a partial only has to be valid once it is placed into its includer.
*/
package render
