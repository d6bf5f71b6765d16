package render

import (
	"maps"
	"net/http"
	"slices"
	"strings"
)

// HelperFunc computes a helper value for a single request. It is called once
// per top-level render, before the view is executed.
type HelperFunc func(r *http.Request, w http.ResponseWriter) any

// Config holds all configuration options for the rendering pipeline.
type Config struct {
	// Root is the directory view identifiers are resolved against.
	Root string `json:"root" yaml:"root"`

	// Cache controls whether compiled views are kept for the lifetime of the pipeline.
	// It must be enabled in production, otherwise every render reads and compiles the view.
	Cache bool `json:"cache" yaml:"cache"`

	// Layout is the view wrapped around every rendered view. An empty string disables layouts.
	Layout string `json:"layout" yaml:"layout"`

	// Engine selects the template engine: "html" (html/template) or "pongo2".
	Engine string `json:"engine" yaml:"engine"`

	// Delims overrides the action delimiters of the html engine, e.g. ["[[", "]]"].
	Delims []string `json:"delims" yaml:"delims"`

	// Minify runs the final HTML through an HTML minifier before it is sent.
	Minify bool `json:"minify" yaml:"minify"`

	// ContentType is set on responses that don't carry a Content-Type yet.
	ContentType string `json:"content_type" yaml:"content_type"`

	// Helpers are merged into every render context. A value is either static or a HelperFunc.
	Helpers map[string]any `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with the default values.
func DefaultConfig() Config {
	return Config{
		Root:        "./views",
		Cache:       true,
		Layout:      "layout.html",
		Engine:      EngineHTML,
		Delims:      []string{"{{", "}}"},
		Minify:      false,
		ContentType: "text/html; charset=utf-8",
	}
}

// Settings is the read-only view of a Config owned by a Pipeline.
type Settings struct {
	Root        string
	Cache       bool
	Layout      string
	Engine      string
	Minify      bool
	ContentType string

	open, close string
	helpers     map[string]any
}

func newSettings(c Config) Settings {
	s := Settings{
		Root:        c.Root,
		Cache:       c.Cache,
		Layout:      strings.TrimSpace(c.Layout),
		Engine:      strings.ToLower(strings.TrimSpace(c.Engine)),
		Minify:      c.Minify,
		ContentType: c.ContentType,
		open:        "{{",
		close:       "}}",
		helpers:     maps.Clone(c.Helpers),
	}
	if s.Engine == "" {
		s.Engine = EngineHTML
	}
	if len(c.Delims) == 2 && c.Delims[0] != "" && c.Delims[1] != "" {
		s.open, s.close = c.Delims[0], c.Delims[1]
	}
	return s
}

// HelperNames returns the sorted names of the configured helpers.
func (s Settings) HelperNames() []string {
	return slices.Sorted(maps.Keys(s.helpers))
}
