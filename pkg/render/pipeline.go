package render

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/tdewolff/minify/v2"
)

// ErrViewNotFound is returned when a view or layout file does not exist under the root.
var ErrViewNotFound = errors.New("view not found")

// Option customizes a Pipeline beyond what Config covers.
type Option func(*Pipeline)

// WithFS serves views from fsys instead of the Root directory.
func WithFS(fsys fs.FS) Option {
	return func(p *Pipeline) {
		p.fsys = fsys
	}
}

// WithEngine replaces the engine selected by Config.Engine.
func WithEngine(e Engine) Option {
	return func(p *Pipeline) {
		p.engine = e
	}
}

// WithObserver reports every finished render to o.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// WithErrorHandler sets the continuation that receives failed renders.
func WithErrorHandler(h ErrorHandler) Option {
	return func(p *Pipeline) {
		p.onError = h
	}
}

// Pipeline renders views. It owns its settings and its template cache; all
// methods are safe for concurrent use.
type Pipeline struct {
	logger    *slog.Logger
	settings  Settings
	fsys      fs.FS
	engine    Engine
	cache     *templateCache
	partialRE *regexp.Regexp
	observer  Observer
	onError   ErrorHandler
	minifier  *minify.M
}

// New creates a Pipeline from config. Views are read from config.Root unless
// WithFS is given.
func New(logger *slog.Logger, config Config, opts ...Option) (*Pipeline, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Pipeline{
		logger:   logger,
		settings: newSettings(config),
		cache:    newTemplateCache(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	if p.fsys == nil {
		p.fsys = os.DirFS(p.settings.Root)
	}
	if p.engine == nil {
		engine, err := newEngine(p.settings, p.fsys)
		if err != nil {
			return nil, fmt.Errorf("failed to create render pipeline: %w", err)
		}
		p.engine = engine
	}
	p.partialRE = partialPattern(p.engine.Delims())
	if p.onError == nil {
		p.onError = p.defaultErrorHandler
	}
	if p.settings.Minify {
		p.minifier = newMinifier()
	}

	if _, err := fs.Stat(p.fsys, "."); err != nil {
		logger.Warn("View root is not readable", "root", p.settings.Root, "error", err)
	}
	logger.Info("Render pipeline initialized",
		"root", p.settings.Root,
		"engine", p.engine.Name(),
		"cache", p.settings.Cache,
		"layout", p.settings.Layout,
		"helpers", len(p.settings.helpers))
	return p, nil
}

// Settings returns the settings the pipeline was built with.
func (p *Pipeline) Settings() Settings {
	return p.settings
}

// CachedViews returns the number of compiled views held in the cache.
func (p *Pipeline) CachedViews() int {
	return p.cache.size()
}

// compiled returns the renderer for view, reading, expanding and compiling
// the view file when it is not cached. Renderers are cached under the
// canonical identifier.
func (p *Pipeline) compiled(view string) (Renderer, error) {
	view = cleanView(view)
	if p.settings.Cache {
		if r, ok := p.cache.get(view); ok {
			return r, nil
		}
	}

	raw, err := p.readView(view)
	if err != nil {
		return nil, fmt.Errorf("read view %q: %w", view, err)
	}
	r, err := p.engine.Compile(view, p.expandPartials(raw, []string{view}))
	if err != nil {
		return nil, fmt.Errorf("compile view %q: %w", view, err)
	}

	if p.settings.Cache {
		p.cache.put(view, r)
	}
	p.logger.Debug("Compiled view", "view", view, "cached", p.settings.Cache)
	return r, nil
}

// renderView compiles (or fetches) view and executes it against ctx.
func (p *Pipeline) renderView(view string, ctx Context) (string, error) {
	r, err := p.compiled(view)
	if err != nil {
		return "", err
	}
	return execute(view, r, ctx)
}

func (p *Pipeline) viewPath(view string) string {
	return filepath.Join(p.settings.Root, filepath.FromSlash(view))
}
