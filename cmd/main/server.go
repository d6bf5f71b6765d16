package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/CTAG07/Verbena/pkg/render"
	"github.com/CTAG07/Verbena/pkg/stats"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// errorView is rendered without a layout when a page fails to render.
const errorView = "error.html"

type Server struct {
	config    *Config
	db        *sql.DB
	logger    *slog.Logger
	pipeline  *render.Pipeline
	stats     *stats.Store
	authAPI   *AuthAPI
	statsAPI  *StatsAPI
	serverAPI *ServerAPI
	siteMux   *http.ServeMux
	apiMux    *http.ServeMux
}

func NewServer(config *Config, logger *slog.Logger, db *sql.DB, actionChan chan string, opts ...render.Option) (*Server, error) {
	store := stats.NewStore(db, logger)

	server := &Server{
		config:  config,
		db:      db,
		logger:  logger,
		stats:   store,
		siteMux: http.NewServeMux(),
		apiMux:  http.NewServeMux(),
	}

	rc := config.Render
	rc.Helpers = siteHelpers(config.Server.Site)
	opts = append([]render.Option{
		render.WithObserver(store),
		render.WithErrorHandler(server.handleRenderError),
	}, opts...)
	pipeline, err := render.New(logger, rc, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create render pipeline: %w", err)
	}
	server.pipeline = pipeline

	// api initialization
	server.authAPI = NewAuthAPI(config.Server.ApiToken, logger)
	server.statsAPI = NewStatsAPI(store, pipeline, logger)
	server.serverAPI = NewServerAPI(actionChan, logger)

	apiMux := http.NewServeMux()
	server.statsAPI.RegisterRoutes(apiMux)
	server.serverAPI.RegisterRoutes(apiMux)

	// Make sure api functions must pass through authentication first
	authedAPI := server.authAPI.Authenticate(apiMux)
	// ... except for the health check, which is unauthed so something like docker can use it
	server.apiMux.HandleFunc("/api/health", server.serverAPI.handleHealthCheck)
	server.apiMux.Handle("/api/", authedAPI)

	server.siteMux.HandleFunc("/favicon.ico", handleFavicon)
	server.siteMux.Handle("/", pipeline.Middleware(http.HandlerFunc(server.handleSite)))

	return server, nil
}

// SiteHandler returns the handler for the public site, wrapped for h2c when enabled.
func (s *Server) SiteHandler() http.Handler {
	if s.config.Server.EnableH2C {
		return h2c.NewHandler(s.siteMux, &http2.Server{})
	}
	return s.siteMux
}

// siteHelpers returns the helpers every view gets: the static site values
// plus the request path and the current year.
func siteHelpers(site map[string]string) map[string]any {
	return map[string]any{
		"site": maps.Clone(site),
		"path": render.HelperFunc(func(r *http.Request, _ http.ResponseWriter) any {
			if r == nil {
				return ""
			}
			return r.URL.Path
		}),
		"year": func(*http.Request, http.ResponseWriter) any {
			return time.Now().Year()
		},
	}
}

// viewForPath maps a request path to a view: "/" is index.html, "/about" is
// about.html and "/docs/" is docs/index.html.
func viewForPath(urlPath string) (string, bool) {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		return "index.html", true
	}
	if strings.HasSuffix(urlPath, "/") {
		name += "/index.html"
	} else if path.Ext(name) == "" {
		name += ".html"
	}
	if !fs.ValidPath(name) || name == errorView {
		return "", false
	}
	return name, true
}

func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	view, ok := viewForPath(r.URL.Path)
	if !ok {
		s.handleRenderError(w, r, render.ErrViewNotFound)
		return
	}
	s.logger.Debug("Serving page", "view", view, "remote_addr", r.RemoteAddr)
	render.FromRequest(r).Render(view, render.Context{"title": strings.TrimSuffix(path.Base(view), ".html")})
}

// handleRenderError serves the error view for a failed render, falling back to
// a plain text error when the error view itself cannot be rendered.
func (s *Server) handleRenderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, render.ErrViewNotFound) {
		status = http.StatusNotFound
		s.logger.Debug("View not found", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Error("Failed to render page", "path", r.URL.Path, "error", err)
	}

	body, perr := s.pipeline.Compose(w, r, errorView, render.Context{
		"layout":      false,
		"status":      status,
		"status_text": http.StatusText(status),
	})
	if perr != nil {
		s.logger.Warn("Failed to render error page", "error", perr)
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// handleFavicon makes sure favicon requests don't show up in the render stats.
func handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
