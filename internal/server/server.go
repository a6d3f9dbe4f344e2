// Package server wires the blog views, the island registry and the HTTP
// middleware into a chi router.
package server

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pthm/hxblog"
	"github.com/pthm/hxblog/components"
	"github.com/pthm/hxblog/internal/config"
	"github.com/pthm/hxblog/internal/logger"
	"github.com/pthm/hxblog/internal/middleware"
	"github.com/pthm/hxblog/lib/cms"
	"github.com/pthm/hxblog/lib/csrf"
	"github.com/pthm/hxblog/lib/encoding"
	"github.com/pthm/hxblog/lib/graphql"
)

const serviceName = "hxblog"

// Server serves blog pages and island requests.
type Server struct {
	cfg      *config.Config
	log      *slog.Logger
	repo     cms.Repository
	views    *cms.Views
	reg      *hxblog.Registry
	site     *components.Site
	resolver *csrf.Resolver
	router   chi.Router

	httpServer *http.Server
}

// New builds the server. Without a configured props key a random one is
// generated, which invalidates island URLs and sessions on restart.
func New(cfg *config.Config, repo cms.Repository, client *graphql.Client, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}

	propsKey := cfg.PropsKeyBytes()
	if propsKey == nil {
		log.Warn("PROPS_KEY not set, using an ephemeral key")
		propsKey = []byte(rand.Text())
	}
	reg, err := hxblog.NewRegistry(propsKey, hxblog.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("create registry: %w", err)
	}

	sessionKey := cfg.SessionKeyBytes()
	if sessionKey == nil {
		sessionKey = propsKey
	}
	sessions, err := encoding.NewEncoder(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("create session encoder: %w", err)
	}

	views := cms.NewViews()
	s := &Server{
		cfg:      cfg,
		log:      log,
		repo:     repo,
		views:    views,
		reg:      reg,
		site:     components.Init(components.Deps{Client: client, Logger: log}, reg, views),
		resolver: csrf.NewResolver(csrf.WithLogger(log)),
	}
	s.router = s.routes(sessions)
	return s, nil
}

func (s *Server) routes(sessions *encoding.Encoder) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(s.log))
	r.Use(middleware.Recovery(s.log))
	r.Use(middleware.PrometheusMetrics(serviceName))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/_c/*", s.reg.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Sessions(sessions, s.cfg.CSRFToken))
		r.Get("/", s.handleBlog(cms.DefaultView))
		r.Get("/cards", s.handleBlog(components.ViewCards))
		r.Get("/posts/{id}", s.handleNode(cms.TypePost, components.ViewFullPage))
		r.Get("/authors/{id}", s.handleNode(cms.TypeAuthor, cms.DefaultView))
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Registry returns the island registry.
func (s *Server) Registry() *hxblog.Registry { return s.reg }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.repo.Root(r.Context()); err != nil {
		http.Error(w, "content unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleBlog(view string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		root, err := s.repo.Root(r.Context())
		if err != nil {
			s.notFound(w, r, err)
			return
		}
		s.render(w, r, root, view)
	}
}

// handleNode renders the node named by the id URL parameter. The view query
// parameter overrides view.
func (s *Server) handleNode(nodeType, view string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		node, err := s.repo.Node(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			s.notFound(w, r, err)
			return
		}
		if node.Type != nodeType {
			s.notFound(w, r, fmt.Errorf("%w: %s is %s", cms.ErrNodeNotFound, node.ID, node.Type))
			return
		}
		name := view
		if v := r.URL.Query().Get("view"); v != "" {
			name = v
		}
		s.render(w, r, node, name)
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.Is(err, cms.ErrNodeNotFound) {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "content lookup failed",
			slog.String("error", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.NotFound(w, r)
}

// render resolves the CSRF token once for the page, then renders node inside
// the document layout.
func (s *Server) render(w http.ResponseWriter, r *http.Request, node *cms.Node, view string) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	rc := cms.NewRenderContext(r, s.views, log, s.cfg.DefaultLocale)
	token, ok := s.resolver.Resolve(rc)
	if !ok {
		rc.Logger().WarnContext(ctx, "no CSRF token found in request or session attributes",
			slog.String("path", r.URL.Path),
		)
	}
	rc.CSRFToken = token

	title := node.Title(rc.T("blog.untitled", "Untitled"))
	page := components.Page(title, rc.Locale, token, s.views.Render(node, view, rc))

	var buf bytes.Buffer
	if err := page.Render(ctx, &buf); err != nil {
		log.ErrorContext(ctx, "page render failed",
			slog.String("node", node.ID),
			slog.String("view", view),
			slog.String("error", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// Run starts the HTTP server and blocks until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server",
			slog.String("addr", s.cfg.HTTPAddr),
			slog.Any("islands", s.reg.Prefixes()),
		)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}
	return s.Shutdown()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown() error {
	if s.httpServer == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}
