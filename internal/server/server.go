// Package server exposes inpainting and background effects over HTTP.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"magic-eraser/internal/background"
	"magic-eraser/internal/inpaint"
	"magic-eraser/internal/version"
)

// maxUploadBytes bounds multipart request bodies.
const maxUploadBytes = 64 << 20

// ErrUpstreamNotAllowed is returned when a request names an IOPaint server
// that is not on the allow-list.
var ErrUpstreamNotAllowed = errors.New("iopaint server not allowed")

// Server handles the HTTP API.
type Server struct {
	client    *inpaint.Client
	inpainter inpaint.Inpainter
	allowed   []string
	log       *logrus.Entry
}

// Option customizes a Server.
type Option func(*Server)

// WithInpainter replaces the inpainter used for requests that do not name
// their own server, such as a cached one.
func WithInpainter(inp inpaint.Inpainter) Option {
	return func(s *Server) { s.inpainter = inp }
}

// WithAllowedUpstreams lets requests name one of urls in their baseUrl
// field. Without it, any baseUrl other than the configured server is
// rejected.
func WithAllowedUpstreams(urls ...string) Option {
	return func(s *Server) {
		for _, u := range urls {
			s.allowed = append(s.allowed, strings.TrimRight(u, "/"))
		}
	}
}

// New creates a Server forwarding to client.
func New(client *inpaint.Client, opts ...Option) *Server {
	s := &Server{
		client:    client,
		inpainter: client,
		log:       logrus.WithField("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Origin", "X-Requested-With"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/inpaint", s.handleInpaint)
		r.Route("/background", func(r chi.Router) {
			r.Post("/remove", s.handleRemoveBackground)
			r.Post("/blur", s.handleBlurBackground)
			r.Post("/replace", s.handleReplaceBackground)
		})
	})
	return r
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	IOPaint   string `json:"iopaint"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:    "ok",
		Version:   version.Version,
		GitCommit: version.GitCommit,
		IOPaint:   s.client.BaseURL(),
	})
}

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
		s.log.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Success: false, Error: err.Error()})
}

// upstream returns the client for the server named by the request's
// baseUrl field, or nil when the request uses the configured server.
func (s *Server) upstream(r *http.Request) (*inpaint.Client, error) {
	baseURL := strings.TrimRight(r.FormValue("baseUrl"), "/")
	if baseURL == "" || baseURL == s.client.BaseURL() {
		return nil, nil
	}
	log := s.log.WithFields(logrus.Fields{"iopaint": baseURL, "remote": r.RemoteAddr})
	if !slices.Contains(s.allowed, baseURL) {
		log.Warn("Rejected request for unlisted IOPaint server")
		return nil, fmt.Errorf("%w: %s", ErrUpstreamNotAllowed, baseURL)
	}
	log.Warn("Forwarding request to alternate IOPaint server")
	return s.client.WithBaseURL(baseURL), nil
}

func (s *Server) effects(r *http.Request) (*background.Effects, error) {
	c, err := s.upstream(r)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = s.client
	}
	return background.New(c), nil
}
