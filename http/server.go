package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/sitechat"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// ShutdownTimeout is the time given for outstanding requests to finish
// before the server is forcibly closed.
const ShutdownTimeout = 5 * time.Second

// maxRequestBytes limits the size of a request body.
const maxRequestBytes = 1 << 20

// corsMaxAge is how long browsers may cache a preflight response.
const corsMaxAge = 12 * time.Hour

// DefaultCORSOrigins are the origins of a web front end on its usual
// development port.
var DefaultCORSOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

// Server serves the question-answering JSON API.
type Server struct {
	ln     net.Listener
	server *http.Server
	router *chi.Mux

	// Addr is the bind address, e.g. ":8000".
	Addr string

	Asker  sitechat.Asker
	Logger *slog.Logger

	corsOrigins []string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithCORSOrigins sets the browser origins allowed to call the API with
// credentials. No origins disables cross-origin access.
func WithCORSOrigins(origins ...string) ServerOption {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// NewServer returns a Server with its routes registered. Cross-origin
// requests are accepted from DefaultCORSOrigins unless WithCORSOrigins says
// otherwise.
func NewServer(asker sitechat.Asker, logger *slog.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router:      chi.NewRouter(),
		Asker:       asker,
		Logger:      logger,
		corsOrigins: DefaultCORSOrigins,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Preflight requests are answered before routing.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           int(corsMaxAge.Seconds()),
	}))
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/source_info", s.handleSourceInfo)
	s.router.Post("/ask", s.handleAsk)

	return s
}

// ServeHTTP dispatches the request to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Open binds Addr and begins serving in the background.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}

	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("server stopped", "error", err)
		}
	}()

	return nil
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleSourceInfo(w http.ResponseWriter, r *http.Request) {
	pages, err := s.Asker.SourceInfo(r.Context())
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pages)
}

// askRequest is the body of POST /ask.
type askRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		s.Error(w, r, sitechat.Errorf(sitechat.EINVALID, "Invalid JSON body"))
		return
	}

	result, err := s.Asker.Ask(r.Context(), req.Question)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// Error writes err as a JSON error response with a status derived from its
// code. Internal errors are logged; their details are not sent to the client.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	code, message := sitechat.ErrorCode(err), sitechat.ErrorMessage(err)
	if code == sitechat.EINTERNAL {
		s.Logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	s.writeJSON(w, ErrorStatusCode(code), errorResponse{Error: message})
}

// ErrorStatusCode maps an application error code to an HTTP status code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

var codes = map[string]int{
	sitechat.EINVALID:  http.StatusBadRequest,
	sitechat.ENOTFOUND: http.StatusNotFound,
	sitechat.ECONFLICT: http.StatusConflict,
	sitechat.ENOTREADY: http.StatusServiceUnavailable,
	sitechat.EBACKEND:  http.StatusBadGateway,
	sitechat.ETIMEOUT:  http.StatusGatewayTimeout,
	sitechat.EINTERNAL: http.StatusInternalServerError,
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("encoding response", "error", err)
	}
}

// logRequests logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.Logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
