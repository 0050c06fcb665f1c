package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
)

const defaultReadTimeout = 5 * time.Second

type Server struct {
	mu           sync.Mutex
	public       *http.Server
	shutdown     bool
	publicRouter *chi.Mux
	routes       sync.Once

	handler      *Handler
	writeTimeout time.Duration
}

// New builds the public server. writeTimeout must leave room for a synchronous
// dispatch, which can take up to the destination deadline.
func New(handler *Handler, writeTimeout time.Duration) *Server {
	return &Server{
		publicRouter: chi.NewRouter(),

		handler:      handler,
		writeTimeout: writeTimeout,
	}
}

func (s *Server) ServePublic(addr string, mws ...func(http.Handler) http.Handler) error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return http.ErrServerClosed
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(mws...),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: s.writeTimeout,
	}
	s.public = srv
	s.mu.Unlock()

	return srv.ListenAndServe()
}

// ShutdownPublic stops the public server. A later ServePublic call returns
// http.ErrServerClosed.
func (s *Server) ShutdownPublic(ctx context.Context) error {
	s.mu.Lock()
	s.shutdown = true
	srv := s.public
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return srv.Close()
	}
	return nil
}

// Router registers the public routes on first use and returns the router.
func (s *Server) Router(mws ...func(http.Handler) http.Handler) http.Handler {
	s.routes.Do(func() {
		s.registerPublicRoutes(mws...)
	})
	return s.publicRouter
}

func (s *Server) registerPublicRoutes(middlewares ...func(http.Handler) http.Handler) {
	s.publicRouter.Use(requestID)
	s.publicRouter.Use(cors()...)
	s.publicRouter.Use(middlewares...)

	s.publicRouter.MethodNotAllowed(s.handler.MethodNotAllowed)
	s.publicRouter.Get("/_/ready", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	// events are accepted on any path, like the browser snippets expect
	for _, path := range []string{"/", "/v1/event", "/*"} {
		s.publicRouter.Post(path, s.handler.Event)
		s.publicRouter.Options(path, s.handler.Preflight)
	}
}
