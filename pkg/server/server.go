// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package server exposes the decision engine of one playback session to the
// player over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/pion/abrcc"
	"github.com/pion/abrcc/pkg/catalog"
	"github.com/pion/abrcc/pkg/cc"
	"github.com/pion/abrcc/pkg/schema"
	"github.com/pion/abrcc/pkg/stats"
	"github.com/pion/logging"
)

// SessionHeader carries the id of the current session. Requests may omit it;
// requests carrying another id belong to an ended session.
const SessionHeader = "X-Session-Id"

var (
	errNilCatalog     = errors.New("server requires a catalog")
	errUnknownSession = errors.New("session has ended")
)

// Request is the body of POST /request.
type Request struct {
	Stats        schema.Metrics `json:"stats"`
	PieceRequest bool           `json:"pieceRequest"`
}

// Option configures a Server.
type Option func(*Server) error

// WithConfig sets the engine configuration.
func WithConfig(config abrcc.Config) Option {
	return func(s *Server) error {
		if err := config.Validate(); err != nil {
			return err
		}
		s.config = config

		return nil
	}
}

// WithLoggerFactory sets the logger factory of the server and its engines.
func WithLoggerFactory(factory logging.LoggerFactory) Option {
	return func(s *Server) error {
		s.loggerFactory = factory

		return nil
	}
}

// WithRecorder sets the recorder observing the engine.
func WithRecorder(recorder *stats.Recorder) Option {
	return func(s *Server) error {
		s.recorder = recorder

		return nil
	}
}

// WithControllerFactory sets the constructor of the congestion controller of
// each session.
func WithControllerFactory(factory func() cc.Controller) Option {
	return func(s *Server) error {
		s.newController = factory

		return nil
	}
}

// Server feeds player telemetry to the engine of the current session and
// answers its piece requests. Ending the session starts a new one.
type Server struct {
	loggerFactory logging.LoggerFactory
	log           logging.LeveledLogger
	catalog       *catalog.Catalog
	config        abrcc.Config
	recorder      *stats.Recorder
	newController func() cc.Controller
	router        chi.Router

	lock    sync.Mutex
	session uuid.UUID
	engine  *abrcc.Engine
}

// New returns a server deciding over c.
func New(c *catalog.Catalog, opts ...Option) (*Server, error) {
	if c == nil {
		return nil, errNilCatalog
	}

	s := &Server{
		loggerFactory: logging.NewDefaultLoggerFactory(),
		catalog:       c,
		config:        abrcc.DefaultConfig(),
		newController: func() cc.Controller { return cc.NoOp{} },
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.recorder == nil {
		s.recorder = stats.NewRecorder()
	}
	s.log = s.loggerFactory.NewLogger("server")
	if err := s.reset(); err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.recorder.RequestMiddleware)
	r.Post("/request", s.handleRequest)
	r.Delete("/session/{id}", s.handleEndSession)
	r.Method(http.MethodGet, "/metrics", s.recorder.Handler())
	s.router = r

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Session returns the id of the current session.
func (s *Server) Session() uuid.UUID {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.session
}

// reset replaces the engine with a fresh one under a new session id. The
// caller holds the lock or has not shared s yet.
func (s *Server) reset() error {
	engine, err := abrcc.NewEngine(s.catalog, s.newController(),
		abrcc.WithConfig(s.config),
		abrcc.WithLoggerFactory(s.loggerFactory),
		abrcc.WithObserver(s.recorder),
	)
	if err != nil {
		return err
	}
	s.engine, s.session = engine, uuid.New()
	s.log.Infof("session %s started", s.session)

	return nil
}

func (s *Server) current(header string) (uuid.UUID, *abrcc.Engine, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if header != "" {
		id, err := uuid.Parse(header)
		if err != nil {
			return uuid.Nil, nil, err
		}
		if id != s.session {
			return id, nil, errUnknownSession
		}
	}

	return s.session, s.engine, nil
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Debugf("invalid request body: %v", err)
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	id, engine, err := s.current(r.Header.Get(SessionHeader))
	switch {
	case errors.Is(err, errUnknownSession):
		w.WriteHeader(http.StatusNotFound)

		return
	case err != nil:
		s.log.Debugf("invalid session: %v", err)
		w.WriteHeader(http.StatusBadRequest)

		return
	}
	w.Header().Set(SessionHeader, id.String())

	engine.RegisterMetrics(req.Stats)
	if !req.PieceRequest {
		w.WriteHeader(http.StatusNoContent)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(engine.Decide()); err != nil {
		s.log.Warnf("failed to write decision: %v", err)
	}
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if id != s.session {
		w.WriteHeader(http.StatusNotFound)

		return
	}
	s.log.Infof("session %s ended", id)
	if err := s.reset(); err != nil {
		s.log.Errorf("failed to start a new session: %v", err)
		w.WriteHeader(http.StatusInternalServerError)

		return
	}
	w.Header().Set(SessionHeader, s.session.String())
	w.WriteHeader(http.StatusNoContent)
}
