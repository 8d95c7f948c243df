package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type Method string

const (
	GET  Method = "GET"
	POST Method = "POST"
)

// Handler returns the payload and status code of the response.
// An error results in an internal server error.
type Handler func(r *http.Request) ([]byte, int, error)

type Route struct {
	Path   string
	Method Method
	Exec   Handler
}

type Server struct {
	name   string
	port   int
	debug  bool
	routes []Route
	raw    map[string]http.Handler
}

func NewServer(name string, port int) *Server {
	return &Server{
		name:   name,
		port:   port,
		routes: make([]Route, 0),
		raw:    make(map[string]http.Handler),
	}
}

// Debug sets the server to debug mode
func (s *Server) Debug() *Server {
	s.debug = true
	return s
}

// AddRoute adds a route to the server
func (s *Server) AddRoute(method Method, path string, exec Handler) *Server {
	s.routes = append(s.routes, Route{
		Path:   path,
		Method: method,
		Exec:   exec,
	})
	return s
}

// Add adds the given routes to the server
func (s *Server) Add(route ...Route) *Server {
	s.routes = append(s.routes, route...)
	return s
}

// Handle serves the given path with a plain http handler.
func (s *Server) Handle(path string, handler http.Handler) *Server {
	s.raw[path] = handler
	return s
}

func (s *Server) handle(route Route) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var code int
		defer func() {
			event := log.Debug()
			if code >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("method", r.Method).
				Str("path", route.Path).
				Int("code", code).
				Float64("duration", time.Since(start).Seconds()).
				Msg("request")
		}()
		if Method(r.Method) != route.Method {
			code = http.StatusMethodNotAllowed
			w.Header().Set("Allow", string(route.Method))
			s.code(w, []byte{}, code)
			return
		}
		b, c, err := route.Exec(r)
		if err != nil {
			code = http.StatusInternalServerError
			s.error(w, err)
			return
		}
		code = c
		s.code(w, b, code)
	}
}

// Mux returns the handler serving all routes.
func (s *Server) Mux() http.Handler {
	mux := http.NewServeMux()
	for _, route := range s.routes {
		mux.HandleFunc(fmt.Sprintf("/%s", route.Path), s.handle(route))
	}
	for path, handler := range s.raw {
		mux.Handle(fmt.Sprintf("/%s", path), handler)
	}
	return mux
}

// Run starts the server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Mux(),
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdown); err != nil {
			log.Error().Err(err).Str("server", s.name).Msg("could not shut down server")
		}
	}()

	log.Info().Str("server", s.name).Int("port", s.port).Msg("starting server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

func (s *Server) code(w http.ResponseWriter, b []byte, code int) {
	if len(b) > 0 {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(code)
	s.respond(w, b)
}

func (s *Server) respond(w http.ResponseWriter, b []byte) {
	_, err := w.Write(b)
	if err != nil {
		log.Error().Err(err).Msg("could not write response")
	}
}

func (s *Server) error(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("error for http request")
	b, _ := Detail(err.Error())
	s.code(w, b, http.StatusInternalServerError)
}

// Live is the liveness probe route.
func Live() Route {
	return Route{
		Path:   "live",
		Method: GET,
		Exec: func(r *http.Request) (payload []byte, code int, err error) {
			return []byte{}, http.StatusOK, nil
		},
	}
}

// JsonRead decodes the request body into v.
func JsonRead(r *http.Request, debug bool, v interface{}) error {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if debug {
		log.Info().
			Str("url", fmt.Sprintf("%+v", r.URL)).
			Str("remote-address", r.RemoteAddr).
			Str("method", r.Method).
			Str("body", string(body)).
			Msg("received payload")
	}
	if len(body) == 0 {
		return fmt.Errorf("empty request body")
	}
	return json.Unmarshal(body, v)
}

// Detail encodes a message as a json detail response.
func Detail(msg string) ([]byte, error) {
	return json.Marshal(map[string]string{
		"detail": msg,
	})
}
