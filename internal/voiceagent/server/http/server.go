package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/autopeer-io/voxpeer/internal/pkg/metrics"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/state"
	"github.com/autopeer-io/voxpeer/pkg/log"
	"github.com/autopeer-io/voxpeer/pkg/options"
)

// StateReader is the read model served by the API.
type StateReader interface {
	Tasks() []model.Task
	Task(id string) (model.Task, error)
	Workers() []model.Worker
	Snapshot() state.Snapshot
}

// Controller accepts typed commands and flips listening.
type Controller interface {
	Submit(ctx context.Context, text string) error
	SetListening(on bool)
	ToggleListening() bool
	Listening() bool
}

type Server struct {
	server  *http.Server
	options *options.HttpOptions

	state  StateReader
	ctrl   Controller
	checks []func() error
}

func NewServer(opts *options.HttpOptions, st StateReader, ctrl Controller, readyChecks ...func() error) *Server {
	s := &Server{
		options: opts,
		state:   st,
		ctrl:    ctrl,
		checks:  readyChecks,
	}

	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	}
	return s
}

// Handler returns the router with every endpoint mounted.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.readyz).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/commands", s.submitCommand).Methods(http.MethodPost)
	api.HandleFunc("/tasks", s.listTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", s.getTask).Methods(http.MethodGet)
	api.HandleFunc("/workers", s.listWorkers).Methods(http.MethodGet)
	api.HandleFunc("/state", s.getState).Methods(http.MethodGet)
	api.HandleFunc("/listening", s.getListening).Methods(http.MethodGet)
	api.HandleFunc("/listening", s.putListening).Methods(http.MethodPut)
	api.HandleFunc("/listening/toggle", s.toggleListening).Methods(http.MethodPost)

	r.Use(logRequests)
	return r
}

func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen(s.options.Network, s.server.Addr)
	if err != nil {
		return err
	}
	log.Info("Starting HTTP server", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	for _, check := range s.checks {
		if err := check(); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type commandRequest struct {
	Text string `json:"text"`
}

func (s *Server) submitCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}

	if err := s.ctrl.Submit(r.Context(), text); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, commandRequest{Text: text})
}

func (s *Server) listTasks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Tasks())
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.state.Task(mux.Vars(r)["id"])
	if errors.Is(err, state.ErrTaskNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) listWorkers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Workers())
}

func (s *Server) getState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

type listeningBody struct {
	Listening *bool `json:"listening"`
}

func (s *Server) getListening(w http.ResponseWriter, _ *http.Request) {
	on := s.ctrl.Listening()
	writeJSON(w, http.StatusOK, listeningBody{Listening: &on})
}

func (s *Server) putListening(w http.ResponseWriter, r *http.Request) {
	var body listeningBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Listening == nil {
		writeError(w, http.StatusBadRequest, `body must be {"listening": true|false}`)
		return
	}

	s.ctrl.SetListening(*body.Listening)
	on := s.ctrl.Listening()
	writeJSON(w, http.StatusOK, listeningBody{Listening: &on})
}

func (s *Server) toggleListening(w http.ResponseWriter, _ *http.Request) {
	on := s.ctrl.ToggleListening()
	writeJSON(w, http.StatusOK, listeningBody{Listening: &on})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
