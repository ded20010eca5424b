package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"qdemos/internal/circuit"
	"qdemos/internal/sim"
)

// maxRequestBytes bounds the body of a run request.
const maxRequestBytes = 1 << 20

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Uptime    string `json:"uptime,omitempty"`
	Backends  int    `json:"backends"`
}

// BackendInfo is one entry of GET /v1/backends.
type BackendInfo struct {
	Configuration Configuration `json:"configuration"`
	Status        Status        `json:"status"`
}

// RunRequest is the body of POST /v1/backends/{name}/run.
type RunRequest struct {
	QASM  string `json:"qasm"`
	Shots int    `json:"shots,omitempty"`
	Seed  int64  `json:"seed,omitempty"`
}

// Complex is a complex number on the wire, as [re, im].
type Complex [2]float64

func toWire(a []complex128) []Complex {
	out := make([]Complex, len(a))
	for i, x := range a {
		out[i] = Complex{real(x), imag(x)}
	}
	return out
}

func fromWire(a []Complex) []complex128 {
	out := make([]complex128, len(a))
	for i, x := range a {
		out[i] = complex(x[0], x[1])
	}
	return out
}

// JobResponse is the body returned for a finished job.
type JobResponse struct {
	ID          string      `json:"job_id"`
	Backend     string      `json:"backend_name"`
	Status      JobStatus   `json:"status"`
	Error       string      `json:"error,omitempty"`
	Shots       int         `json:"shots,omitempty"`
	Counts      sim.Counts  `json:"counts,omitempty"`
	Statevector []Complex   `json:"statevector,omitempty"`
	Unitary     [][]Complex `json:"unitary,omitempty"`
	TimeTaken   float64     `json:"time_taken"`
}

func jobResponse(job *Job, res *Result) JobResponse {
	resp := JobResponse{ID: job.ID(), Backend: job.Backend(), Status: job.Status(), Error: job.ErrorMessage()}
	if res == nil {
		return resp
	}
	resp.Shots = res.Shots
	resp.Counts = res.Counts
	resp.TimeTaken = res.TimeTaken.Seconds()
	if res.Statevector != nil {
		resp.Statevector = toWire(res.Statevector)
	}
	for _, row := range res.Unitary {
		resp.Unitary = append(resp.Unitary, toWire(row))
	}
	return resp
}

// Server exposes a provider over HTTP.
type Server struct {
	provider *Provider
	logger   *zap.Logger
	started  time.Time
	mux      *http.ServeMux
}

// NewServer builds the HTTP API for p.
func NewServer(p *Provider, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{provider: p, logger: logger, started: time.Now(), mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /health", s.instrument("health", s.handleHealth))
	s.mux.HandleFunc("GET /v1/backends", s.instrument("backends", s.handleBackends))
	s.mux.HandleFunc("POST /v1/backends/{name}/run", s.instrument("run", s.handleRun))
	s.mux.Handle("GET /metrics", promhttp.Handler())
	return s
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		h(rec, r)
		httpRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("code", rec.code),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "qdemos",
		Uptime:    time.Since(s.started).String(),
		Backends:  len(s.provider.Backends()),
	})
}

func (s *Server) handleBackends(w http.ResponseWriter, r *http.Request) {
	var filters []Filter
	if v := r.URL.Query().Get("min_qubits"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid min_qubits: "+err.Error(), http.StatusBadRequest)
			return
		}
		filters = append(filters, MinQubits(n))
	}
	if r.URL.Query().Get("devices") == "true" {
		filters = append(filters, Devices())
	}
	infos := []BackendInfo{}
	for _, b := range s.provider.Backends(filters...) {
		infos = append(infos, BackendInfo{Configuration: b.Configuration(), Status: b.Status()})
	}
	s.writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	b, err := s.provider.Get(r.PathValue("name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	var req RunRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Shots < 0 || req.Shots > MaxShots {
		http.Error(w, fmt.Sprintf("Invalid shots: must be between 0 and %d", MaxShots), http.StatusBadRequest)
		return
	}
	c, err := circuit.ParseQASM(req.QASM)
	if err != nil {
		http.Error(w, "Invalid circuit: "+err.Error(), http.StatusBadRequest)
		return
	}

	job, err := b.Run(r.Context(), c, RunOptions{Shots: req.Shots, Seed: req.Seed})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := job.Result(r.Context())
	if err != nil && !errors.Is(err, ErrJobFailed) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	s.logger.Info("job finished",
		zap.String("backend", b.Name()),
		zap.String("job", job.ID()),
		zap.String("status", string(job.Status())),
	)
	s.writeJSON(w, http.StatusOK, jobResponse(job, res))
}
