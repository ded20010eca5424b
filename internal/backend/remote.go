package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"qdemos/internal/circuit"
)

// Remote is a backend served by another process. Circuits travel as
// OpenQASM 2.0.
type Remote struct {
	baseURL string
	client  *http.Client
	info    BackendInfo
	logger  *zap.Logger
}

// Discover lists the backends of the server at baseURL.
func Discover(ctx context.Context, baseURL string, client *http.Client, logger *zap.Logger) ([]Backend, error) {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL = strings.TrimRight(baseURL, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/v1/backends", nil)
	if err != nil {
		return nil, errors.Wrap(err, "discover")
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "discover")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	var infos []BackendInfo
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		return nil, errors.Wrap(err, "decoding backend list")
	}
	out := make([]Backend, 0, len(infos))
	for _, info := range infos {
		info.Configuration.Local = false
		out = append(out, &Remote{
			baseURL: baseURL,
			client:  client,
			info:    info,
			logger:  logger.With(zap.String("backend", info.Configuration.Name), zap.String("url", baseURL)),
		})
	}
	logger.Debug("discovered remote backends", zap.String("url", baseURL), zap.Int("count", len(out)))
	return out, nil
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	text := strings.TrimSpace(string(msg))
	if resp.StatusCode == http.StatusNotFound {
		return errors.Wrap(ErrUnknownBackend, text)
	}
	return errors.Errorf("server returned %s: %s", resp.Status, text)
}

func (r *Remote) Name() string { return r.info.Configuration.Name }

func (r *Remote) Configuration() Configuration { return r.info.Configuration }

// Status returns the status reported when the backend was discovered.
func (r *Remote) Status() Status { return r.info.Status }

// Run posts the circuit and waits for the server to finish it. The
// returned job is already complete.
func (r *Remote) Run(ctx context.Context, c *circuit.Circuit, opts RunOptions) (*Job, error) {
	if n := c.NumQubits(); n > r.info.Configuration.NumQubits {
		return nil, errors.Wrapf(ErrTooManyQubits, "%d qubits on %s (%d available)", n, r.Name(), r.info.Configuration.NumQubits)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(RunRequest{QASM: c.ToQASM(), Shots: opts.Shots, Seed: opts.Seed})
	if err != nil {
		return nil, errors.Wrap(err, "encoding request")
	}
	endpoint := r.baseURL + "/v1/backends/" + url.PathEscape(r.Name()) + "/run"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "run")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "run on %s", r.Name())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	var jr JobResponse
	if err := json.NewDecoder(resp.Body).Decode(&jr); err != nil {
		return nil, errors.Wrap(err, "decoding job")
	}
	r.logger.Debug("remote job finished",
		zap.String("job", jr.ID),
		zap.String("status", string(jr.Status)),
		zap.Duration("took", time.Since(start)),
	)

	job := &Job{id: jr.ID, backend: jr.Backend, status: JobQueued, done: make(chan struct{})}
	if jr.Status == JobError {
		job.complete(nil, errors.New(jr.Error))
		return job, nil
	}
	res := &Result{
		Shots:     jr.Shots,
		Counts:    jr.Counts,
		TimeTaken: time.Duration(jr.TimeTaken * float64(time.Second)),
	}
	if jr.Statevector != nil {
		res.Statevector = fromWire(jr.Statevector)
	}
	for _, row := range jr.Unitary {
		res.Unitary = append(res.Unitary, fromWire(row))
	}
	job.complete(res, nil)
	return job, nil
}
