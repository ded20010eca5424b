package backend

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qdemos/internal/circuit"
)

func bell() *circuit.Circuit {
	c := circuit.New(2, 2)
	c.H(0).CX(0, 1).Measure(0, 0).Measure(1, 1)
	return c
}

func teleport() *circuit.Circuit {
	c := circuit.NewWithRegisters(
		[]circuit.Register{{Name: "q", Size: 3}},
		[]circuit.Register{{Name: "c0", Size: 1}, {Name: "c1", Size: 1}, {Name: "c2", Size: 1}},
	)
	c.H(1).CX(1, 2).CX(0, 1).H(0).Measure(0, 0).Measure(1, 1)
	c.X(2).CIf(1)
	c.Z(2).CIf(0)
	c.Measure(2, 2)
	return c
}

func TestQASMSimulator(t *testing.T) {
	b := NewQASMSimulator(nil)
	res, err := Execute(context.Background(), b, bell(), RunOptions{Shots: 1000, Seed: 5})
	require.NoError(t, err)
	assert.Equal(t, "qasm_simulator", res.Backend)
	assert.NotEmpty(t, res.JobID)
	assert.Equal(t, 1000, res.Shots)
	assert.Equal(t, 1000, res.Counts.Total())
	assert.Equal(t, 1000, res.Counts["00"]+res.Counts["11"])

	res, err = Execute(context.Background(), b, bell(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, DefaultShots, res.Counts.Total())
}

func TestStatevectorSimulator(t *testing.T) {
	c := circuit.New(1, 0)
	c.H(0)
	res, err := Execute(context.Background(), NewStatevectorSimulator(nil), c, RunOptions{})
	require.NoError(t, err)
	require.Len(t, res.Statevector, 2)
	assert.InDelta(t, 1/math.Sqrt2, real(res.Statevector[0]), 1e-12)
	assert.InDelta(t, 1/math.Sqrt2, real(res.Statevector[1]), 1e-12)
	assert.Nil(t, res.Counts)
}

func TestUnitarySimulator(t *testing.T) {
	b := NewUnitarySimulator(nil)
	c := circuit.New(1, 0)
	c.X(0)
	res, err := Execute(context.Background(), b, c, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, [][]complex128{{0, 1}, {1, 0}}, res.Unitary)

	job, err := b.Run(context.Background(), bell(), RunOptions{})
	require.NoError(t, err)
	_, err = job.Result(context.Background())
	assert.True(t, errors.Is(err, ErrJobFailed))
	assert.Equal(t, JobError, job.Status())
	assert.NotEmpty(t, job.ErrorMessage())
}

func TestDeviceRejectsConditional(t *testing.T) {
	vigo := FakeVigo(nil, nil)
	job, err := vigo.Run(context.Background(), teleport(), RunOptions{Shots: 10})
	require.NoError(t, err)
	_, err = job.Result(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrJobFailed))
	assert.Equal(t, "instruction c_if is not supported on device fake_vigo", job.ErrorMessage())

	res, err := Execute(context.Background(), NewQASMSimulator(nil), teleport(), RunOptions{Shots: 100, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Counts.Total())
}

func TestDeviceWidth(t *testing.T) {
	c := circuit.New(6, 1)
	c.Measure(0, 0)
	_, err := FakeVigo(nil, nil).Run(context.Background(), c, RunOptions{})
	assert.Equal(t, ErrTooManyQubits, errors.Cause(err))

	res, err := Execute(context.Background(), FakeMelbourne(nil, nil), c, RunOptions{Shots: 50, Seed: 2})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Counts.Total())
}

func TestDeviceNoise(t *testing.T) {
	res, err := Execute(context.Background(), FakeMelbourne(nil, nil), bell(), RunOptions{Shots: 4000, Seed: 3})
	require.NoError(t, err)
	assert.Greater(t, res.Counts["01"]+res.Counts["10"], 0)
}

func TestJobResultContext(t *testing.T) {
	job := newJob("test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := job.Result(ctx)
	assert.Equal(t, context.Canceled, errors.Cause(err))
	assert.Equal(t, JobQueued, job.Status())

	job.complete(&Result{Shots: 1}, nil)
	res, err := job.Result(context.Background())
	require.NoError(t, err)
	assert.Equal(t, job.ID(), res.JobID)
	assert.Equal(t, "test", res.Backend)
	assert.Equal(t, JobDone, job.Status())
}

func TestProvider(t *testing.T) {
	p := NewLocalProvider(nil, nil)
	assert.Len(t, p.Backends(), 5)
	assert.Len(t, p.Backends(Devices()), 2)
	assert.Len(t, p.Backends(Simulators()), 3)
	assert.Len(t, p.Backends(Devices(), MinQubits(10)), 1)
	assert.Len(t, p.Backends(Operational()), 5)
	assert.Len(t, p.Backends(Devices(), MaxQubits(5)), 1)

	b, err := p.Get("fake_melbourne")
	require.NoError(t, err)
	assert.Equal(t, 14, b.Configuration().NumQubits)
	assert.False(t, b.Configuration().Conditional)

	_, err = p.Get("ibmq_nowhere")
	assert.Equal(t, ErrUnknownBackend, errors.Cause(err))

	best, err := LeastBusy(p.Backends(Devices()))
	require.NoError(t, err)
	assert.Equal(t, "fake_vigo", best.Name())

	_, err = LeastBusy(nil)
	assert.Equal(t, ErrNoBackends, errors.Cause(err))

	p.Add(NewFakeDevice("fake_vigo", 5, 0, nil, nil))
	assert.Len(t, p.Backends(), 5)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(NewLocalProvider(nil, nil), nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestServerHealth(t *testing.T) {
	srv := newTestServer(t)

	t.Run("returns healthy JSON", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var health HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
		assert.Equal(t, "healthy", health.Status)
		assert.Equal(t, "qdemos", health.Service)
		assert.Equal(t, 5, health.Backends)
		_, err = time.Parse(time.RFC3339, health.Timestamp)
		assert.NoError(t, err)
	})

	t.Run("rejects POST", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/health", "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestServerBackends(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/v1/backends?devices=true&min_qubits=6")
	require.NoError(t, err)
	defer resp.Body.Close()
	var infos []BackendInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "fake_melbourne", infos[0].Configuration.Name)
	assert.Equal(t, 5, infos[0].Status.PendingJobs)

	resp, err = http.Get(srv.URL + "/v1/backends?min_qubits=many")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServerRunErrors(t *testing.T) {
	srv := newTestServer(t)
	post := func(path, body string) *http.Response {
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		return resp
	}

	resp := post("/v1/backends/nope/run", `{"qasm": ""}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = post("/v1/backends/qasm_simulator/run", `{not json`)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post("/v1/backends/qasm_simulator/run", `{"qasm": "OPENQASM 2.0; qreg q[1]; frob q[0];"}`)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "Invalid circuit")
}

// slowCircuit measures mid-circuit so every shot is a full trajectory.
func slowCircuit(n int) *circuit.Circuit {
	c := circuit.New(n, n)
	for q := 0; q < n; q++ {
		c.H(q)
	}
	c.Measure(0, 0)
	for layer := 0; layer < 4; layer++ {
		for q := 0; q < n; q++ {
			c.H(q)
		}
	}
	for q := 0; q < n; q++ {
		c.Measure(q, q)
	}
	return c
}

func TestJobStopsOnCancel(t *testing.T) {
	b := NewQASMSimulator(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	job, err := b.Run(ctx, slowCircuit(14), RunOptions{Shots: MaxShots, Seed: 1})
	require.NoError(t, err)

	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("job kept running after its context was cancelled")
	}
	assert.Equal(t, JobError, job.Status())
	assert.Contains(t, job.ErrorMessage(), context.DeadlineExceeded.Error())
	assert.Eventually(t, func() bool { return b.Status().PendingJobs == 0 },
		time.Second, 10*time.Millisecond)
}

func TestShotLimit(t *testing.T) {
	_, err := NewQASMSimulator(nil).Run(context.Background(), bell(), RunOptions{Shots: MaxShots + 1})
	assert.True(t, errors.Is(err, ErrTooManyShots))

	srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/v1/backends/qasm_simulator/run", "application/json",
		strings.NewReader(`{"qasm": "OPENQASM 2.0; qreg q[1]; creg c[1]; measure q[0] -> c[0];", "shots": 100000000}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "Invalid shots")

	big := `{"qasm": "` + strings.Repeat("x", maxRequestBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/backends/qasm_simulator/run", strings.NewReader(big))
	rec := httptest.NewRecorder()
	NewServer(NewLocalProvider(nil, nil), nil).Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRemoteBackends(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	backends, err := Discover(ctx, srv.URL+"/", nil, nil)
	require.NoError(t, err)
	require.Len(t, backends, 5)
	p := NewProvider(nil, backends...)

	qasm, err := p.Get("qasm_simulator")
	require.NoError(t, err)
	assert.False(t, qasm.Configuration().Local)
	res, err := Execute(ctx, qasm, bell(), RunOptions{Shots: 500, Seed: 9})
	require.NoError(t, err)
	assert.Equal(t, 500, res.Counts.Total())
	assert.Equal(t, 500, res.Counts["00"]+res.Counts["11"])
	assert.Equal(t, "qasm_simulator", res.Backend)

	sv, err := p.Get("statevector_simulator")
	require.NoError(t, err)
	c := circuit.New(1, 0)
	c.RY(math.Pi/3, 0)
	res, err = Execute(ctx, sv, c, RunOptions{})
	require.NoError(t, err)
	require.Len(t, res.Statevector, 2)
	assert.InDelta(t, math.Cos(math.Pi/6), real(res.Statevector[0]), 1e-9)
	assert.InDelta(t, math.Sin(math.Pi/6), real(res.Statevector[1]), 1e-9)

	vigo, err := p.Get("fake_vigo")
	require.NoError(t, err)
	job, err := vigo.Run(ctx, teleport(), RunOptions{})
	require.NoError(t, err)
	_, err = job.Result(ctx)
	assert.True(t, errors.Is(err, ErrJobFailed))
	assert.Contains(t, job.ErrorMessage(), "c_if")

	wide := circuit.New(6, 1)
	wide.Measure(5, 0)
	_, err = vigo.Run(ctx, wide, RunOptions{})
	assert.Equal(t, ErrTooManyQubits, errors.Cause(err))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	_, err := Execute(context.Background(), NewQASMSimulator(nil), bell(), RunOptions{Shots: 10})
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "qdemos_backend_jobs_total")
	assert.Contains(t, string(body), "qdemos_backend_shots_total")
}
