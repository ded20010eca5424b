package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qdemos/internal/backend"
	"qdemos/internal/demos"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestList(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)
	for _, d := range demos.All() {
		assert.Contains(t, out, d.Name)
	}
}

func TestEveryDemoHasACommand(t *testing.T) {
	root := newRootCmd(&bytes.Buffer{})
	for _, d := range demos.All() {
		cmd, _, err := root.Find([]string{d.Name})
		require.NoError(t, err, d.Name)
		assert.Equal(t, d.Name, cmd.Name())
	}
	for _, name := range []string{"list", "serve", "zx-ui"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRunBell(t *testing.T) {
	out, err := execute(t, "bell", "--seed", "3", "--shots", "200")
	require.NoError(t, err)
	assert.Contains(t, out, "Total counts are:")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qdemo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shots: 64\nzx:\n  qubits: 3\n  depth: 8\n  pHad: 0.2\n  pT: 0.2\n"), 0644))

	out, err := execute(t, "zx", "--config", path, "--seed", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "== Original circuit")
	assert.Contains(t, out, "Equivalent to the original: true")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("shots: -1\n"), 0644))
	_, err = execute(t, "bell", "--config", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shots")
}

func TestRemoteBackends(t *testing.T) {
	srv := httptest.NewServer(backend.NewServer(backend.NewLocalProvider(nil, nil), nil).Handler())
	defer srv.Close()

	out, err := execute(t, "least-busy", "--backend-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "fake_vigo")

	out, err = execute(t, "ghz", "--backend-url", srv.URL, "--seed", "4", "--shots", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "Total counts are:")
}

func TestRemoteUnavailable(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	_, err := execute(t, "bell", "--backend-url", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backends of")
}

func TestUnknownCommand(t *testing.T) {
	_, err := execute(t, "no-such-demo")
	assert.Error(t, err)
}
