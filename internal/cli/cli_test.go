package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func newProviderServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /backends", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			writeJSON(w, http.StatusUnauthorized, `{"message": "invalid token"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"devices": ["ibm_kyiv", "ibm_brisbane"]}`)
	})
	mux.HandleFunc("GET /backends/{name}/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"state": true, "length_queue": 4}`)
	})
	mux.HandleFunc("GET /backends/{name}/configuration", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("name") == "ibm_brisbane" {
			writeJSON(w, http.StatusInternalServerError, `{}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"n_qubits": 127}`)
	})
	mux.HandleFunc("GET /jobs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"jobs": [
			{"id": "job-1", "backend": "ibm_kyiv", "status": "Completed", "created": "2024-05-01T10:00:00Z"},
			{"id": "job-2", "status": "Running"}
		]}`)
	})
	mux.HandleFunc("GET /jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "job-1" {
			writeJSON(w, http.StatusNotFound, `{}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"id": "job-1", "status": "Failed", "state": {"reason": "out of memory"}}`)
	})
	mux.HandleFunc("GET /jobs/{id}/metrics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"shots": 1024}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	t.Setenv(EnvToken, "good-token")
	t.Setenv(EnvAPIURL, srv.URL)
	t.Setenv(EnvInstance, "")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--no-color"))

	err := root.Execute()
	return out.String(), err
}

func TestCheck(t *testing.T) {
	srv := newProviderServer(t)

	t.Run("valid token", func(t *testing.T) {
		out, err := runCLI(t, srv, "check")
		require.NoError(t, err)
		assert.Contains(t, out, "Credentials OK: 2 backends visible")
		assert.Contains(t, out, "ibm_kyiv, ibm_brisbane")
	})

	t.Run("rejected token", func(t *testing.T) {
		_, err := runCLI(t, srv, "check", "--token", "bad-token")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "credential check failed")
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := runCLI(t, srv, "check", "--token", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvToken)
	})

	t.Run("json", func(t *testing.T) {
		out, err := runCLI(t, srv, "check", "--json")
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, true, got["ok"])
		assert.Equal(t, float64(2), got["total"])
	})
}

func TestJobs(t *testing.T) {
	srv := newProviderServer(t)

	t.Run("table", func(t *testing.T) {
		out, err := runCLI(t, srv, "jobs")
		require.NoError(t, err)
		assert.Contains(t, out, "ID")
		assert.Contains(t, out, "job-1")
		assert.Contains(t, out, "COMPLETED")
		assert.Contains(t, out, "2024-05-01T10:00:00+00:00")
		assert.Contains(t, out, "RUNNING")
	})

	t.Run("status filter", func(t *testing.T) {
		out, err := runCLI(t, srv, "jobs", "--status", "running", "--json")
		require.NoError(t, err)

		var got []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "job-2", got[0]["id"])
		assert.Nil(t, got[0]["backend"])
	})

	t.Run("limit applies after the status filter", func(t *testing.T) {
		out, err := runCLI(t, srv, "jobs", "--status", "running", "--limit", "1", "--json")
		require.NoError(t, err)

		var got []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "job-2", got[0]["id"])
	})

	t.Run("limit caps the listing", func(t *testing.T) {
		out, err := runCLI(t, srv, "jobs", "-n", "1", "--json")
		require.NoError(t, err)

		var got []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "job-1", got[0]["id"])
	})

	t.Run("no matches", func(t *testing.T) {
		out, err := runCLI(t, srv, "jobs", "--status", "cancelled")
		require.NoError(t, err)
		assert.Contains(t, out, "No jobs found.")
	})
}

func TestJob(t *testing.T) {
	srv := newProviderServer(t)

	t.Run("details", func(t *testing.T) {
		out, err := runCLI(t, srv, "job", "job-1")
		require.NoError(t, err)
		assert.Contains(t, out, "ERROR")
		assert.Contains(t, out, "out of memory")
		assert.Contains(t, out, `{"shots":1024}`)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := runCLI(t, srv, "job", "missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "job not found")
	})

	t.Run("requires an id", func(t *testing.T) {
		_, err := runCLI(t, srv, "job")
		require.Error(t, err)
	})
}

func TestBackends(t *testing.T) {
	srv := newProviderServer(t)

	out, err := runCLI(t, srv, "backends", "--json")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)

	byName := map[string]map[string]any{}
	for _, b := range got {
		byName[b["name"].(string)] = b
	}
	assert.Equal(t, float64(127), byName["ibm_kyiv"]["num_qubits"])
	assert.Nil(t, byName["ibm_brisbane"]["num_qubits"])
	assert.Equal(t, float64(4), byName["ibm_brisbane"]["pending_jobs"])
}
