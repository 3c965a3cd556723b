package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/carelist/internal/config"
	"github.com/rshade/carelist/internal/paging"
	"github.com/rshade/carelist/internal/patient"
)

// testConfig writes a config file that logs only errors to stderr and keeps
// the cache inside the test's temp dir.
func testConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`version: 1.0.0
logging:
  level: error
  file: ""
session:
  user: nurse.joy
  workspace: north-clinic
cache:
  enabled: true
  dir: %s
  ttl: 5m
%s`, filepath.Join(dir, "cache"), extra)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func noEnv(string) (string, bool) { return "", false }

// execute runs the CLI with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmdWithEnv("test", noEnv)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPatientsCmd_PlainTable(t *testing.T) {
	cfg := testConfig(t, `source:
  kind: fixture
  page_size: 4
  fixture:
    count: 30
`)
	out, err := execute(t, "--config", cfg, "patients", "--plain", "--max-items", "10", "--sort", "mrn:desc")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 12, "header, rule and ten rows")
	assert.True(t, strings.HasPrefix(lines[0], "MRN"))
	assert.True(t, strings.HasPrefix(lines[2], "MRN-000030"))
	assert.True(t, strings.HasPrefix(lines[11], "MRN-000021"))
}

func TestPatientsCmd_JSON(t *testing.T) {
	cfg := testConfig(t, `source:
  kind: fixture
  fixture:
    count: 8
`)
	out, err := execute(t, "--config", cfg, "patients", "--output", "json")
	require.NoError(t, err)

	var got []patient.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got, 8)
	for _, p := range got {
		assert.NoError(t, p.Validate())
	}
}

func TestPatientsCmd_Errors(t *testing.T) {
	cfg := testConfig(t, "")
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "unknown sort field", args: []string{"--sort", "shoeSize"}, wantErr: paging.ErrInvalidSortField},
		{name: "bad sort order", args: []string{"--sort", "name:sideways"}, wantErr: paging.ErrInvalidSortOrder},
		{name: "bad output", args: []string{"--output", "xml"}, wantErr: ErrUnsupportedOutput},
		{name: "unknown source", args: []string{"--source", "ftp"}, wantErr: config.ErrInvalidSource},
		{name: "http without url", args: []string{"--source", "http"}, wantErr: config.ErrMissingBaseURL},
		{name: "page size", args: []string{"--page-size", "0"}, wantErr: paging.ErrInvalidPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", cfg, "patients", "--plain"}, tt.args...)
			_, err := execute(t, args...)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPatientsCmd_BrokenConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 3.0.0\n"), 0o600))

	_, err := execute(t, "--config", path, "patients", "--plain")
	require.ErrorIs(t, err, config.ErrUnsupportedVersion)

	_, err = execute(t, "--config", path, "config", "validate")
	require.ErrorIs(t, err, config.ErrUnsupportedVersion)
}

// patientAPI serves total generated patients in the wire envelope.
func patientAPI(t *testing.T, total int, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "north-clinic", r.Header.Get("X-Carelist-Workspace"))

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		end := min(offset+limit, total)

		data := make([]map[string]any, 0, end-offset)
		for i := offset; i < end; i++ {
			data = append(data, map[string]any{
				"id":                   fmt.Sprintf("p%d", i),
				"mrn":                  fmt.Sprintf("MRN-%06d", i+1),
				"first_name":           "pat",
				"last_name":            fmt.Sprintf("number%d", i),
				"birth_date":           "1980-05-01T00:00:00Z",
				"active_prescriptions": i % 4,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":     data,
			"total":    total,
			"has_more": end < total,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPatientsCmd_HTTPSourceIsCached(t *testing.T) {
	var hits atomic.Int32
	srv := patientAPI(t, 7, &hits)
	cfg := testConfig(t, fmt.Sprintf(`source:
  kind: http
  base_url: %s
  page_size: 3
`, srv.URL))

	out, err := execute(t, "--config", cfg, "patients", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "MRN-000007")
	assert.Equal(t, int32(3), hits.Load(), "three pages of three")

	out, err = execute(t, "--config", cfg, "patients", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "Number6, Pat")
	assert.Equal(t, int32(3), hits.Load(), "second run is served from the cache")

	_, err = execute(t, "--config", cfg, "patients", "--plain", "--no-cache")
	require.NoError(t, err)
	assert.Equal(t, int32(6), hits.Load())
}

func TestCacheCmds(t *testing.T) {
	var hits atomic.Int32
	srv := patientAPI(t, 2, &hits)
	cfg := testConfig(t, fmt.Sprintf(`source:
  kind: http
  base_url: %s
`, srv.URL))

	_, err := execute(t, "--config", cfg, "patients", "--plain")
	require.NoError(t, err)

	out, err := execute(t, "--config", cfg, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:   1")
	assert.Contains(t, out, "TTL:       5m")

	out, err = execute(t, "--config", cfg, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache cleared")

	out, err = execute(t, "--config", cfg, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:   0")
}

func TestConfigCmds(t *testing.T) {
	// Default logging writes under $HOME/.carelist.
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	out, err := execute(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized")
	assert.FileExists(t, path)

	_, err = execute(t, "--config", path, "config", "init")
	require.Error(t, err)

	_, err = execute(t, "--config", path, "config", "init", "--force")
	require.NoError(t, err)

	out, err = execute(t, "--config", path, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")

	out, err = execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "kind: fixture")
}

func TestConfigShowRedactsDSN(t *testing.T) {
	cfg := testConfig(t, `source:
  kind: postgres
  dsn: postgres://admin:secret@db/carelist
`)
	out, err := execute(t, "--config", cfg, "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, redacted)
}

func TestLogin(t *testing.T) {
	env := func(k string) (string, bool) {
		if k == "USER" {
			return "ops", true
		}
		return "", false
	}

	cfg := config.New()
	sess, err := login(cfg, env)
	require.NoError(t, err)
	assert.Equal(t, "ops", sess.User())
	assert.Equal(t, defaultWorkspace, sess.Workspace())

	cfg.Session.User = "nurse.joy"
	cfg.Session.Workspace = "north"
	sess, err = login(cfg, env)
	require.NoError(t, err)
	assert.Equal(t, "nurse.joy", sess.User())

	_, err = login(config.New(), noEnv)
	require.Error(t, err)
}
