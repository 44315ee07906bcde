package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"examgate"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestLoad_Defaults(t *testing.T) {
	withArgs(t)

	cfg := Load()
	require.Equal(t, "http://127.0.0.1:8000/api/v1", cfg.ServerBaseURL)
	require.Equal(t, "examgate.db", cfg.DatabasePath)
	require.Equal(t, 15*time.Second, cfg.RequestTimeout)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Flags(t *testing.T) {
	withArgs(t, "-a", "https://exam.school.example/api/v1", "-t", "30", "-l", "debug")

	cfg := Load()
	require.Equal(t, "https://exam.school.example/api/v1", cfg.ServerBaseURL)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.Equal(t, "debug", cfg.LogLevel)
	// Untouched fields keep defaults.
	require.Equal(t, "examgate.db", cfg.DatabasePath)
}

func TestLoad_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_base_url": "http://json.example/api/v1",
		"capture_source_path": "/tmp/frame.jpg",
		"request_timeout": "45s"
	}`), 0o600))
	withArgs(t, "-c", path)

	cfg := Load()
	require.Equal(t, "http://json.example/api/v1", cfg.ServerBaseURL)
	require.Equal(t, "/tmp/frame.jpg", cfg.CaptureSourcePath)
	require.Equal(t, 45*time.Second, cfg.RequestTimeout)
}

func TestLoad_FlagsOverrideJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_base_url": "http://json.example/api/v1",
		"request_timeout": 45
	}`), 0o600))
	withArgs(t, "-c", path, "-a", "http://flag.example/api/v1")

	cfg := Load()
	require.Equal(t, "http://flag.example/api/v1", cfg.ServerBaseURL)
	require.Equal(t, 45*time.Second, cfg.RequestTimeout)
}

func TestDuration_Invalid(t *testing.T) {
	var d duration
	require.Error(t, d.UnmarshalJSON([]byte(`"soon"`)))
	require.Error(t, d.UnmarshalJSON([]byte(`true`)))
}
