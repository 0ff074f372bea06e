package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	cfg, err := LoadServerConfig(NewMapConfig(nil))
	require.NoErrorf(t, err, "LoadServerConfig failed: %s", err)
	require.Equal(t, "http://127.0.0.1:5001", cfg.IPFSAPI)
	require.Equal(t, BackendIPFS, cfg.Backend)
	require.Equal(t, ":4918", cfg.Listen)
	require.Equal(t, "localhost:4919", cfg.AdminListen)
	require.Equal(t, "info", cfg.LogLevel)
	require.False(t, cfg.StrictErrors)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestLoadServerConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]string
		wantErr bool
	}{
		{name: "memory backend", entries: map[string]string{"BACKEND": "memory", "STRICT_ERRORS": "true"}},
		{name: "unknown backend", entries: map[string]string{"BACKEND": "s3"}, wantErr: true},
		{name: "bad api url", entries: map[string]string{"IPFS_API": "not a url"}, wantErr: true},
		{name: "relative prefix", entries: map[string]string{"PREFIX": "dav"}, wantErr: true},
		{name: "absolute prefix", entries: map[string]string{"PREFIX": "/dav"}},
		{name: "bad log level", entries: map[string]string{"LOG_LEVEL": "loud"}, wantErr: true},
		{name: "admin off", entries: map[string]string{"ADMIN_LISTEN": "off"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadServerConfig(NewMapConfig(test.entries))
			if test.wantErr {
				require.Error(t, err)
				return
			}
			require.NoErrorf(t, err, "unexpected error: %s", err)
		})
	}
}

func TestDotenvConfigUsesPrefix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("IPFSDAV_LISTEN=:9000\nIPFSDAV_REQUEST_TIMEOUT_SECONDS=5\n"), 0600))
	t.Cleanup(func() {
		_ = os.Unsetenv("IPFSDAV_LISTEN")
		_ = os.Unsetenv("IPFSDAV_REQUEST_TIMEOUT_SECONDS")
	})

	c := NewDotenvConfig(path)
	require.NoError(t, c.Load())
	require.Equal(t, ":9000", c.GetKey("LISTEN"))
	require.Equal(t, 5, c.GetIntKey("REQUEST_TIMEOUT_SECONDS"))
	require.Equal(t, 7, c.GetIntKeyWithDefault("MISSING", 7))
}

func TestViperConfigSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ipfsdav.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \":7000\"\nbackend: memory\nstrict_errors: true\n"), 0600))
	t.Setenv("IPFSDAV_PREFIX", "/env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("admin-listen", "localhost:1", "")
	flags.String("listen", ":1", "")
	require.NoError(t, flags.Parse([]string{"--admin-listen", "localhost:8000"}))

	c := NewViperConfig(path)
	require.NoError(t, c.BindFlags(flags))
	require.NoErrorf(t, c.Load(), "loading %s failed", path)

	require.Equal(t, ":7000", c.GetKey("LISTEN"), "file beats an unset flag's default")
	require.Equal(t, "localhost:8000", c.GetKey("ADMIN_LISTEN"))
	require.Equal(t, "/env", c.GetKey("PREFIX"))
	require.True(t, c.GetBoolKeyWithDefault("STRICT_ERRORS", false))

	cfg, err := LoadServerConfig(c)
	require.NoError(t, err)
	require.Equal(t, BackendMemory, cfg.Backend)

	require.Error(t, NewViperConfig(filepath.Join(dir, "missing.yaml")).Load())
}
