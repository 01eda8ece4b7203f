package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conf.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.ini"))
	require.NoError(t, err)

	assert.False(t, cfg.SSL.EnableSSL)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Addr())

	tlsConf, err := cfg.TLSConfig()
	require.NoError(t, err)
	assert.Nil(t, tlsConf)
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9000

[ssl]
enable_ssl = true
certfile = "cert.pem"
keyfile = "key.pem"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.True(t, cfg.SSL.EnableSSL)
	assert.Equal(t, "cert.pem", cfg.SSL.CertFile)
	assert.Equal(t, "key.pem", cfg.SSL.KeyFile)
}

func TestLoadPortDefaultFollowsTLS(t *testing.T) {
	path := writeConfig(t, `
[ssl]
enable_ssl = true
certfile = "cert.pem"
keyfile = "key.pem"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultTLSPort, cfg.Server.Port)
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, `this is [not toml`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestTLSConfigMissingCert(t *testing.T) {
	path := writeConfig(t, `
[ssl]
enable_ssl = true
certfile = "does-not-exist.pem"
keyfile = "does-not-exist.pem"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	_, err = cfg.TLSConfig()
	assert.Error(t, err)
}
