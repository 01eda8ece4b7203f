// Package config loads the optional server configuration file. Every
// setting has a default, so a missing file yields a working plaintext
// server on the default port.
package config

import (
	"crypto/tls"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultPort is used when TLS is off and no port is configured.
	DefaultPort = 8080
	// DefaultTLSPort is used when TLS is on and no port is configured.
	DefaultTLSPort = 8443
)

// Config is the parsed configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	SSL    SSLConfig    `toml:"ssl"`
}

// ServerConfig holds the listener settings.
type ServerConfig struct {
	// Port is the TCP port to listen on. Zero picks the scheme default.
	Port int `toml:"port"`
}

// SSLConfig holds the TLS settings.
type SSLConfig struct {
	EnableSSL bool   `toml:"enable_ssl"`
	CertFile  string `toml:"certfile"`
	KeyFile   string `toml:"keyfile"`
}

// Load reads path and fills in defaults. A missing file is not an error,
// only a malformed one is.
func Load(path string) (*Config, error) {
	var c Config
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if c.Server.Port == 0 {
		if c.SSL.EnableSSL {
			c.Server.Port = DefaultTLSPort
		} else {
			c.Server.Port = DefaultPort
		}
	}
	return &c, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// TLSConfig builds the TLS settings, or nil when TLS is off. Legacy
// protocol versions below TLS 1.2 are refused.
func (c *Config) TLSConfig() (*tls.Config, error) {
	if !c.SSL.EnableSSL {
		return nil, nil
	}
	cert, err := tls.LoadX509KeyPair(c.SSL.CertFile, c.SSL.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load certificate: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
