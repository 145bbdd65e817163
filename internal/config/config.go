package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration, loaded from YAML.
type Config struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Transport string `yaml:"transport"` // "websocket" or "quic"

	// TickRate is simulation steps per second.
	TickRate int `yaml:"tick_rate"`
	// SendEvery broadcasts a snapshot every Nth tick.
	SendEvery uint32 `yaml:"send_every"`

	WriteTimeout time.Duration `yaml:"write_timeout"`
	LogLevel     string        `yaml:"log_level"`

	// TLS is required for the QUIC transport.
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         7350,
		Transport:    "websocket",
		TickRate:     30,
		SendEvery:    3,
		WriteTimeout: 5 * time.Second,
		LogLevel:     "info",
	}
}

// Load decodes YAML over the defaults.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.validate()
}

// LoadFile reads a YAML config file; an empty path yields the defaults.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Addr is the listen address in host:port form.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TickInterval is the wall-clock duration of one simulation step.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

func (c Config) validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %d", c.TickRate)
	}
	if c.SendEvery == 0 {
		return fmt.Errorf("send_every must be positive")
	}
	switch c.Transport {
	case "websocket", "quic":
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.Transport == "quic" && (c.CertFile == "" || c.KeyFile == "") {
		return fmt.Errorf("quic transport requires cert_file and key_file")
	}
	return nil
}
