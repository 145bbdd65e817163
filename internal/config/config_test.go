package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load(strings.NewReader(`
port: 9000
tick_rate: 60
send_every: 2
log_level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
	assert.Equal(t, 60, cfg.TickRate)
	assert.Equal(t, time.Second/60, cfg.TickInterval())
	assert.Equal(t, uint32(2), cfg.SendEvery)
	assert.Equal(t, "websocket", cfg.Transport, "unset keys keep their defaults")
}

func TestLoadRejectsBadTickRate(t *testing.T) {
	_, err := Load(strings.NewReader("tick_rate: 0"))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownTransport(t *testing.T) {
	_, err := Load(strings.NewReader("transport: carrier-pigeon"))
	assert.Error(t, err)
}

func TestQUICRequiresTLS(t *testing.T) {
	_, err := Load(strings.NewReader("transport: quic"))
	require.Error(t, err)

	_, err = Load(strings.NewReader(`
transport: quic
cert_file: server.crt
key_file: server.key
`))
	assert.NoError(t, err)
}

func TestLoadFileEmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
