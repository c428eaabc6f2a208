package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_EnvDefaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("MESSENGER_PORTS", "4000,4001")
	t.Setenv("MESSENGER_LOG_LEVEL", "info")

	cfg, err := Load()
	req.NoError(err)
	req.Equal([]int{4000, 4001}, cfg.Ports)
	req.Equal("info", cfg.LogLevel)
	req.Empty(cfg.WSListenAddr)
}

func TestValidate(t *testing.T) {
	req := require.New(t)

	req.ErrorIs((&Config{}).Validate(), ErrNoListeners)
	req.ErrorIs((&Config{Ports: []int{70000}}).Validate(), ErrBadPort)
	req.ErrorIs((&Config{Ports: []int{0}}).Validate(), ErrBadPort)
	req.NoError((&Config{Ports: []int{4000}}).Validate())
	req.NoError((&Config{WSListenAddr: ":8888"}).Validate())
}

func TestListenAddrs(t *testing.T) {
	cfg := &Config{Ports: []int{4000, 4001}}
	require.Equal(t, []string{":4000", ":4001"}, cfg.ListenAddrs())
}
