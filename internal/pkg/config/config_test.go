package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SHREDCMP_FIRST_URI", "wss://first.example.com/ws")
	t.Setenv("SHREDCMP_SECOND_URI", "wss://second.example.com/ws")
	t.Setenv("SHREDCMP_FIRST_AUTH", "token-a")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "wss://first.example.com/ws", cfg.FirstURI)
	require.Equal(t, "wss://second.example.com/ws", cfg.SecondURI)
	require.Equal(t, "token-a", cfg.FirstAuth)
	require.Empty(t, cfg.SecondAuth)
}

func TestLoadWithEmptyEnvironment(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Empty(t, cfg.FirstURI)
	require.Empty(t, cfg.SecondURI)
}

func TestFallback(t *testing.T) {
	require.Equal(t, "flag", Fallback("flag", "env"))
	require.Equal(t, "env", Fallback("", "env"))
	require.Empty(t, Fallback("", ""))
}
