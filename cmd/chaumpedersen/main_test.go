package main

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/chaum-pedersen/internal/params"
	"github.com/taurusgroup/chaum-pedersen/pkg/math/sample"
	"github.com/taurusgroup/chaum-pedersen/pkg/pool"
)

func TestParseConfig(t *testing.T) {
	cfg, err := parseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, params.BitsGroup, cfg.bits)
	assert.Equal(t, 8, cfg.sessions)

	cfg, err = parseConfig([]string{"-bits", "64", "-sessions", "3", "-seed", "abc", "-v"})
	require.NoError(t, err)
	assert.Equal(t, config{bits: 64, sessions: 3, seed: "abc", verbose: true}, cfg)

	_, err = parseConfig([]string{"-bits", "4"})
	assert.Error(t, err)
	_, err = parseConfig([]string{"-sessions", "0"})
	assert.Error(t, err)
	_, err = parseConfig([]string{"-unknown"})
	assert.Error(t, err)
}

func TestRegression(t *testing.T) {
	assert.NoError(t, regression())
}

func TestRun(t *testing.T) {
	cfg := config{bits: 96, sessions: 4}
	log := zerolog.Nop()

	assert.NoError(t, run(context.Background(), cfg, log, rand.Reader, nil))

	pl := pool.NewPool(2)
	defer pl.TearDown()
	seeded := pool.NewLockedReader(sample.NewSeededReader([]byte("main.TestRun")))
	assert.NoError(t, run(context.Background(), cfg, log, seeded, pl))
}
