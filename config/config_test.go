package config

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestFromContextDefaults(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range Flags() {
		require.NoError(t, f.Apply(set))
	}
	ctx := cli.NewContext(cli.NewApp(), set, nil)

	cfg, err := FromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "trieproofd.db", cfg.DBPath)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr)
	assert.Equal(t, "poseidon", cfg.Hash)
	assert.False(t, cfg.TestMode)
	assert.Equal(t, "trieproofd.db", cfg.StoragePath())
}

func TestFromContextRejectsUnknownHash(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range Flags() {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Set(FlagHash, "sha256"))
	ctx := cli.NewContext(cli.NewApp(), set, nil)

	_, err := FromContext(ctx)
	assert.Error(t, err)
}

func TestStoragePathHonorsTestMode(t *testing.T) {
	cfg := Config{DBPath: "real.db", TestMode: true}
	assert.Equal(t, ":memory:", cfg.StoragePath())
}
