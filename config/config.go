// Package config populates a Config struct from CLI flags, the way the
// teacher's cmd/geth binary shapes its node.Config before constructing a
// stack, generalized here to github.com/urfave/cli/v2 (SPEC_FULL.md §3.3).
package config

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/petscheit/sn-mpt/felt"
)

// Flag names, exported so main can reuse them when building the *cli.App.
const (
	FlagDBPath   = "db"
	FlagHTTPAddr = "http-addr"
	FlagHash     = "hash"
	FlagTestMode = "test-mode"
)

// Config is the fully-resolved set of knobs a trieproofd process needs.
type Config struct {
	// DBPath is the sqlite file path. Ignored when TestMode is set.
	DBPath string
	// HTTPAddr is the address the wire API listens on, e.g. ":8080".
	HTTPAddr string
	// Hash selects the algebraic hash family (poseidon, the primary
	// configuration, or pedersen, the alternate).
	Hash string
	// TestMode runs against an ephemeral ":memory:" database, mirroring
	// ConnectionManager::new(file, test_mode) in
	// original_source/rust/src/db/mod.rs.
	TestMode bool
}

// Flags is the *cli.Flag set main wires into its *cli.App.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  FlagDBPath,
			Value: "trieproofd.db",
			Usage: "path to the sqlite database file",
		},
		&cli.StringFlag{
			Name:  FlagHTTPAddr,
			Value: "127.0.0.1:8080",
			Usage: "listen address for the wire API",
		},
		&cli.StringFlag{
			Name:  FlagHash,
			Value: "poseidon",
			Usage: "algebraic hash family: poseidon or pedersen",
		},
		&cli.BoolFlag{
			Name:  FlagTestMode,
			Usage: "run against an ephemeral in-memory database",
		},
	}
}

// FromContext builds a Config from a populated *cli.Context.
func FromContext(ctx *cli.Context) (Config, error) {
	cfg := Config{
		DBPath:   ctx.String(FlagDBPath),
		HTTPAddr: ctx.String(FlagHTTPAddr),
		Hash:     ctx.String(FlagHash),
		TestMode: ctx.Bool(FlagTestMode),
	}
	if _, ok := felt.HasherByName(cfg.Hash); !ok {
		return Config{}, fmt.Errorf("config: unknown hash mode %q", cfg.Hash)
	}
	return cfg, nil
}

// StoragePath returns the path to open the store at, honoring TestMode.
func (c Config) StoragePath() string {
	if c.TestMode {
		return ":memory:"
	}
	return c.DBPath
}

// Hasher resolves c.Hash to a felt.Hasher (an empty name resolves to
// poseidon). FromContext already validated the name, so this only panics for
// a Config built by hand with an unrecognised Hash name.
func (c Config) Hasher() felt.Hasher {
	h, ok := felt.HasherByName(c.Hash)
	if !ok {
		panic(fmt.Sprintf("config: unknown hash mode %q", c.Hash))
	}
	return h
}
