// Command trieproofd serves the batch coordinator's wire API (spec.md §6)
// over HTTP, wiring storage, the coordinator, and the router together the
// way the teacher's cmd/geth wires a node.Config into a running stack,
// generalized here to github.com/urfave/cli/v2 (SPEC_FULL.md §3.3).
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/petscheit/sn-mpt/api"
	"github.com/petscheit/sn-mpt/batch"
	"github.com/petscheit/sn-mpt/config"
	"github.com/petscheit/sn-mpt/storage"
)

func main() {
	app := &cli.App{
		Name:  "trieproofd",
		Usage: "serves the batch-proof trie cache's wire API",
		Flags: config.Flags(),
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.StoragePath())
	if err != nil {
		return err
	}
	defer store.Close()

	coordinator := batch.New(store, cfg.Hasher())
	router := api.NewRouter(coordinator, store)

	slog.Info("trieproofd listening", "addr", cfg.HTTPAddr, "db", cfg.StoragePath(), "hash", cfg.Hash)
	return http.ListenAndServe(cfg.HTTPAddr, router)
}
