package main

import (
	"fmt"
	"slices"

	"github.com/matst80/slask-parts/pkg/storage"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the postgres catalog to the local snapshot",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Postgres.Enabled() {
		return fmt.Errorf("POSTGRES_URL is not set")
	}
	pool, err := cfg.Postgres.Connect(cmd.Context())
	if err != nil {
		return err
	}
	defer pool.Close()

	products, err := storage.NewPostgresRepository(pool).LoadProducts(cmd.Context())
	if err != nil {
		return err
	}
	if err = storage.NewDiskStorage(cfg.DataDir).SaveItems(slices.Values(products)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d products to %s\n", len(products), cfg.DataDir)
	return nil
}
