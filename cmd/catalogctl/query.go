package main

import (
	"net/url"

	"github.com/matst80/slask-parts/pkg/common/jsoncompat"
	"github.com/matst80/slask-parts/pkg/facet"
	"github.com/matst80/slask-parts/pkg/index"
	"github.com/matst80/slask-parts/pkg/sorting"
	"github.com/matst80/slask-parts/pkg/storage"
	"github.com/matst80/slask-parts/pkg/types"
	"github.com/spf13/cobra"
)

var skipFacets bool

var queryCmd = &cobra.Command{
	Use:   "query [query string]",
	Short: "Run a search against the local snapshot",
	Long: `Runs the same filter, search, sort and pagination pipeline as the api against the
local snapshot and prints the result as json.

  catalogctl query 'category=Diode&inputVoltage=3-5&sort=name'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&skipFacets, "no-facets", false, "Leave facet options out of the result")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	raw := ""
	if len(args) > 0 {
		raw = args[0]
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return err
	}

	engine := facet.NewDefaultEngine(facet.LabelsFor(cfg.Locale), facet.ParseRangeMode(cfg.RangeMode))
	idx := index.NewIndex(engine, sorting.NewSorter(cfg.Locale))
	idx.CountMode = facet.ParseCountMode(cfg.CountMode)
	if err = storage.NewDiskStorage(cfg.DataDir).LoadItems(idx); err != nil {
		return err
	}

	req := types.MakeBaseSearchRequest()
	if err = types.QueryFromValues(values, idx.Facets, req); err != nil {
		return err
	}
	req.Sanitize()
	req.SkipFacets = req.SkipFacets || skipFacets

	res, err := idx.Query(cmd.Context(), req)
	if err != nil {
		return err
	}
	enc := jsoncompat.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
