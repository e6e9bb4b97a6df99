package index

import (
	"context"
	"math"

	"github.com/matst80/slask-parts/pkg/facet"
	"github.com/matst80/slask-parts/pkg/table"
	"github.com/matst80/slask-parts/pkg/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("slask-parts-index")

type Stats struct {
	Total      int `json:"total"`
	Filtered   int `json:"filtered"`
	Percentage int `json:"percentage"`
}

func MakeStats(total, filtered int) Stats {
	ret := Stats{Total: total, Filtered: filtered}
	if total > 0 {
		ret.Percentage = int(math.Round(float64(filtered) / float64(total) * 100))
	}
	return ret
}

type SearchResult struct {
	Items     []*types.Product     `json:"items"`
	Facets    []*facet.JsonFacet   `json:"facets,omitempty"`
	Page      int                  `json:"page"`
	PageSize  int                  `json:"pageSize"`
	PageCount int                  `json:"pageCount"`
	TotalHits int                  `json:"totalHits"`
	Stats     Stats                `json:"stats"`
	Sort      string               `json:"sort,omitempty"`
	Warnings  []types.ParseWarning `json:"warnings,omitempty"`
}

func (i *Index) countMode(req *types.SearchRequest) facet.CountMode {
	if req.Counts != "" {
		return facet.ParseCountMode(req.Counts)
	}
	return i.CountMode
}

// Query runs facet filters, free text search, sort and pagination in that order.
func (i *Index) Query(ctx context.Context, req *types.SearchRequest) (*SearchResult, error) {
	if err := i.Ready(); err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "query", trace.WithAttributes(
		attribute.String("query", req.Query),
		attribute.String("sort", req.Sort),
	))
	defer span.End()

	all := i.snapshot()
	filtered := i.filter(ctx, all, req.Filters)
	matched := i.searchMatches(ctx, filtered, req.Query)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sorted := i.sort(ctx, matched, req.Sort)

	page := table.Pagination{Page: req.Page, Size: req.PageSize}
	ret := &SearchResult{
		Items:     table.Paginate(sorted, page),
		Page:      req.Page,
		PageSize:  req.PageSize,
		PageCount: page.PageCount(len(sorted)),
		TotalHits: len(sorted),
		Stats:     MakeStats(len(all), len(sorted)),
		Sort:      req.Sort,
		Warnings:  req.Warnings,
	}
	if !req.SkipFacets {
		ret.Facets = i.options(ctx, all, req)
	}
	span.SetAttributes(
		attribute.Int("total", len(all)),
		attribute.Int("hits", ret.TotalHits),
		attribute.Int("filters", len(req.Filters.Active())),
	)
	return ret, nil
}

// FacetOptions returns only the facet options of a request.
func (i *Index) FacetOptions(ctx context.Context, req *types.SearchRequest) ([]*facet.JsonFacet, error) {
	if err := i.Ready(); err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "facet-options")
	defer span.End()
	return i.options(ctx, i.snapshot(), req), nil
}

func (i *Index) searchMatches(ctx context.Context, items []*types.Product, query string) []*types.Product {
	_, span := tracer.Start(ctx, "search")
	defer span.End()
	return i.Search.Filter(items, query)
}

func (i *Index) filter(ctx context.Context, items []*types.Product, state types.FilterState) []*types.Product {
	_, span := tracer.Start(ctx, "filter")
	defer span.End()
	return i.Facets.Filter(items, state)
}

func (i *Index) sort(ctx context.Context, items []*types.Product, sort string) []*types.Product {
	_, span := tracer.Start(ctx, "sort")
	defer span.End()
	return i.Sorter.SortProducts(items, sort)
}

// options counts over the search matches. Global counts ignore the search as well as the filters.
func (i *Index) options(ctx context.Context, all []*types.Product, req *types.SearchRequest) []*facet.JsonFacet {
	mode := i.countMode(req)
	if mode == facet.CountCrossFiltered {
		all = i.searchMatches(ctx, all, req.Query)
	}
	_, span := tracer.Start(ctx, "facets")
	defer span.End()
	return i.Facets.Options(all, req.Filters, mode)
}
