package types

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/schema"
	"github.com/matst80/slask-parts/pkg/common/jsoncompat"
)

type SearchRequest struct {
	Filters    FilterState    `json:"filters" schema:"-"`
	Query      string         `json:"query" schema:"q"`
	Sort       string         `json:"sort" schema:"sort"`
	Page       int            `json:"page" schema:"page"`
	PageSize   int            `json:"pageSize" schema:"size,default:20"`
	Counts     string         `json:"counts" schema:"counts"`
	SkipFacets bool           `json:"skipFacets" schema:"nf"`
	Warnings   []ParseWarning `json:"-" schema:"-"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
	MaxPage         = 1000
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

func clamp[T int | float64](value, min, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func (s *SearchRequest) Sanitize() {
	s.Page = clamp(s.Page, 0, MaxPage)
	if s.PageSize == 0 {
		s.PageSize = DefaultPageSize
	}
	s.PageSize = clamp(s.PageSize, 1, MaxPageSize)
	if s.Filters == nil {
		s.Filters = FilterState{}
	}
}

// Encode is the canonical query string, used for links and cache keys.
func (s *SearchRequest) Encode() url.Values {
	ret := s.Filters.Encode()
	if s.Query != "" {
		ret.Set("q", s.Query)
	}
	if s.Sort != "" {
		ret.Set("sort", s.Sort)
	}
	if s.Page > 0 {
		ret.Set("page", strconv.Itoa(s.Page))
	}
	if s.PageSize != DefaultPageSize {
		ret.Set("size", strconv.Itoa(s.PageSize))
	}
	if s.Counts != "" {
		ret.Set("counts", s.Counts)
	}
	if s.SkipFacets {
		ret.Set("nf", "true")
	}
	return ret
}

func MakeBaseSearchRequest() *SearchRequest {
	return &SearchRequest{
		Filters:  FilterState{},
		Page:     0,
		PageSize: DefaultPageSize,
	}
}

func GetQueryFromRequest(r *http.Request, fs FacetSchema) (*SearchRequest, error) {
	sr := MakeBaseSearchRequest()
	var err error
	if r.Method == http.MethodGet {
		err = QueryFromValues(r.URL.Query(), fs, sr)
	} else {
		err = jsoncompat.NewDecoder(r.Body).Decode(sr)
		sr.Filters = sr.Filters.Normalize(fs)
	}
	sr.Sanitize()
	return sr, err
}

func QueryFromValues(query url.Values, fs FacetSchema, result *SearchRequest) error {
	if err := decoder.Decode(result, query); err != nil {
		return err
	}
	if result.Query == "" {
		result.Query = query.Get("query")
	}
	result.Filters, result.Warnings = ParseFilterState(query, fs)
	return nil
}
