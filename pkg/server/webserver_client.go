package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/matst80/slask-parts/pkg/common/jsoncompat"
	"github.com/matst80/slask-parts/pkg/errx"
	"github.com/matst80/slask-parts/pkg/facet"
	"github.com/matst80/slask-parts/pkg/logx"
	"github.com/matst80/slask-parts/pkg/messaging"
	"github.com/matst80/slask-parts/pkg/table"
	"github.com/matst80/slask-parts/pkg/types"
)

const relatedLimit = 6

// cached answers from the response cache, or runs fn and stores its encoded result.
// Requests with parse warnings are never cached since the key only holds the valid part.
func (ws *WebServer) cached(w http.ResponseWriter, r *http.Request, name string, sr *types.SearchRequest, fn func(ctx context.Context) (any, error)) error {
	key := name + "?" + sr.Encode().Encode()
	useCache := ws.Cache != nil && len(sr.Warnings) == 0
	if useCache {
		fullKey, err := ws.Cache.Key(r.Context(), key)
		if err != nil {
			logx.Warn().Err(err).Str("key", key).Msg("response cache unavailable")
			useCache = false
		}
		key = fullKey
	}
	if useCache {
		if data, ok := ws.Cache.Get(r.Context(), key); ok {
			cacheHits.WithLabelValues("hit").Inc()
			publicHeaders(w, r, true, "60")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			_, err := w.Write(data)
			return err
		}
		cacheHits.WithLabelValues("miss").Inc()
	}

	result, err := fn(r.Context())
	if err != nil {
		return err
	}
	data, err := jsoncompat.Marshal(result)
	if err != nil {
		return err
	}
	if useCache {
		if err = ws.Cache.Set(r.Context(), key, data, ws.CacheTTL); err != nil {
			logx.Warn().Err(err).Str("key", key).Msg("failed to cache response")
		}
		w.Header().Set("X-Cache", "MISS")
	}
	publicHeaders(w, r, true, "60")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(data)
	return err
}

func (ws *WebServer) searchRequest(r *http.Request) (*types.SearchRequest, error) {
	sr, err := types.GetQueryFromRequest(r, ws.Index.Facets)
	if err != nil {
		return nil, errx.New(err, http.StatusBadRequest, "invalid search request")
	}
	return sr, nil
}

func (ws *WebServer) SearchProducts(w http.ResponseWriter, r *http.Request, _ string, _ jsoncompat.Encoder) error {
	sr, err := ws.searchRequest(r)
	if err != nil {
		return err
	}
	noSearches.Inc()
	return ws.cached(w, r, "products", sr, func(ctx context.Context) (any, error) {
		start := time.Now()
		defer func() {
			queryDuration.Observe(time.Since(start).Seconds())
		}()
		return ws.Index.Query(ctx, sr)
	})
}

func (ws *WebServer) GetFacets(w http.ResponseWriter, r *http.Request, _ string, _ jsoncompat.Encoder) error {
	sr, err := ws.searchRequest(r)
	if err != nil {
		return err
	}
	facetSearches.Inc()
	return ws.cached(w, r, "facets", sr, func(ctx context.Context) (any, error) {
		return ws.Index.FacetOptions(ctx, sr)
	})
}

func (ws *WebServer) FacetList(w http.ResponseWriter, r *http.Request, _ string, enc jsoncompat.Encoder) error {
	defs := ws.Index.Facets.Definitions()
	ret := make([]*facet.Definition, 0, len(defs))
	for _, def := range defs {
		if !def.Hide {
			ret = append(ret, def)
		}
	}
	publicHeaders(w, r, true, "600")
	w.WriteHeader(http.StatusOK)
	return enc.Encode(ret)
}

type ProductDetail struct {
	*types.Product
	Related []*types.Product `json:"related"`
}

func (ws *WebServer) GetProduct(w http.ResponseWriter, r *http.Request, _ string, enc jsoncompat.Encoder) error {
	if err := ws.Index.Ready(); err != nil {
		return err
	}
	id, err := parseProductId(r.PathValue("id"))
	if err != nil {
		return err
	}
	item, ok := ws.Index.Get(id)
	if !ok {
		return fmt.Errorf("product %d: %w", id, errx.ErrNotFound)
	}
	related, err := ws.Index.Related(id, relatedLimit)
	if err != nil {
		return err
	}
	publicHeaders(w, r, true, "60")
	w.WriteHeader(http.StatusOK)
	return enc.Encode(ProductDetail{Product: item, Related: related})
}

type SuggestResult struct {
	Word string `json:"match"`
	Hits int    `json:"hits"`
}

func (ws *WebServer) Suggest(w http.ResponseWriter, r *http.Request, _ string, enc jsoncompat.Encoder) error {
	noSuggests.Inc()
	query := r.URL.Query().Get("q")
	limit := parseLimit(r.URL.Query().Get("limit"), 10, 50)
	matches := ws.Index.AutoSuggest.Suggest(query, limit)
	ret := make([]SuggestResult, len(matches))
	for i, m := range matches {
		ret[i] = SuggestResult{Word: m.Word, Hits: m.Count}
	}
	publicHeaders(w, r, true, "120")
	w.WriteHeader(http.StatusOK)
	return enc.Encode(ret)
}

type PreferencesResponse struct {
	Columns  table.ColumnPreferences `json:"columns"`
	Visible  []table.Column          `json:"visible"`
	PageSize int                     `json:"pageSize,omitempty"`
}

type PreferencesUpdate struct {
	Columns  *table.ColumnPreferences `json:"columns,omitempty"`
	PageSize *int                     `json:"pageSize,omitempty"`
	Move     *struct {
		Id string `json:"id"`
		To int    `json:"to"`
	} `json:"move,omitempty"`
	Toggle string `json:"toggle,omitempty"`
}

func (ws *WebServer) HandlePreferences(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	name := r.PathValue("table")
	if name == "" || name == table.CompareTable {
		return errx.New(nil, http.StatusBadRequest, "invalid table")
	}
	key := table.Key(sessionId, name)
	prefs, err := ws.Preferences.Load(r.Context(), key)
	if err != nil {
		return err
	}
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut, http.MethodPost:
		update := PreferencesUpdate{}
		if err = jsoncompat.NewDecoder(r.Body).Decode(&update); err != nil {
			return errx.New(err, http.StatusBadRequest, "invalid preferences")
		}
		if update.Columns != nil {
			prefs.Columns = update.Columns.Clone()
		}
		if update.PageSize != nil {
			prefs.PageSize = min(max(*update.PageSize, 1), types.MaxPageSize)
		}
		if update.Move != nil && !prefs.Columns.Move(table.ProductColumns, update.Move.Id, update.Move.To) {
			return errx.New(nil, http.StatusBadRequest, "unknown column "+update.Move.Id)
		}
		if update.Toggle != "" {
			if _, ok := prefs.Columns.Toggle(table.ProductColumns, update.Toggle); !ok {
				return errx.New(nil, http.StatusBadRequest, "unknown column "+update.Toggle)
			}
		}
		if err = ws.Preferences.Save(r.Context(), key, prefs); err != nil {
			return err
		}
	default:
		return errx.New(nil, http.StatusMethodNotAllowed, "method not allowed")
	}
	defaultHeaders(w, r, true, "0")
	w.WriteHeader(http.StatusOK)
	return enc.Encode(PreferencesResponse{
		Columns:  prefs.Columns,
		Visible:  prefs.Columns.Apply(table.ProductColumns),
		PageSize: prefs.PageSize,
	})
}

type CompareRequest struct {
	Id types.ProductId `json:"id"`
}

type CompareResponse struct {
	Ids   []types.ProductId `json:"ids"`
	Items []*types.Product  `json:"items"`
	Max   int               `json:"max"`
}

func (ws *WebServer) HandleCompare(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	key := table.Key(sessionId, table.CompareTable)
	prefs, err := ws.Preferences.Load(r.Context(), key)
	if err != nil {
		return err
	}
	list := &prefs.Compare
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		req := CompareRequest{}
		if err = jsoncompat.NewDecoder(r.Body).Decode(&req); err != nil {
			return errx.New(err, http.StatusBadRequest, "invalid compare request")
		}
		if _, ok := ws.Index.Get(req.Id); !ok {
			return fmt.Errorf("product %d: %w", req.Id, errx.ErrNotFound)
		}
		if err = list.Add(req.Id); err != nil {
			return err
		}
	case http.MethodDelete:
		if value := r.URL.Query().Get("id"); value != "" {
			id, err := parseProductId(value)
			if err != nil {
				return err
			}
			list.Remove(id)
		} else {
			list.Clear()
		}
	default:
		return errx.New(nil, http.StatusMethodNotAllowed, "method not allowed")
	}
	if r.Method != http.MethodGet {
		if err = ws.Preferences.Save(r.Context(), key, prefs); err != nil {
			return err
		}
	}
	items, err := ws.Index.Compare(list.Ids)
	if err != nil {
		return err
	}
	defaultHeaders(w, r, true, "0")
	w.WriteHeader(http.StatusOK)
	return enc.Encode(CompareResponse{Ids: list.Ids, Items: items, Max: table.MaxCompareItems})
}

type QuoteResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestId string `json:"requestId,omitempty"`
}

func (ws *WebServer) submitQuote(r *http.Request) (*types.QuoteRequest, error) {
	quote := &types.QuoteRequest{}
	if err := jsoncompat.NewDecoder(r.Body).Decode(quote); err != nil {
		return nil, errx.New(err, http.StatusBadRequest, "invalid quote request")
	}
	if err := quote.Validate(); err != nil {
		return nil, err
	}
	for i, item := range quote.Items {
		product, ok := ws.Index.Get(item.ProductId)
		if !ok {
			return nil, errors.Join(types.ErrInvalidQuote, fmt.Errorf("unknown product %d", item.ProductId))
		}
		if strings.TrimSpace(item.PartNumber) == "" {
			quote.Items[i].PartNumber = product.PartNumber
		}
	}
	quote.Id = uuid.NewString()
	quote.Created = time.Now().Unix()
	if ws.Quotes != nil {
		if err := ws.Quotes.Publish(messaging.QuoteRequested, quote); err != nil {
			return nil, errx.New(err, http.StatusBadGateway, "quote request could not be submitted, please try again")
		}
	}
	return quote, nil
}

func (ws *WebServer) RequestQuote(w http.ResponseWriter, r *http.Request, _ string, enc jsoncompat.Encoder) error {
	if r.Method != http.MethodPost {
		return errx.New(nil, http.StatusMethodNotAllowed, "method not allowed")
	}
	defaultHeaders(w, r, true, "0")
	quote, err := ws.submitQuote(r)
	if err != nil {
		w.WriteHeader(errx.StatusOf(err))
		_ = enc.Encode(QuoteResponse{Success: false, Message: errx.MessageOf(err)})
		return err
	}
	quoteRequests.Inc()
	logx.Info().Str("id", quote.Id).Int("items", len(quote.Items)).Msg("quote requested")
	w.WriteHeader(http.StatusOK)
	return enc.Encode(QuoteResponse{
		Success:   true,
		Message:   "quote request received",
		RequestId: quote.Id,
	})
}
