package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matst80/slask-parts/pkg/common"
	"github.com/matst80/slask-parts/pkg/common/jsoncompat"
	"github.com/matst80/slask-parts/pkg/errx"
	"github.com/matst80/slask-parts/pkg/facet"
	"github.com/matst80/slask-parts/pkg/index"
	"github.com/matst80/slask-parts/pkg/messaging"
	"github.com/matst80/slask-parts/pkg/sorting"
	"github.com/matst80/slask-parts/pkg/storage"
	"github.com/matst80/slask-parts/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(v float64) *float64 {
	return &v
}

func ledDriver(id types.ProductId, name string, lo, hi float64, apps ...string) *types.Product {
	p := &types.Product{
		Id:           id,
		Name:         name,
		PartNumber:   "LD-" + name,
		Category:     types.Category{Name: "LED Driver IC", Kind: types.CategoryLEDDriverIC},
		Manufacturer: &types.Manufacturer{Name: "Acme"},
		Specification: types.Specification{LEDDriverIC: &types.LEDDriverICSpec{
			InputVoltage: &types.Range{Min: num(lo), Max: num(hi), Unit: "V"},
			Topology:     []string{"Buck"},
		}},
	}
	for _, a := range apps {
		p.Applications = append(p.Applications, types.Application{Name: a})
	}
	return p
}

func diode(id types.ProductId, name string) *types.Product {
	return &types.Product{
		Id:           id,
		Name:         name,
		PartNumber:   "D-" + name,
		Category:     types.Category{Name: "Diode", Kind: types.CategoryDiode},
		Manufacturer: &types.Manufacturer{Name: "Diodes Inc"},
		Specification: types.Specification{Diode: &types.DiodeSpec{
			DiodeType: "Schottky",
		}},
	}
}

func testCatalog() []*types.Product {
	return []*types.Product{
		ledDriver(1, "constant current driver", 4.5, 40, "automotive"),
		ledDriver(2, "boost driver", 2.7, 5.5, "automotive"),
		ledDriver(3, "matrix driver", 3, 5.5, "display"),
		diode(4, "schottky barrier"),
		diode(5, "zener reference"),
	}
}

func newTestServer(t *testing.T) *WebServer {
	t.Helper()
	idx := index.NewIndex(facet.NewDefaultEngine(facet.EnglishLabels, facet.Containment), sorting.NewSorter("en"))
	require.NoError(t, idx.UpsertItems(testCatalog()...))
	ws := NewWebServer(idx, storage.NewDiskStorage(t.TempDir()))
	ws.Cache = NewMemoryCache()
	return ws
}

type client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func newClient(t *testing.T, h http.Handler) *client {
	return &client{t: t, handler: h}
}

func (c *client) do(method, target, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == common.SessionCookieName {
			c.cookies = []*http.Cookie{cookie}
		}
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var ret T
	require.NoError(t, jsoncompat.Unmarshal(rec.Body.Bytes(), &ret))
	return ret
}

func ids(items []*types.Product) []types.ProductId {
	ret := make([]types.ProductId, 0, len(items))
	for _, item := range items {
		ret = append(ret, item.Id)
	}
	return ret
}

func TestSearchProducts(t *testing.T) {
	ws := newTestServer(t)
	c := newClient(t, ws.Handler())

	rec := c.do(http.MethodGet, "/api/products?category=Diode", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[index.SearchResult](t, rec)
	assert.ElementsMatch(t, []types.ProductId{4, 5}, ids(res.Items))
	assert.Equal(t, 2, res.TotalHits)
	assert.Equal(t, 5, res.Stats.Total)
	assert.NotEmpty(t, res.Facets)
}

func TestSearchProductsRangeFilter(t *testing.T) {
	ws := newTestServer(t)
	c := newClient(t, ws.Handler())

	rec := c.do(http.MethodGet, "/api/products?inputVoltage=2-6", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[index.SearchResult](t, rec)
	assert.ElementsMatch(t, []types.ProductId{2, 3}, ids(res.Items))
}

func TestSearchProductsPost(t *testing.T) {
	ws := newTestServer(t)
	c := newClient(t, ws.Handler())

	rec := c.do(http.MethodPost, "/api/products", `{"filters":{"applications":["automotive"]},"pageSize":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[index.SearchResult](t, rec)
	assert.Equal(t, 2, res.TotalHits)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 2, res.PageCount)
}

func TestSearchResponsesAreCached(t *testing.T) {
	ws := newTestServer(t)
	c := newClient(t, ws.Handler())

	first := c.do(http.MethodGet, "/api/products?category=Diode", "")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := c.do(http.MethodGet, "/api/products?category=Diode", "")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	rec := c.do(http.MethodPost, "/admin/products", `{"id":6,"name":"tvs diode","category":{"name":"Diode"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	third := c.do(http.MethodGet, "/api/products?category=Diode", "")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	res := decode[index.SearchResult](t, third)
	assert.Equal(t, 3, res.TotalHits)
}

func TestSearchWithWarningsIsNotCached(t *testing.T) {
	ws := newTestServer(t)
	c := newClient(t, ws.Handler())

	for range 2 {
		rec := c.do(http.MethodGet, "/api/products?inputVoltage=abc", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Cache"))
		res := decode[index.SearchResult](t, rec)
		assert.Len(t, res.Warnings, 1)
		assert.Equal(t, 5, res.TotalHits)
	}
}

func TestSearchUnavailable(t *testing.T) {
	ws := newTestServer(t)
	ws.Index.SetUnavailable(errors.New("connection refused"))
	c := newClient(t, ws.Handler())

	rec := c.do(http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode[common.ErrorResponse](t, rec)
	assert.NotContains(t, body.Error, "connection refused")

	health := httptest.NewRecorder()
	ws.DebugHandler().ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, health.Code)
}

func TestHealth(t *testing.T) {
	ws := newTestServer(t)
	rec := httptest.NewRecorder()
	ws.DebugHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestGetFacets(t *testing.T) {
	ws := newTestServer(t)
	c := newClient(t, ws.Handler())

	rec := c.do(http.MethodGet, "/api/facets?category=Diode", "")
	require.Equal(t, http.StatusOK, rec.Code)
	facets := decode[[]map[string]any](t, rec)
	require.NotEmpty(t, facets)
	keys := make([]any, 0, len(facets))
	for _, f := range facets {
		keys = append(keys, f["key"])
	}
	assert.Contains(t, keys, "categories")
}

func TestFacetList(t *testing.T) {
	ws := newTestServer(t)
	c := newClient(t, ws.Handler())

	rec := c.do(http.MethodGet, "/api/facet-list", "")
	require.Equal(t, http.StatusOK, rec.Code)
	defs := decode[[]map[string]any](t, rec)
	require.NotEmpty(t, defs)
	assert.Equal(t, "categories", defs[0]["key"])
}

func TestGetProduct(t *testing.T) {
	ws := newTestServer(t)
	c := newClient(t, ws.Handler())

	rec := c.do(http.MethodGet, "/api/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[ProductDetail](t, rec)
	require.NotNil(t, detail.Product)
	assert.Equal(t, types.ProductId(1), detail.Id)
	assert.Equal(t, []types.ProductId{2}, ids(detail.Related))

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/products/99", "").Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/products/abc", "").Code)
}

func TestSuggest(t *testing.T) {
	ws := newTestServer(t)
	c := newClient(t, ws.Handler())

	rec := c.do(http.MethodGet, "/api/suggest?q=sch", "")
	require.Equal(t, http.StatusOK, rec.Code)
	matches := decode[[]SuggestResult](t, rec)
	require.NotEmpty(t, matches)
	assert.Equal(t, "schottky", matches[0].Word)

	rec = c.do(http.MethodGet, "/api/suggest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]SuggestResult](t, rec))
}

func TestPreferences(t *testing.T) {
	ws := newTestServer(t)
	c := newClient(t, ws.Handler())

	rec := c.do(http.MethodGet, "/api/preferences/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	before := decode[PreferencesResponse](t, rec)

	rec = c.do(http.MethodPut, "/api/preferences/products", `{"toggle":"outputVoltage","pageSize":50}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/api/preferences/products", "")
	after := decode[PreferencesResponse](t, rec)
	assert.Len(t, after.Visible, len(before.Visible)+1)
	assert.Equal(t, 50, after.PageSize)

	other := newClient(t, ws.Handler())
	rec = other.do(http.MethodGet, "/api/preferences/products", "")
	assert.Len(t, decode[PreferencesResponse](t, rec).Visible, len(before.Visible))

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPut, "/api/preferences/products", `{"toggle":"nope"}`).Code)
}

func TestCompare(t *testing.T) {
	ws := newTestServer(t)
	c := newClient(t, ws.Handler())

	for _, id := range []string{"1", "2", "3", "4"} {
		rec := c.do(http.MethodPost, "/api/compare", `{"id":`+id+`}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := c.do(http.MethodPost, "/api/compare", `{"id":5}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(http.MethodPost, "/api/compare", `{"id":2}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodDelete, "/api/compare?id=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[CompareResponse](t, rec)
	assert.Equal(t, []types.ProductId{1, 3, 4}, res.Ids)
	assert.Equal(t, []types.ProductId{1, 3, 4}, ids(res.Items))

	rec = c.do(http.MethodGet, "/api/compare", "")
	assert.Len(t, decode[CompareResponse](t, rec).Items, 3)

	rec = c.do(http.MethodDelete, "/api/compare", "")
	assert.Empty(t, decode[CompareResponse](t, rec).Ids)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/api/compare", `{"id":99}`).Code)
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []messaging.ChangeTopic
	quotes []*types.QuoteRequest
}

func (p *recordingPublisher) Publish(topic messaging.ChangeTopic, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	if q, ok := data.(*types.QuoteRequest); ok {
		p.quotes = append(p.quotes, q)
	}
	return nil
}

const validQuote = `{"contact":{"name":"Ada","email":"ada@example.com","phone":"+46 70 000"},"items":[{"productId":1,"quantity":100}]}`

func TestRequestQuote(t *testing.T) {
	ws := newTestServer(t)
	pub := &recordingPublisher{}
	ws.Quotes = pub
	c := newClient(t, ws.Handler())

	rec := c.do(http.MethodPost, "/api/quote", validQuote)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[QuoteResponse](t, rec)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.RequestId)

	require.Len(t, pub.quotes, 1)
	assert.Equal(t, messaging.QuoteRequested, pub.topics[0])
	assert.Equal(t, "LD-constant current driver", pub.quotes[0].Items[0].PartNumber)
	assert.Equal(t, res.RequestId, pub.quotes[0].Id)
}

func TestRequestQuoteValidation(t *testing.T) {
	ws := newTestServer(t)
	c := newClient(t, ws.Handler())

	cases := map[string]string{
		"missing email":   `{"contact":{"name":"Ada","phone":"1"},"items":[{"productId":1,"quantity":1}]}`,
		"no items":        `{"contact":{"name":"Ada","email":"ada@example.com","phone":"1"},"items":[]}`,
		"unknown product": `{"contact":{"name":"Ada","email":"ada@example.com","phone":"1"},"items":[{"productId":99,"quantity":1}]}`,
		"bad json":        `{"contact":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := c.do(http.MethodPost, "/api/quote", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			res := decode[QuoteResponse](t, rec)
			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Message)
		})
	}
}

func TestQuoteRateLimit(t *testing.T) {
	ws := newTestServer(t)
	ws.Limiter = NewMemoryLimiter(2, time.Minute)
	c := newClient(t, ws.Handler())

	for range 2 {
		rec := c.do(http.MethodPost, "/api/quote", validQuote)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := c.do(http.MethodPost, "/api/quote", validQuote)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (RateLimit, error) {
	return RateLimit{}, errors.New("redis down")
}

func TestRateLimiterFailsOpen(t *testing.T) {
	ws := newTestServer(t)
	ws.Limiter = failingLimiter{}
	c := newClient(t, ws.Handler())

	rec := c.do(http.MethodPost, "/api/quote", validQuote)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMemoryLimiterWindow(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	_, err := l.Allow(context.Background(), "k")
	require.NoError(t, err)
	_, err = l.Allow(context.Background(), "k")
	assert.ErrorIs(t, err, errx.ErrRateLimited)

	now = now.Add(2 * time.Minute)
	_, err = l.Allow(context.Background(), "k")
	assert.NoError(t, err)
}

func TestMemoryCacheExpires(t *testing.T) {
	c := NewMemoryCache()
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	a, err := c.Key(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, a, []byte("1"), time.Minute))
	data, ok := c.Get(ctx, a)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), data)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(ctx, a)
	assert.False(t, ok)

	b, err := c.Key(ctx, "b")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, b, []byte("2"), time.Minute))
	require.NoError(t, c.Invalidate(ctx))
	_, ok = c.Get(ctx, b)
	assert.False(t, ok)
}

func TestMemoryCacheSweepsExpiredEntries(t *testing.T) {
	c := NewMemoryCache()
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for i := range 10000 {
		key, _ := c.Key(ctx, fmt.Sprintf("q=%d", i))
		require.NoError(t, c.Set(ctx, key, []byte("x"), time.Second))
	}
	now = now.Add(time.Hour)
	key, _ := c.Key(ctx, "fresh")
	require.NoError(t, c.Set(ctx, key, []byte("y"), time.Second))
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCacheIsCapped(t *testing.T) {
	c := NewMemoryCache()
	c.MaxEntries = 3
	ctx := context.Background()
	for i := range 10 {
		key, _ := c.Key(ctx, fmt.Sprintf("q=%d", i))
		require.NoError(t, c.Set(ctx, key, []byte("x"), time.Hour))
	}
	assert.Equal(t, 3, c.Len())
	last, _ := c.Key(ctx, "q=9")
	_, ok := c.Get(ctx, last)
	assert.True(t, ok)
}

func TestMemoryCacheDropsStaleGeneration(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	key, err := c.Key(ctx, "products?q=led")
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Set(ctx, key, []byte("old"), time.Hour))

	current, err := c.Key(ctx, "products?q=led")
	require.NoError(t, err)
	assert.NotEqual(t, key, current)
	_, ok := c.Get(ctx, current)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryLimiterSweepsAndCaps(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := range 500 {
		_, err := l.Allow(ctx, fmt.Sprintf("rl:10.0.0.%d", i))
		require.NoError(t, err)
	}
	now = now.Add(time.Hour)
	_, err := l.Allow(ctx, "rl:fresh")
	require.NoError(t, err)
	assert.Equal(t, 1, l.Len())

	l.MaxKeys = 5
	for i := range 20 {
		_, _ = l.Allow(ctx, fmt.Sprintf("rl:other-%d", i))
	}
	assert.LessOrEqual(t, l.Len(), 5)
}

func TestClientIP(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.0.2.1 ", ""})
	require.NoError(t, err)

	cases := []struct {
		name     string
		remote   string
		xff      string
		proxies  TrustedProxies
		expected string
	}{
		{"no proxies ignores header", "203.0.113.9:5000", "1.2.3.4", nil, "203.0.113.9"},
		{"untrusted remote ignores header", "203.0.113.9:5000", "1.2.3.4", proxies, "203.0.113.9"},
		{"trusted remote uses header", "192.0.2.1:5000", "198.51.100.7", proxies, "198.51.100.7"},
		{"spoofed left hop is skipped", "10.1.1.1:5000", "6.6.6.6, 198.51.100.7, 10.2.2.2", proxies, "198.51.100.7"},
		{"garbage falls back to remote", "10.1.1.1:5000", "not-an-ip", proxies, "10.1.1.1"},
		{"missing header", "10.1.1.1:5000", "", proxies, "10.1.1.1"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = c.remote
			if c.xff != "" {
				req.Header.Set("X-Forwarded-For", c.xff)
			}
			assert.Equal(t, c.expected, c.proxies.ClientIP(req))
		})
	}

	_, err = ParseTrustedProxies([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}

func TestQuoteRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	ws := newTestServer(t)
	ws.Limiter = NewMemoryLimiter(2, time.Minute)
	h := ws.Handler()

	codes := make([]int, 0, 3)
	for i := range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/quote", strings.NewReader(validQuote))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestAdminUpsertAndDelete(t *testing.T) {
	ws := newTestServer(t)
	c := newClient(t, ws.Handler())

	rec := c.do(http.MethodPost, "/admin/products", `[{"id":10,"name":"a"},{"id":11,"name":"b"}]`)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[UpsertResponse](t, rec)
	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, 7, res.Total)

	rec = c.do(http.MethodPost, "/admin/products", `{"id":12}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 7, ws.Index.Len())

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/admin/products/10", "").Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodDelete, "/admin/products/10", "").Code)
	assert.Equal(t, 6, ws.Index.Len())
}

func TestAdminSaveAndSnapshot(t *testing.T) {
	ws := newTestServer(t)
	c := newClient(t, ws.Handler())

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/admin/snapshot", "").Code)

	require.Equal(t, http.StatusAccepted, c.do(http.MethodPost, "/admin/save", "").Code)
	rec := c.do(http.MethodGet, "/admin/snapshot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/gzip", rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())
}

func TestGoogleAuthMiddleware(t *testing.T) {
	auth, err := NewGoogleAuth("client", "secret", "http://localhost/admin/auth_callback", "token-hash", "api-key", []string{" Admin@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, []string{"admin@example.com"}, auth.adminEmails)

	var role string
	handler := auth.Middleware(func(w http.ResponseWriter, r *http.Request) {
		role = RoleFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	serve := func(setup func(r *http.Request)) int {
		role = ""
		req := httptest.NewRequest(http.MethodPost, "/products", nil)
		setup(req)
		rec := httptest.NewRecorder()
		handler(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(func(r *http.Request) {}))

	assert.Equal(t, http.StatusOK, serve(func(r *http.Request) {
		r.Header.Set("Authorization", "api-key")
	}))
	assert.Equal(t, "api", role)

	admin, err := auth.createToken("admin@example.com", "Admin", "admin")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, serve(func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: tokenCookieName, Value: admin})
	}))
	assert.Equal(t, "admin", role)

	user, err := auth.createToken("someone@example.com", "Someone", "user")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: tokenCookieName, Value: user})
	}))

	other, err := NewGoogleAuth("client", "secret", "http://localhost/cb", "other-hash", "api-key", nil)
	require.NoError(t, err)
	forged, err := other.createToken("x@example.com", "X", "admin")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: tokenCookieName, Value: forged})
	}))
}

func TestNewGoogleAuthRequiresConfig(t *testing.T) {
	_, err := NewGoogleAuth("", "secret", "cb", "hash", "key", nil)
	assert.Error(t, err)
	_, err = NewGoogleAuth("id", "secret", "cb", "", "key", nil)
	assert.Error(t, err)
}
