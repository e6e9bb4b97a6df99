package server

import (
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/matst80/slask-parts/pkg/common"
	"github.com/matst80/slask-parts/pkg/index"
	"github.com/matst80/slask-parts/pkg/messaging"
	"github.com/matst80/slask-parts/pkg/storage"
	"github.com/matst80/slask-parts/pkg/table"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WebServer struct {
	Index       *index.Index
	Storage     *storage.DiskStorage
	Preferences table.PreferenceStore
	Auth        AuthHandler
	// optional, nil disables the feature
	Cache   ResponseCache
	Limiter Limiter
	Quotes  messaging.Publisher
	// X-Forwarded-For is only honoured from these
	Proxies TrustedProxies

	CacheTTL time.Duration
}

func NewWebServer(idx *index.Index, db *storage.DiskStorage) *WebServer {
	return &WebServer{
		Index:       idx,
		Storage:     db,
		Preferences: table.NewMemoryStore(),
		Auth:        &MockAuth{},
		CacheTTL:    5 * time.Minute,
	}
}

func (ws *WebServer) ClientHandler() *http.ServeMux {
	srv := http.NewServeMux()
	srv.HandleFunc("/products", common.JsonHandler(ws.SearchProducts))
	srv.HandleFunc("GET /products/{id}", common.JsonHandler(ws.GetProduct))
	srv.HandleFunc("/facets", common.JsonHandler(ws.GetFacets))
	srv.HandleFunc("/facet-list", common.JsonHandler(ws.FacetList))
	srv.HandleFunc("/suggest", common.JsonHandler(ws.Suggest))
	srv.HandleFunc("/preferences/{table}", common.JsonHandler(ws.HandlePreferences))
	srv.HandleFunc("/compare", common.JsonHandler(ws.HandleCompare))
	srv.HandleFunc("/quote", RateLimited(ws.Limiter, ws.Proxies, "quote", common.JsonHandler(ws.RequestQuote)))
	return srv
}

func (ws *WebServer) AdminHandler() *http.ServeMux {
	srv := http.NewServeMux()
	srv.HandleFunc("/login", ws.Auth.Login)
	srv.HandleFunc("/logout", ws.Auth.Logout)
	srv.HandleFunc("/user", ws.Auth.User)
	srv.HandleFunc("/auth_callback", ws.Auth.AuthCallback)
	srv.HandleFunc("POST /products", ws.Auth.Middleware(common.JsonHandler(ws.UpsertProducts)))
	srv.HandleFunc("DELETE /products/{id}", ws.Auth.Middleware(common.JsonHandler(ws.DeleteProduct)))
	srv.HandleFunc("POST /save", ws.Auth.Middleware(common.JsonHandler(ws.Save)))
	srv.HandleFunc("GET /snapshot", ws.Auth.Middleware(ws.Snapshot))
	return srv
}

// Handler mounts the client api under /api and the admin api under /admin.
func (ws *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", ws.ClientHandler()))
	mux.Handle("/admin/", http.StripPrefix("/admin", ws.AdminHandler()))
	return mux
}

// DebugHandler serves health, metrics and pprof on the internal listener.
func (ws *WebServer) DebugHandler() *http.ServeMux {
	srv := http.NewServeMux()
	srv.HandleFunc("/health", ws.Health)
	srv.Handle("/metrics", promhttp.Handler())
	srv.HandleFunc("/debug/pprof/", pprof.Index)
	srv.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	srv.HandleFunc("/debug/pprof/profile", pprof.Profile)
	srv.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	srv.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return srv
}

func (ws *WebServer) Health(w http.ResponseWriter, r *http.Request) {
	defaultHeaders(w, r, false, "0")
	if err := ws.Index.Ready(); err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
