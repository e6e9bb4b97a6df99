package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/matst80/slask-parts/pkg/common"
	"github.com/matst80/slask-parts/pkg/config"
	"github.com/matst80/slask-parts/pkg/facet"
	"github.com/matst80/slask-parts/pkg/index"
	"github.com/matst80/slask-parts/pkg/logx"
	"github.com/matst80/slask-parts/pkg/messaging"
	"github.com/matst80/slask-parts/pkg/server"
	"github.com/matst80/slask-parts/pkg/sorting"
	"github.com/matst80/slask-parts/pkg/storage"
	"github.com/matst80/slask-parts/pkg/table"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	changeBatchSize     = 100
	changeBatchInterval = 5 * time.Second
	preferencesTTL      = 90 * 24 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to load config")
	}
	logx.Init(cfg.LogOpts())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := facet.NewDefaultEngine(facet.LabelsFor(cfg.Locale), facet.ParseRangeMode(cfg.RangeMode))
	idx := index.NewIndex(engine, sorting.NewSorter(cfg.Locale))
	idx.CountMode = facet.ParseCountMode(cfg.CountMode)
	db := storage.NewDiskStorage(cfg.DataDir)

	loadCatalog(ctx, cfg, idx, db)
	logx.Info().Int("items", idx.Len()).Str("node", cfg.NodeName).Bool("admin", cfg.Admin).Msg("catalog loaded")

	srv := server.NewWebServer(idx, db)
	srv.CacheTTL = cfg.CacheTTL
	proxies, err := server.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logx.Fatal().Err(err).Msg("invalid TRUSTED_PROXIES")
	}
	srv.Proxies = proxies
	if cfg.Redis.Enabled() {
		client, err := cfg.Redis.New(ctx)
		if err != nil {
			logx.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		srv.Cache = server.NewRedisCache(client, "parts:cache")
		srv.Limiter = server.NewRedisLimiter(client, cfg.QuoteLimit, cfg.QuoteWindow)
		srv.Preferences = table.NewRedisStore(client, preferencesTTL)
		logx.Info().Str("url", cfg.Redis.URL).Msg("using redis for cache, rate limits and preferences")
	} else {
		srv.Cache = server.NewMemoryCache()
		srv.Limiter = server.NewMemoryLimiter(cfg.QuoteLimit, cfg.QuoteWindow)
	}

	hooks := make([]common.ShutdownHook, 0, 2)
	if cfg.Rabbit.Enabled() {
		hook, err := connectRabbit(ctx, cfg, idx, srv)
		if err != nil {
			logx.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}
		hooks = append(hooks, hook)
	}

	if cfg.Google.Enabled() {
		auth, err := server.NewGoogleAuth(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.CallbackURL, cfg.Slask.TokenHash, cfg.Slask.ApiKey, cfg.Google.AdminEmails)
		if err != nil {
			logx.Fatal().Err(err).Msg("failed to configure google auth")
		}
		srv.Auth = auth
	} else if cfg.Admin {
		logx.Warn().Msg("no google client configured, admin api is open")
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", srv.ClientHandler()))
	if cfg.Admin {
		mux.Handle("/admin/", http.StripPrefix("/admin", srv.AdminHandler()))
		hooks = append(hooks, func(ctx context.Context) error {
			logx.Info().Int("items", idx.Len()).Msg("saving catalog snapshot")
			return db.SaveItems(idx.Items())
		})
	}

	servers := []*http.Server{
		common.NewServerWithTimeouts(&http.Server{Addr: cfg.ListenAddress, Handler: mux}, cfg.Timeouts),
		common.NewServerWithTimeouts(&http.Server{Addr: cfg.DebugAddress, Handler: srv.DebugHandler()}, cfg.Timeouts),
	}
	common.RunServerWithShutdown(servers, "slask-parts", cfg.Timeouts, hooks...)
}

// loadCatalog prefers postgres and falls back to the local snapshot. A failed load marks
// the index unavailable instead of serving an empty catalog.
func loadCatalog(ctx context.Context, cfg *config.Config, idx *index.Index, db *storage.DiskStorage) {
	if cfg.Postgres.Enabled() {
		pool, err := cfg.Postgres.Connect(ctx)
		if err != nil {
			logx.Error().Err(err).Msg("failed to connect to postgres")
			idx.SetUnavailable(err)
			return
		}
		defer pool.Close()
		products, err := storage.NewPostgresRepository(pool).LoadProducts(ctx)
		if err != nil {
			logx.Error().Err(err).Msg("failed to load products from postgres")
			idx.SetUnavailable(err)
			return
		}
		if err = idx.HandleItems(slices.Values(products)); err != nil {
			logx.Warn().Err(err).Msg("some products were skipped")
		}
		return
	}

	err := db.LoadItems(idx)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logx.Warn().Str("dir", cfg.DataDir).Msg("no catalog snapshot found, starting empty")
	case err != nil:
		logx.Error().Err(err).Msg("failed to load catalog snapshot")
		idx.SetUnavailable(err)
	}
}

// connectRabbit makes the admin node publish its changes and the other nodes follow them.
// Every node publishes quote requests.
func connectRabbit(ctx context.Context, cfg *config.Config, idx *index.Index, srv *server.WebServer) (common.ShutdownHook, error) {
	conn, err := amqp.DialConfig(cfg.Rabbit.Host, amqp.Config{
		Vhost:      cfg.Rabbit.VHost,
		Properties: amqp.NewConnectionProperties(),
	})
	if err != nil {
		return nil, err
	}
	prefix := cfg.Rabbit.Prefix
	if !cfg.Admin {
		publisher, err := messaging.NewRabbitPublisher(conn, prefix, messaging.QuoteRequested)
		if err != nil {
			return nil, err
		}
		srv.Quotes = publisher
		if err = messaging.ConnectReader(conn, prefix, idx); err != nil {
			return nil, err
		}
		return func(context.Context) error {
			return conn.Close()
		}, nil
	}

	publisher, err := messaging.NewRabbitPublisher(conn, prefix, messaging.ProductsUpserted, messaging.ProductDeleted, messaging.QuoteRequested)
	if err != nil {
		return nil, err
	}
	srv.Quotes = publisher
	changes := messaging.NewChangePublisher(ctx, publisher, changeBatchSize, changeBatchInterval)
	idx.ChangeHandler = changes
	logx.Info().Str("prefix", prefix).Msg("publishing catalog changes")
	return func(ctx context.Context) error {
		changes.Flush()
		return conn.Close()
	}, nil
}
