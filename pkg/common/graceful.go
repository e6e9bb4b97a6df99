package common

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matst80/slask-parts/pkg/logx"
)

// ShutdownHook runs after a termination signal is received, before the HTTP servers shut down.
// Errors are logged and shutdown continues.
type ShutdownHook func(ctx context.Context) error

// RunServerWithShutdown starts the servers and blocks until SIGINT or SIGTERM. Hooks run in
// order, each with hookTimeout, sharing the overall shutdownTimeout with the server shutdown.
//
//	server := common.NewServerWithTimeouts(&http.Server{Addr: ":8080", Handler: mux}, cfg.Timeouts)
//	common.RunServerWithShutdown([]*http.Server{server}, "catalog", cfg.Timeouts, saveHook)
func RunServerWithShutdown(servers []*http.Server, name string, timeouts TimeoutConfig, hooks ...ShutdownHook) {
	hookTimeout := timeouts.Hook
	if hookTimeout <= 0 {
		hookTimeout = 5 * time.Second
	}

	for _, server := range servers {
		go func(server *http.Server) {
			logx.Info().Str("addr", server.Addr).Msgf("starting %s", name)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logx.Fatal().Err(err).Str("addr", server.Addr).Msgf("%s listen error", name)
			}
		}(server)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logx.Info().Msgf("shutdown signal received for %s", name)

	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()

	RunHooks(ctx, hookTimeout, hooks...)

	for _, server := range servers {
		if err := server.Shutdown(ctx); err != nil {
			logx.Error().Err(err).Str("addr", server.Addr).Msg("graceful shutdown failed")
		}
	}
	logx.Info().Msgf("%s shutdown complete", name)
}

// RunHooks runs hooks sequentially with individual timeouts.
func RunHooks(ctx context.Context, hookTimeout time.Duration, hooks ...ShutdownHook) {
	for i, h := range hooks {
		if h == nil {
			continue
		}
		hCtx, hCancel := context.WithTimeout(ctx, hookTimeout)
		if err := h(hCtx); err != nil {
			logx.Error().Err(err).Int("hook", i).Msg("shutdown hook failed")
		}
		if errors.Is(hCtx.Err(), context.DeadlineExceeded) {
			logx.Warn().Int("hook", i).Msg("shutdown hook timed out")
		}
		hCancel()
	}
}

// TimeoutConfig holds server and shutdown timeouts. The env names are kept without prefix.
type TimeoutConfig struct {
	ReadHeader time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"5s"`
	Read       time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	Write      time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	Idle       time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	Shutdown   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"20s"`
	Hook       time.Duration `envconfig:"HOOK_TIMEOUT" default:"5s"`
}

// NewServerWithTimeouts attaches timeout settings to an existing *http.Server or creates a new one if nil.
func NewServerWithTimeouts(base *http.Server, cfg TimeoutConfig) *http.Server {
	if base == nil {
		base = &http.Server{}
	}
	base.ReadHeaderTimeout = cfg.ReadHeader
	base.ReadTimeout = cfg.Read
	base.WriteTimeout = cfg.Write
	base.IdleTimeout = cfg.Idle
	return base
}
