package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/matst80/slask-parts/pkg/common"
	"github.com/matst80/slask-parts/pkg/logx"
	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	URL          string `split_words:"true"`
	Password     string `split_words:"true"`
	DB           int    `split_words:"true" default:"0"`
	ReadTimeout  int    `split_words:"true" default:"3"`
	WriteTimeout int    `split_words:"true" default:"3"`
	DialTimeout  int    `split_words:"true" default:"5"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

// New accepts a redis:// url or a plain host:port address and pings the server.
func (r RedisConfig) New(ctx context.Context) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(r.URL, "://") {
		parsed, err := redis.ParseURL(r.URL)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: r.URL, DB: r.DB}
	}
	if r.Password != "" {
		opts.Password = r.Password
	}
	opts.ReadTimeout = time.Duration(r.ReadTimeout) * time.Second
	opts.WriteTimeout = time.Duration(r.WriteTimeout) * time.Second
	opts.DialTimeout = time.Duration(r.DialTimeout) * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

type RabbitConfig struct {
	Host   string `split_words:"true"`
	VHost  string `envconfig:"VHOST"`
	Prefix string `split_words:"true" default:"parts"`
}

func (r RabbitConfig) Enabled() bool {
	return r.Host != ""
}

type PostgresConfig struct {
	URL      string `split_words:"true"`
	MaxConns int32  `split_words:"true" default:"4"`
}

func (p PostgresConfig) Enabled() bool {
	return p.URL != ""
}

func (p PostgresConfig) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(p.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres config: %w", err)
	}
	if p.MaxConns > 0 {
		cfg.MaxConns = p.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

type GoogleConfig struct {
	ClientID     string   `split_words:"true"`
	ClientSecret string   `split_words:"true"`
	AdminEmails  []string `split_words:"true"`
}

func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

type SlaskConfig struct {
	TokenHash string `split_words:"true"`
	ApiKey    string `split_words:"true"`
}

type Config struct {
	Environment   string        `envconfig:"APP_ENV" default:"development"`
	LogLevel      string        `envconfig:"LOG_LEVEL"`
	NodeName      string        `envconfig:"NODE_NAME" default:"parts"`
	ListenAddress string        `envconfig:"LISTEN_ADDRESS" default:":8080"`
	DebugAddress  string        `envconfig:"DEBUG_ADDRESS" default:":8081"`
	DataDir       string        `envconfig:"DATA_DIR" default:"data"`
	Locale        string        `envconfig:"LOCALE" default:"en"`
	CountMode     string        `envconfig:"FACET_COUNT_MODE" default:"cross"`
	RangeMode     string        `envconfig:"FACET_RANGE_MODE" default:"containment"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	QuoteLimit    int           `envconfig:"QUOTE_RATE_LIMIT" default:"10"`
	QuoteWindow   time.Duration `envconfig:"QUOTE_RATE_WINDOW" default:"1m"`
	CallbackURL   string        `envconfig:"CALLBACK_URL"`
	Admin         bool          `envconfig:"ADMIN" default:"false"`

	// comma separated CIDRs or addresses allowed to set X-Forwarded-For
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`

	Redis    RedisConfig
	Rabbit   RabbitConfig
	Postgres PostgresConfig
	Google   GoogleConfig
	Slask    SlaskConfig
	Timeouts common.TimeoutConfig
}

func (c Config) LogOpts() logx.LoggerOpts {
	return logx.LoggerOpts{
		Environment: logx.ParseEnvironment(c.Environment),
		Level:       c.LogLevel,
	}
}

// Load reads an optional .env file and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil {
			logx.Debug().Str("file", file).Msg("no env file loaded")
		}
	}
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	return cfg, nil
}
