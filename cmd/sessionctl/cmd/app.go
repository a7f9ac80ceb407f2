package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/sessionkit/pkg/config"
	"github.com/dmitrymomot/sessionkit/pkg/httpserver"
	"github.com/dmitrymomot/sessionkit/pkg/identity/gotrue"
	"github.com/dmitrymomot/sessionkit/pkg/lifecycle"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/pg"
	"github.com/dmitrymomot/sessionkit/pkg/redis"
	"github.com/dmitrymomot/sessionkit/pkg/requestid"
	"github.com/dmitrymomot/sessionkit/pkg/secrets"
	"github.com/dmitrymomot/sessionkit/pkg/session"
	"github.com/dmitrymomot/sessionkit/pkg/storage"
	"github.com/dmitrymomot/sessionkit/pkg/storage/redisstore"
	"github.com/dmitrymomot/sessionkit/pkg/storage/sqlstore"
)

type appConfig struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`
}

type settings struct {
	app     appConfig
	auth    gotrue.Config
	storage storage.Config
	redis   redis.Config
	pg      pg.Config
	ops     httpserver.Config
}

func loadSettings() (settings, error) {
	var s settings
	if err := errors.Join(
		config.Load(&s.app),
		config.Load(&s.auth),
		config.Load(&s.storage),
		config.Load(&s.ops),
	); err != nil {
		return s, err
	}

	driver, err := s.storage.EffectiveDriver()
	if err != nil {
		return s, err
	}
	switch driver {
	case storage.DriverRedis:
		err = config.Load(&s.redis)
	case storage.DriverPostgres:
		err = config.Load(&s.pg)
	}
	return s, err
}

func newLogger(cfg appConfig, levelOverride string, w io.Writer) *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, "sessionctl"),
		logger.WithOutput(w),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithLevelName(levelOverride),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	switch f := logger.Format(cfg.LogFormat); f {
	case logger.FormatJSON, logger.FormatText:
		opts = append(opts, logger.WithFormat(f))
	}
	return logger.New(opts...)
}

// app owns every resource one sessionctl invocation opens.
type app struct {
	log      *slog.Logger
	registry *prometheus.Registry
	client   *gotrue.Client
	manager  *lifecycle.Manager
	probes   []httpserver.Probe
	closers  []func() error
}

func newApp(ctx context.Context, s settings, log *slog.Logger) (_ *app, err error) {
	a := &app{
		log:      log,
		registry: prometheus.NewRegistry(),
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.registry.MustRegister(collectors.NewGoCollector())

	backend, err := a.openStorage(ctx, s)
	if err != nil {
		return nil, err
	}

	client, err := gotrue.New(s.auth, gotrue.WithLogger(log))
	if err != nil {
		return nil, err
	}
	a.client = client

	store := session.NewStore(backend,
		session.WithKey(s.storage.Key),
		session.WithStoreLogger(log),
	)

	a.manager, err = lifecycle.New(client, store,
		lifecycle.WithLogger(log),
		lifecycle.WithMetrics(lifecycle.NewMetrics(a.registry)),
	)
	if err != nil {
		return nil, err
	}
	a.probes = append([]httpserver.Probe{a.managerReady}, a.probes...)
	return a, nil
}

// recordPurpose separates the record key from other uses of the master key.
const recordPurpose = "session-record"

func (a *app) openStorage(ctx context.Context, s settings) (storage.Storage, error) {
	backend, err := a.openBackend(ctx, s)
	if err != nil || s.storage.EncryptionKey == "" {
		return backend, err
	}
	key, err := secrets.ParseKey(s.storage.EncryptionKey)
	if err != nil {
		return nil, err
	}
	box, err := secrets.NewBox(key, recordPurpose)
	if err != nil {
		return nil, err
	}
	return secrets.NewSealedStorage(backend, box), nil
}

func (a *app) openBackend(ctx context.Context, s settings) (storage.Storage, error) {
	driver, err := s.storage.EffectiveDriver()
	if err != nil {
		return nil, err
	}
	a.log.DebugContext(ctx, "opening session storage", slog.String("driver", string(driver)))

	switch driver {
	case storage.DriverMemory:
		return storage.NewMemoryStorage(), nil

	case storage.DriverFile:
		return storage.NewFileStorage(s.storage.Dir)

	case storage.DriverRedis:
		client, err := redis.Connect(ctx, s.redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.probes = append(a.probes, redis.Probe(client, s.redis, s.storage.RedisPrefix+s.storage.Key))
		return redisstore.New(client, redisstore.WithPrefix(s.storage.RedisPrefix)), nil

	case storage.DriverSQLite:
		db, err := sqlstore.OpenSQLite(ctx, s.storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.probes = append(a.probes, db.PingContext)
		return sqlstore.New(ctx, db, sqlstore.DialectSQLite)

	case storage.DriverPostgres:
		pool, err := pg.Connect(ctx, s.pg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		a.probes = append(a.probes, pg.Probe(pool, s.pg, sqlstore.Table))
		st, db, err := sqlstore.NewPostgres(ctx, pool)
		if db != nil {
			a.closers = append(a.closers, db.Close)
		}
		return st, err
	}
	return nil, fmt.Errorf("%w: %s", storage.ErrUnknownDriver, driver)
}

func (a *app) managerReady(context.Context) error {
	if a.manager.Phase() != lifecycle.PhaseReady {
		return lifecycle.ErrNotReady
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	if a.manager != nil {
		errs = append(errs, a.manager.Close())
	}
	if a.client != nil {
		errs = append(errs, a.client.Close())
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// withApp loads settings, builds the app, starts the manager and runs fn.
// Every auth server call made on behalf of the command shares one request id.
func withApp(ctx context.Context, stderr io.Writer, fn func(context.Context, *app) error) error {
	ctx, _ = requestid.Ensure(ctx)
	s, err := loadSettings()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, s, newLogger(s.app, logLevel, stderr))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.manager.Start(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}
