package main

import (
	"context"
	"fmt"
	"time"

	"samaajseva/internal/classifier"
	"samaajseva/internal/identity"
	"samaajseva/internal/kv"
	"samaajseva/internal/ledger"
	"samaajseva/internal/metrics"
	"samaajseva/pkg/types"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

func loadConfig() (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 15
	}

	if c.ClassifierTimeoutSec == 0 {
		c.ClassifierTimeoutSec = 10
	}

	if c.CookieName == "" {
		c.CookieName = "session_id"
	}

	if c.StoreDriver == string(kv.DriverPostgres) && c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	return c, nil
}

func newLogger(config *types.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		logger.WithError(err).WithField("log_level", config.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

// app is the set of components every command works against.
type app struct {
	config  *types.Config
	logger  *logrus.Logger
	store   kv.Store
	metrics *metrics.Metrics
	users   *identity.Provider
	ledger  *ledger.Ledger
	intake  *ledger.Intake
}

func newApp(ctx context.Context) (*app, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := newLogger(config)

	store, err := kv.Open(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", config.StoreDriver, err)
	}

	m := metrics.New()

	l, err := ledger.New(ctx, store, logger, m)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var c ledger.Classifier
	if config.ClassifierURL != "" {
		c = classifier.New(config.ClassifierURL, time.Duration(config.ClassifierTimeoutSec)*time.Second, logger, m)
	}

	return &app{
		config:  config,
		logger:  logger,
		store:   store,
		metrics: m,
		users:   identity.New(store, logger),
		ledger:  l,
		intake:  ledger.NewIntake(l, c, logger, m),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// session returns the CLI session, restored from the store.
func (a *app) session(ctx context.Context) (*identity.Session, error) {
	sess := identity.NewSession(a.store, identity.DefaultSessionKey)
	if err := sess.Load(ctx, a.logger); err != nil {
		return nil, err
	}
	return sess, nil
}
