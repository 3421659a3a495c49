package etcd

import (
	"time"

	etcd "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"github.com/tarantool/go-revision/internal/options"
)

const defaultDialTimeout = 5 * time.Second

type config struct {
	logger      *zap.Logger
	dialTimeout time.Duration
	username    string
	password    string
}

// Option configures the driver and, for Connect, the etcd client.
type Option = options.Callback[config]

// WithLogger sets the logger for transaction traces and the etcd client.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithDialTimeout bounds the initial connection made by Connect.
func WithDialTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.dialTimeout = timeout
	}
}

// WithCredentials authenticates Connect with a user name and password.
func WithCredentials(username, password string) Option {
	return func(c *config) {
		c.username = username
		c.password = password
	}
}

func applyOptions(opts []Option) config {
	return options.Apply(func() config {
		return config{
			logger:      zap.NewNop(),
			dialTimeout: defaultDialTimeout,
			username:    "",
			password:    "",
		}
	}, opts)
}

func (c config) clientConfig(endpoints []string) etcd.Config {
	return etcd.Config{ //nolint:exhaustruct
		Endpoints:   endpoints,
		DialTimeout: c.dialTimeout,
		Username:    c.username,
		Password:    c.password,
		Logger:      c.logger.Named("etcd"),
	}
}
