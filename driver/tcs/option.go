package tcs

import (
	"fmt"
	"time"

	"github.com/tarantool/go-tarantool/v2"
	"github.com/tarantool/go-tarantool/v2/pool"
	"go.uber.org/zap"

	"github.com/tarantool/go-revision/internal/options"
)

const defaultFunction = "config.storage.txn"

type config struct {
	logger   *zap.Logger
	function string
	user     string
	password string
	timeout  time.Duration
}

// Option configures the driver and, for Connect, the pool.
type Option = options.Callback[config]

// WithLogger sets the logger for transaction traces.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithFunction overrides the name of the stored transaction function.
func WithFunction(name string) Option {
	return func(c *config) {
		c.function = name
	}
}

// WithCredentials authenticates Connect with a user name and password.
func WithCredentials(user, password string) Option {
	return func(c *config) {
		c.user = user
		c.password = password
	}
}

// WithTimeout bounds every request sent by Connect's pool.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.timeout = timeout
	}
}

func applyOptions(opts []Option) config {
	return options.Apply(func() config {
		return config{
			logger:   zap.NewNop(),
			function: defaultFunction,
			user:     "guest",
			password: "",
			timeout:  0,
		}
	}, opts)
}

func (c config) instances(addrs []string) []pool.Instance {
	instances := make([]pool.Instance, 0, len(addrs))
	for i, addr := range addrs {
		instances = append(instances, pool.Instance{
			Name: fmt.Sprintf("instance-%d", i),
			Dialer: &tarantool.NetDialer{ //nolint:exhaustruct
				Address:  addr,
				User:     c.user,
				Password: c.password,
			},
			Opts: tarantool.Opts{ //nolint:exhaustruct
				Timeout: c.timeout,
			},
		})
	}

	return instances
}
