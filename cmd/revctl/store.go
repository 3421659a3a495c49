package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tarantool/go-revision/crypto"
	"github.com/tarantool/go-revision/driver"
	"github.com/tarantool/go-revision/driver/etcd"
	"github.com/tarantool/go-revision/driver/pebble"
	"github.com/tarantool/go-revision/driver/tcs"
	"github.com/tarantool/go-revision/hasher"
	"github.com/tarantool/go-revision/options"
	"github.com/tarantool/go-revision/store"
)

const defaultTimeout = 5 * time.Second

// storeFlags are shared by every store subcommand.
type storeFlags struct {
	dataDir   string
	prefix    string
	hashes    []string
	signKey   string
	verifyKey string

	etcdEndpoints []string
	tarantool     []string
	function      string
	user          string
	password      string
	timeout       time.Duration
}

// storeDriver is a driver owning its connection or files.
type storeDriver interface {
	driver.Driver
	Close() error
}

// backends open the store drivers.
type backends struct {
	pebble    func(dir string, opts ...pebble.Option) (storeDriver, error)
	etcd      func(endpoints []string, opts ...etcd.Option) (storeDriver, error)
	tarantool func(ctx context.Context, addrs []string, opts ...tcs.Option) (storeDriver, error)
}

func defaultBackends() backends {
	return backends{
		pebble: func(dir string, opts ...pebble.Option) (storeDriver, error) {
			drv, err := pebble.Open(dir, opts...)
			if err != nil {
				return nil, err //nolint:wrapcheck
			}

			return drv, nil
		},
		etcd: func(endpoints []string, opts ...etcd.Option) (storeDriver, error) {
			drv, err := etcd.Connect(endpoints, opts...)
			if err != nil {
				return nil, err //nolint:wrapcheck
			}

			return drv, nil
		},
		tarantool: func(ctx context.Context, addrs []string, opts ...tcs.Option) (storeDriver, error) {
			drv, err := tcs.Connect(ctx, addrs, opts...)
			if err != nil {
				return nil, err //nolint:wrapcheck
			}

			return drv, nil
		},
	}
}

func (a *app) storeCommand() *cobra.Command {
	flags := &storeFlags{
		dataDir:       "./data",
		prefix:        "/options/",
		hashes:        nil,
		signKey:       "",
		verifyKey:     "",
		etcdEndpoints: nil,
		tarantool:     nil,
		function:      "",
		user:          "",
		password:      "",
		timeout:       defaultTimeout,
	}

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep option records in a store",
		Long: `Keep option records in a store. Records live in an embedded store under
--data-dir unless --etcd-endpoints or --tarantool-addr name a remote one.`,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.dataDir, "data-dir", flags.dataDir, "embedded store directory")
	pf.StringVar(&flags.prefix, "prefix", flags.prefix, "key prefix of the records")
	pf.StringSliceVar(&flags.hashes, "hash", nil, "hash algorithms stored next to each record (sha256, sha1, crc32)")
	pf.StringVar(&flags.signKey, "sign-key", "", "PEM RSA private key used to sign and verify records")
	pf.StringVar(&flags.verifyKey, "verify-key", "", "PEM RSA public key used to verify records")
	pf.StringSliceVar(&flags.etcdEndpoints, "etcd-endpoints", nil, "keep records in the etcd cluster at these endpoints")
	pf.StringSliceVar(&flags.tarantool, "tarantool-addr", nil, "keep records in Tarantool config storage at these addresses")
	pf.StringVar(&flags.function, "tarantool-function", "", "transaction function of Tarantool config storage")
	pf.StringVar(&flags.user, "user", "", "remote store user")
	pf.StringVar(&flags.password, "password", "", "remote store password")
	pf.DurationVar(&flags.timeout, "timeout", flags.timeout, "remote store connect and request timeout")

	cmd.AddCommand(
		a.storePutCommand(flags),
		a.storeGetCommand(flags),
		a.storeDeleteCommand(flags),
		a.storeListCommand(flags),
	)

	return cmd
}

func (a *app) openDriver(ctx context.Context, flags *storeFlags) (storeDriver, error) {
	switch {
	case len(flags.etcdEndpoints) > 0 && len(flags.tarantool) > 0:
		return nil, errConflictingStore
	case len(flags.etcdEndpoints) > 0:
		a.logger.Debug("opening etcd store", zap.Strings("endpoints", flags.etcdEndpoints))

		opts := []etcd.Option{etcd.WithLogger(a.logger), etcd.WithDialTimeout(flags.timeout)}
		if flags.user != "" {
			opts = append(opts, etcd.WithCredentials(flags.user, flags.password))
		}

		return a.backends.etcd(flags.etcdEndpoints, opts...)
	case len(flags.tarantool) > 0:
		a.logger.Debug("opening tarantool store", zap.Strings("addrs", flags.tarantool))

		opts := []tcs.Option{tcs.WithLogger(a.logger), tcs.WithTimeout(flags.timeout)}
		if flags.user != "" {
			opts = append(opts, tcs.WithCredentials(flags.user, flags.password))
		}

		if flags.function != "" {
			opts = append(opts, tcs.WithFunction(flags.function))
		}

		return a.backends.tarantool(ctx, flags.tarantool, opts...)
	default:
		a.logger.Debug("opening embedded store", zap.String("dir", flags.dataDir))

		return a.backends.pebble(flags.dataDir, pebble.WithLogger(a.logger))
	}
}

func (a *app) builder(flags *storeFlags) (store.Builder[options.Options], error) {
	builder := store.NewBuilder[options.Options](nil, a.records()).
		WithPrefix(flags.prefix).
		WithLogger(a.logger)

	for _, name := range flags.hashes {
		h, err := hasher.ByName(name)
		if err != nil {
			return builder, err //nolint:wrapcheck
		}

		builder = builder.WithHasher(h)
	}

	switch {
	case flags.signKey != "":
		data, err := os.ReadFile(flags.signKey)
		if err != nil {
			return builder, fmt.Errorf("failed to read sign key: %w", err)
		}

		key, err := crypto.ParsePrivateKeyPEM(data)
		if err != nil {
			return builder, err //nolint:wrapcheck
		}

		builder = builder.WithSignerVerifier(crypto.NewRSAPSS(key, nil))
	case flags.verifyKey != "":
		data, err := os.ReadFile(flags.verifyKey)
		if err != nil {
			return builder, fmt.Errorf("failed to read verify key: %w", err)
		}

		key, err := crypto.ParsePublicKeyPEM(data)
		if err != nil {
			return builder, err //nolint:wrapcheck
		}

		builder = builder.WithVerifier(crypto.NewRSAPSS(nil, key))
	}

	return builder, nil
}

// withStore opens the store, runs fn and closes the store.
func (a *app) withStore(
	ctx context.Context,
	flags *storeFlags,
	fn func(*store.Typed[options.Options]) error,
) (err error) {
	builder, err := a.builder(flags)
	if err != nil {
		return err
	}

	drv, err := a.openDriver(ctx, flags)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := drv.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	typed, err := builder.WithStorage(store.New(drv)).Build()
	if err != nil {
		return err //nolint:wrapcheck
	}

	return fn(typed)
}

func (a *app) storePutCommand(flags *storeFlags) *cobra.Command {
	var (
		expect     int64
		noValidate bool
	)

	cmd := &cobra.Command{
		Use:   "put <name> <document|->",
		Short: "Encode a document and store it under name",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.readDocument(cmd, args[1])
			if err != nil {
				return err
			}

			if !noValidate {
				if err := opts.Validate(); err != nil {
					return fmt.Errorf("%w: %w", errInvalidOptions, err)
				}
			}

			var putOpts []store.PutOption
			if cmd.Flags().Changed("expect-revision") {
				putOpts = append(putOpts, store.WithExpectedRevision(expect))
			}

			return a.withStore(cmd.Context(), flags, func(typed *store.Typed[options.Options]) error {
				return typed.Put(cmd.Context(), args[0], opts, putOpts...) //nolint:wrapcheck
			})
		},
	}

	cmd.Flags().Int64Var(&expect, "expect-revision", 0,
		"only write when the stored record has this modification revision (0: record must not exist)")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip the option sanity checks")

	return cmd
}

func (a *app) storeGetCommand(flags *storeFlags) *cobra.Command {
	var (
		output string
		ignore bool
	)

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Print a stored record as a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var getOpts []store.GetOption
			if ignore {
				getOpts = append(getOpts, store.IgnoreVerificationError())
			}

			return a.withStore(cmd.Context(), flags, func(typed *store.Typed[options.Options]) error {
				result, err := typed.Get(cmd.Context(), args[0], getOpts...)
				if err != nil {
					return err //nolint:wrapcheck
				}

				if result.Error != nil {
					a.logger.Warn("record failed verification",
						zap.String("name", result.Name), zap.Error(result.Error))
				}

				docs, err := a.documents()
				if err != nil {
					return err
				}

				doc, err := docs.Marshal(result.Value.Unwrap())
				if err != nil {
					return err //nolint:wrapcheck
				}

				return a.writeOutput(output, doc)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of standard output")
	cmd.Flags().BoolVar(&ignore, "ignore-verification", false, "print records that fail hash or signature checks")

	return cmd
}

func (a *app) storeDeleteCommand(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored record with its hashes and signatures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), flags, func(typed *store.Typed[options.Options]) error {
				return typed.Delete(cmd.Context(), args[0]) //nolint:wrapcheck
			})
		},
	}
}

func (a *app) storeListCommand(flags *storeFlags) *cobra.Command {
	var ignore bool

	cmd := &cobra.Command{
		Use:   "list [name-prefix]",
		Short: "List stored records",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			namePrefix := ""
			if len(args) > 0 {
				namePrefix = args[0]
			}

			var getOpts []store.GetOption
			if ignore {
				getOpts = append(getOpts, store.IgnoreVerificationError())
			}

			return a.withStore(cmd.Context(), flags, func(typed *store.Typed[options.Options]) error {
				return a.list(cmd.Context(), typed, namePrefix, getOpts)
			})
		},
	}

	cmd.Flags().BoolVar(&ignore, "ignore-verification", false, "list records that fail hash or signature checks")

	return cmd
}

func (a *app) list(
	ctx context.Context,
	typed *store.Typed[options.Options],
	namePrefix string,
	getOpts []store.GetOption,
) error {
	results, err := typed.Range(ctx, namePrefix, getOpts...)
	if err != nil {
		return err //nolint:wrapcheck
	}

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0) //nolint:mnd

	fmt.Fprintln(w, "NAME\tREVISION\tMOD REVISION\tSTATUS")

	for _, result := range results {
		rev := "-"
		if stored, ok := result.Revision.Get(); ok {
			rev = fmt.Sprint(stored)
		}

		status := "ok"
		if result.Error != nil {
			status = "unverified"
		}

		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", result.Name, rev, result.ModRevision, status)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}
