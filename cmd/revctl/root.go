package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tarantool/go-revision/codec"
	"github.com/tarantool/go-revision/marshaller"
	"github.com/tarantool/go-revision/options"
)

const (
	docYAML   = "yaml"
	docHuJSON = "hujson"
)

// app holds the persistent flags and the collaborators built from them.
type app struct {
	format    string
	docFormat string
	verbose   bool

	stdout   io.Writer
	stderr   io.Writer
	logger   *zap.Logger
	backends backends
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	return newApp(stdout, stderr).rootCommand()
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		format:    codec.FormatBinary.String(),
		docFormat: docYAML,
		verbose:   false,
		stdout:    stdout,
		stderr:    stderr,
		logger:    zap.NewNop(),
		backends:  defaultBackends(),
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "revctl",
		Short: "Work with revisioned option records",
		Long: `revctl converts storage engine options between human-edited documents
(YAML or HuJSON) and revisioned records, inspects record headers and keeps
records in an embedded store.

Examples:
  revctl defaults > options.yaml
  revctl encode options.yaml -o options.rec
  revctl inspect options.rec
  revctl store put engine options.yaml --data-dir ./data --hash sha256
  revctl store list --etcd-endpoints http://127.0.0.1:2379
  revctl store get engine --tarantool-addr 127.0.0.1:3301`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}

	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.format, "format", "f", a.format, "record primitive format (binary or msgpack)")
	flags.StringVar(&a.docFormat, "doc-format", a.docFormat, "document format (yaml or hujson)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		a.defaultsCommand(),
		a.encodeCommand(),
		a.decodeCommand(),
		a.inspectCommand(),
		a.storeCommand(),
	)

	return root
}

func (a *app) setup() error {
	level := zapcore.WarnLevel
	if a.verbose {
		level = zapcore.DebugLevel
	}

	a.logger = zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(a.stderr),
		level,
	))

	if _, err := a.recordFormat(); err != nil {
		return err
	}

	_, err := a.documents()

	return err
}

func (a *app) recordFormat() (codec.Format, error) {
	format, err := codec.ParseFormat(a.format)
	if err != nil {
		return 0, fmt.Errorf("invalid --format: %w", err)
	}

	return format, nil
}

func (a *app) records() marshaller.TypedRevisionMarshaller[options.Options] {
	format, _ := a.recordFormat()
	return marshaller.NewTypedRevisionMarshaller(options.Schema, format)
}

// documents returns the document marshaller. Fields missing from a
// document keep their default values.
func (a *app) documents() (marshaller.TypedMarshaller[options.Options], error) {
	switch a.docFormat {
	case docYAML:
		return marshaller.NewTypedYamlMarshallerWithDefaults(options.Default), nil
	case docHuJSON:
		return marshaller.NewTypedHuJSONMarshaller(options.Default), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownDocFormat, a.docFormat)
	}
}

// readInput reads a file, or standard input for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return data, nil
}

// writeOutput replaces path atomically, or writes to standard output when
// path is empty.
func (a *app) writeOutput(path string, data []byte) error {
	if path == "" {
		if _, err := a.stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}

		return nil
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	a.logger.Debug("wrote file", zap.String("path", path), zap.Int("bytes", len(data)))

	return nil
}
