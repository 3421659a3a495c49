package main

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tarantool/go-revision/options"
)

func (a *app) defaultsCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Print the default options as a document",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			docs, err := a.documents()
			if err != nil {
				return err
			}

			data, err := docs.Marshal(options.Default())
			if err != nil {
				return err //nolint:wrapcheck
			}

			return a.writeOutput(output, data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of standard output")

	return cmd
}

func (a *app) encodeCommand() *cobra.Command {
	var (
		output     string
		noValidate bool
	)

	cmd := &cobra.Command{
		Use:   "encode <document|->",
		Short: "Encode an options document as a record at the current revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.readDocument(cmd, args[0])
			if err != nil {
				return err
			}

			if !noValidate {
				if err := opts.Validate(); err != nil {
					return fmt.Errorf("%w: %w", errInvalidOptions, err)
				}
			}

			data, err := a.records().Marshal(opts)
			if err != nil {
				return err //nolint:wrapcheck
			}

			return a.writeOutput(output, data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of standard output")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip the option sanity checks")

	return cmd
}

func (a *app) decodeCommand() *cobra.Command {
	var (
		output string
		known  uint16
	)

	cmd := &cobra.Command{
		Use:   "decode <record|->",
		Short: "Decode a record of any known revision into a document",
		Long: `Decode a record written by any revision up to the current one into a
document. Fields retired since the record was written are dropped and fields
added since take their default values.

With --known, decoding behaves like a reader built at that older revision.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			opts, err := a.decodeRecord(data, known)
			if err != nil {
				return err
			}

			docs, err := a.documents()
			if err != nil {
				return err
			}

			doc, err := docs.Marshal(opts)
			if err != nil {
				return err //nolint:wrapcheck
			}

			return a.writeOutput(output, doc)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of standard output")
	cmd.Flags().Uint16Var(&known, "known", 0, "decode as a reader of this revision (default: current)")

	return cmd
}

func (a *app) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <record|->",
		Short: "Show the revision header of a record and how it maps to the current layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			return a.inspect(data)
		},
	}
}

func (a *app) readDocument(cmd *cobra.Command, path string) (options.Options, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return options.Options{}, err
	}

	docs, err := a.documents()
	if err != nil {
		return options.Options{}, err
	}

	opts, err := docs.Unmarshal(data)
	if err != nil {
		return options.Options{}, fmt.Errorf("%s: %w", path, err)
	}

	return opts, nil
}

func (a *app) decodeRecord(data []byte, known uint16) (options.Options, error) {
	if known == 0 {
		known = options.Revision
	}

	return a.records().UnmarshalRevision(data, known) //nolint:wrapcheck
}

func (a *app) inspect(data []byte) error {
	schema := options.Schema

	rev, err := a.records().Revision(data)
	if err != nil {
		return err //nolint:wrapcheck
	}

	stored := schema.LiveFields(rev)
	current := schema.LiveFields(schema.Revision())

	var dropped, added []string

	for _, name := range stored {
		if !slices.Contains(current, name) {
			dropped = append(dropped, name)
		}
	}

	for _, name := range current {
		if !slices.Contains(stored, name) {
			added = append(added, name)
		}
	}

	status := "ok"
	if _, err := a.records().Unmarshal(data); err != nil {
		status = err.Error()
	}

	if rev < schema.Revision() {
		a.logger.Info("record needs migration", zap.Uint16("stored", rev), zap.Uint16("current", schema.Revision()))
	}

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "type:\t%s\n", schema.Name())
	fmt.Fprintf(w, "revision:\t%d\n", rev)
	fmt.Fprintf(w, "current:\t%d\n", schema.Revision())
	fmt.Fprintf(w, "fields:\t%s\n", list(stored))
	fmt.Fprintf(w, "dropped on decode:\t%s\n", list(dropped))
	fmt.Fprintf(w, "defaulted on decode:\t%s\n", list(added))
	fmt.Fprintf(w, "decode:\t%s\n", status)

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func list(names []string) string {
	if len(names) == 0 {
		return "-"
	}

	return strings.Join(names, ", ")
}
