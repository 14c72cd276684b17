package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-presenter/pkg/decorator"
	"github.com/goliatone/go-presenter/pkg/helpers"
	"github.com/goliatone/go-presenter/pkg/model"
)

type renderOptions struct {
	data        string
	typeName    string
	version     string
	only        []string
	except      []string
	methods     []string
	include     []string
	context     map[string]string
	currency    string
	interactive bool
	output      string
}

func (o *renderOptions) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.data, "data", "d", "", "YAML or JSON file holding the records")
	flags.StringVarP(&o.typeName, "type", "t", "", "Model type of the records")
	flags.StringVar(&o.version, "version", "", "Presenter version (default version when empty)")
	flags.StringSliceVar(&o.only, "only", nil, "Model attributes to keep")
	flags.StringSliceVar(&o.except, "except", nil, "Model attributes to drop")
	flags.StringSliceVar(&o.methods, "methods", nil, "Presenter methods to add")
	flags.StringSliceVar(&o.include, "include", nil, "Associations to compose")
	flags.StringToStringVar(&o.context, "context", nil, "Presenter context values (key=value)")
	flags.StringVar(&o.currency, "currency", "", "Currency symbol used by the helpers")
	flags.BoolVarP(&o.interactive, "interactive", "i", false, "Prompt for the presenter version")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("type")
}

func (o *renderOptions) jsonOptions() decorator.JSONOptions {
	opts := decorator.JSONOptions{
		SerializeOptions: model.SerializeOptions{Only: o.only, Except: o.except},
		DecoratedMethods: o.methods,
	}
	if len(o.include) > 0 {
		opts.DecoratedInclude = decorator.IncludeNames(o.include...)
	}
	return opts
}

func (o *renderOptions) decorateOptions() []decorator.Option {
	opts := []decorator.Option{decorator.WithVersion(o.version)}
	for key, value := range o.context {
		opts = append(opts, decorator.WithContextValue(key, value))
	}
	return opts
}

// prepare loads the workspace and the records and settles the version.
func (o *renderOptions) prepare(root *rootOptions) (*workspace, *decorator.Collection, error) {
	if o.currency != "" {
		helpers.SetCurrent(helpers.New(helpers.WithCurrency(o.currency, 2)))
	}

	ws, err := loadWorkspace(root)
	if err != nil {
		return nil, nil, err
	}
	records, err := ws.loadRecords(o.data, o.typeName)
	if err != nil {
		return nil, nil, err
	}

	if o.interactive && o.version == "" {
		versions := ws.versions(o.typeName)
		if len(versions) == 0 {
			return nil, nil, fmt.Errorf("no decorators registered for %s", o.typeName)
		}
		if o.version, err = selectVersion(o.typeName, versions); err != nil {
			return nil, nil, err
		}
	}
	root.logger.Debug("rendering", "type", o.typeName, "version", o.version, "records", records.Len())

	collection, err := ws.registry.DecorateCollection(records, o.decorateOptions()...)
	if err != nil {
		return nil, nil, err
	}
	return ws, collection, nil
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Decorate records and print the composed JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, collection, err := opts.prepare(root)
			if err != nil {
				return err
			}
			data, err := collection.ToJSON(opts.jsonOptions())
			if err != nil {
				return err
			}
			return writeJSON(cmd, opts.output, data)
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (stdout when empty)")
	return cmd
}

func writeJSON(cmd *cobra.Command, path string, data []byte) error {
	var buf bytes.Buffer
	if err := gojson.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')

	if strings.TrimSpace(path) == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Output written to %s\n", path)
	return nil
}
