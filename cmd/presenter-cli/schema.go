package main

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-presenter/pkg/openapi"
)

func newSchemaCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}
	var title string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print an OpenAPI document describing the rendered JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, collection, err := opts.prepare(root)
			if err != nil {
				return err
			}
			if collection.Len() == 0 {
				return fmt.Errorf("schema: %s holds no records", opts.data)
			}

			list, err := openapi.CollectionSchema(collection, opts.jsonOptions())
			if err != nil {
				return err
			}
			first, err := collection.At(0)
			if err != nil {
				return err
			}
			name := first.Definition().Name()
			item := list.Items.Value
			item.Title = name
			item.Extensions = map[string]any{openapi.ExtensionVersion: first.Version()}

			items := openapi3.NewArraySchema()
			items.Items = openapi3.NewSchemaRef("#/components/schemas/"+name, item)
			doc := openapi.NewDocument(title, "1.0.0", map[string]*openapi3.Schema{
				name:          item,
				name + "List": items,
			})
			data, err := openapi.MarshalDocument(doc)
			if err != nil {
				return err
			}
			return writeJSON(cmd, opts.output, data)
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (stdout when empty)")
	cmd.Flags().StringVar(&title, "title", "Presenters", "Document title")
	return cmd
}
