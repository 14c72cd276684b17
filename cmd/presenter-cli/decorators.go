package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type registrationView struct {
	Model        string   `json:"model"`
	Version      string   `json:"version"`
	Decorator    string   `json:"decorator"`
	Parent       string   `json:"parent,omitempty"`
	Methods      []string `json:"methods,omitempty"`
	Associations []string `json:"associations,omitempty"`
	Mode         string   `json:"mode"`
}

func newDecoratorsCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "decorators",
		Short: "List the decorators registered by the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(root)
			if err != nil {
				return err
			}

			var views []registrationView
			for _, registration := range ws.registry.Registrations() {
				def := registration.Definition
				view := registrationView{
					Model:        registration.Model.Name(),
					Version:      registration.Version,
					Decorator:    def.Name(),
					Methods:      def.Methods(),
					Associations: def.Associations(),
					Mode:         def.Policy().Mode().String(),
				}
				if parent := def.Parent(); parent != nil {
					view.Parent = parent.Name()
				}
				views = append(views, view)
			}

			if asJSON {
				data, err := gojson.Marshal(views)
				if err != nil {
					return err
				}
				return writeJSON(cmd, "", data)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tVERSION\tDECORATOR\tPOLICY\tMETHODS")
			for _, view := range views {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", view.Model, view.Version, view.Decorator, view.Mode, strings.Join(view.Methods, ","))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}
