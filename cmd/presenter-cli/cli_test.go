package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-presenter/pkg/testsupport"
)

const manifestYAML = `
decorators:
  ProductDecorator:
    model: Product
    associations: [store]
    methods:
      price_label: "{{ price|currency }}"
  ProductCompactDecorator:
    model: Product
    version: compact
    allow: [ID, Name]
  StoreDecorator:
    model: Store
    methods:
      display_name: "{{ name|upper }}"
`

const recordsYAML = `
- id: 1
  name: Lamp
  price: 12.5
  store:
    _type: Store
    id: 7
    name: Corner
- id: 2
  name: Desk
  price: 80
  store: null
`

func writeFixtures(t *testing.T) (manifestPath, dataPath string) {
	t.Helper()
	dir := t.TempDir()
	manifestPath = filepath.Join(dir, "presenters.yaml")
	dataPath = filepath.Join(dir, "products.yaml")
	if err := os.WriteFile(manifestPath, []byte(manifestYAML), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if err := os.WriteFile(dataPath, []byte(recordsYAML), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}
	return manifestPath, dataPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	manifestPath, dataPath := writeFixtures(t)

	out, err := run(t, "render", "--manifest", manifestPath, "--data", dataPath, "--type", "Product",
		"--only", "id,name", "--methods", "price_label", "--include", "store")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := `[{"id":1,"name":"Lamp","price_label":"$12.50","store":{"id":7,"name":"Corner"}},{"id":2,"name":"Desk","price_label":"$80.00"}]`
	if got := testsupport.CompactJSON(t, []byte(out)); got != want {
		t.Fatalf("unexpected output\nwant %s\ngot  %s", want, got)
	}
}

func TestRenderCommandVersion(t *testing.T) {
	manifestPath, dataPath := writeFixtures(t)

	out, err := run(t, "render", "-m", manifestPath, "-d", dataPath, "-t", "Product",
		"--version", "compact", "--only", "id", "--methods", "name,price")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `[{"id":1,"name":"Lamp"},{"id":2,"name":"Desk"}]`
	if got := testsupport.CompactJSON(t, []byte(out)); got != want {
		t.Fatalf("unexpected output %s", got)
	}
}

func TestRenderCommandInteractive(t *testing.T) {
	manifestPath, dataPath := writeFixtures(t)

	original := selectVersion
	t.Cleanup(func() { selectVersion = original })
	var offered []string
	selectVersion = func(typeName string, versions []string) (string, error) {
		offered = versions
		return "compact", nil
	}

	out, err := run(t, "render", "-m", manifestPath, "-d", dataPath, "-t", "Product", "-i", "--only", "id", "--methods", "price_label")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]string{"compact", "default"}, offered); diff != "" {
		t.Fatalf("versions mismatch (-want +got):\n%s", diff)
	}
	if got := testsupport.CompactJSON(t, []byte(out)); got != `[{"id":1},{"id":2}]` {
		t.Fatalf("unexpected output %s", got)
	}
}

func TestRenderCommandWritesFile(t *testing.T) {
	manifestPath, dataPath := writeFixtures(t)
	target := filepath.Join(t.TempDir(), "out.json")

	if _, err := run(t, "render", "-m", manifestPath, "-d", dataPath, "-t", "Product", "--only", "id", "-o", target); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if got := testsupport.CompactJSON(t, data); got != `[{"id":1},{"id":2}]` {
		t.Fatalf("unexpected file contents %s", got)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	manifestPath, dataPath := writeFixtures(t)

	cases := map[string][]string{
		"missing manifest": {"render", "-m", filepath.Join(t.TempDir(), "nope.yaml"), "-d", dataPath, "-t", "Product"},
		"unknown type":     {"render", "-m", manifestPath, "-d", dataPath, "-t", "Gadget"},
		"missing flags":    {"render", "-m", manifestPath},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := run(t, args...); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestDecoratorsCommand(t *testing.T) {
	manifestPath, _ := writeFixtures(t)

	out, err := run(t, "decorators", "-m", manifestPath)
	if err != nil {
		t.Fatalf("decorators: %v", err)
	}
	for _, want := range []string{"ProductCompactDecorator", "allow", "PriceLabel", "StoreDecorator"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	out, err = run(t, "decorators", "-m", manifestPath, "--json")
	if err != nil {
		t.Fatalf("decorators --json: %v", err)
	}
	var views []registrationView
	if err := gojson.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	var names []string
	for _, view := range views {
		names = append(names, view.Model+"/"+view.Version+"="+view.Decorator)
	}
	want := []string{
		"Product/compact=ProductCompactDecorator",
		"Product/default=ProductDecorator",
		"Store/default=StoreDecorator",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("registrations mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemaCommand(t *testing.T) {
	manifestPath, dataPath := writeFixtures(t)

	out, err := run(t, "schema", "-m", manifestPath, "-d", dataPath, "-t", "Product",
		"--only", "id,name", "--methods", "price_label", "--title", "Shop")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Components struct {
			Schemas map[string]struct {
				Type       string                    `json:"type"`
				Properties map[string]map[string]any `json:"properties"`
				Items      map[string]any            `json:"items"`
			} `json:"schemas"`
		} `json:"components"`
	}
	if err := gojson.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if doc.Info.Title != "Shop" {
		t.Fatalf("unexpected title %q", doc.Info.Title)
	}
	product := doc.Components.Schemas["ProductDecorator"]
	if product.Type != "object" || product.Properties["price_label"]["type"] != "string" {
		t.Fatalf("unexpected product schema %+v", product)
	}
	list := doc.Components.Schemas["ProductDecoratorList"]
	if list.Type != "array" || list.Items["$ref"] != "#/components/schemas/ProductDecorator" {
		t.Fatalf("unexpected list schema %+v", list)
	}
}
