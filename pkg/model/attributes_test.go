package model_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-presenter/pkg/model"
)

func TestAttributesKeepInsertionOrder(t *testing.T) {
	var attrs model.Attributes
	attrs.Set("name", "Lamp")
	attrs.Set("id", 7)
	attrs.Set("name", "Desk Lamp")

	if diff := cmp.Diff([]string{"name", "id"}, attrs.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if got, _ := attrs.Get("name"); got != "Desk Lamp" {
		t.Fatalf("expected overwritten value, got %v", got)
	}
}

func TestAttributesMergeOtherWins(t *testing.T) {
	base := model.AttributesFromMap(map[string]any{"id": 1, "title": "raw"})
	computed := model.AttributesFromMap(map[string]any{"title": "Shiny", "awesome": true})

	merged := base.Merge(computed)

	var want model.Attributes
	want.Set("id", 1)
	want.Set("title", "Shiny")
	want.Set("awesome", true)
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
	if got, _ := base.Get("title"); got != "raw" {
		t.Fatalf("merge mutated receiver: %v", got)
	}
}

func TestAttributesMarshalJSONKeepsOrder(t *testing.T) {
	var attrs model.Attributes
	attrs.Set("zeta", 1)
	attrs.Set("alpha", "a")
	var nested model.Attributes
	nested.Set("b", true)
	attrs.Set("nested", nested)

	data, err := attrs.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(data), `{"zeta":1,"alpha":"a","nested":{"b":true}}`; got != want {
		t.Fatalf("unexpected json: %s", got)
	}
}

func TestAttributesDelete(t *testing.T) {
	attrs := model.AttributesFromMap(map[string]any{"a": 1, "b": 2, "c": 3})
	attrs.Delete("b")
	attrs.Delete("missing")

	if diff := cmp.Diff([]string{"a", "c"}, attrs.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if attrs.Has("b") {
		t.Fatalf("expected b to be removed")
	}
}
