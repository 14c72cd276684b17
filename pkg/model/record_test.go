package model_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-presenter/pkg/model"
)

func newRecords() (*model.Type, *model.RecordSet) {
	productType := model.NewType("Product")
	storeType := model.NewType("Store")

	store := model.NewRecord(storeType, model.AttributesFromMap(map[string]any{"id": 10, "name": "Main"}))
	lamp := model.NewRecord(productType, model.AttributesFromMap(map[string]any{"id": 1, "name": "Lamp", "unit_price": 12.5}))
	lamp.SetAssociation("store", store)
	desk := model.NewRecord(productType, model.AttributesFromMap(map[string]any{"id": 2, "name": "Desk", "unit_price": 80.0}))

	return productType, model.NewRecordSet(productType, lamp, desk)
}

func TestRecordReadMemberUsesCanonicalNames(t *testing.T) {
	_, set := newRecords()
	lamp := set.At(0).(*model.Record)

	if got, ok := lamp.ReadMember("UnitPrice"); !ok || got != 12.5 {
		t.Fatalf("expected unit price, got %v %v", got, ok)
	}
	if got, ok := lamp.ReadMember("store"); !ok || got == nil {
		t.Fatalf("expected store association, got %v %v", got, ok)
	}
	if _, ok := lamp.ReadMember("Missing"); ok {
		t.Fatalf("expected missing member")
	}
	if lamp.ToParam() != "1" {
		t.Fatalf("unexpected param %q", lamp.ToParam())
	}
}

func TestRecordSerialize(t *testing.T) {
	_, set := newRecords()
	lamp := set.At(0).(*model.Record)

	got, err := lamp.Serialize(model.SerializeOptions{
		Except:  []string{"unit_price"},
		Include: map[string]model.SerializeOptions{"store": {Only: []string{"name"}}},
	})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	var storeAttrs model.Attributes
	storeAttrs.Set("name", "Main")
	var want model.Attributes
	want.Set("id", 1)
	want.Set("name", "Lamp")
	want.Set("store", storeAttrs)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("attributes mismatch (-want +got):\n%s", diff)
	}

	if _, err := lamp.Serialize(model.SerializeOptions{Methods: []string{"nope"}}); !errors.Is(err, model.ErrNoMember) {
		t.Fatalf("expected ErrNoMember, got %v", err)
	}
}

func TestRecordEquality(t *testing.T) {
	productType, set := newRecords()
	lamp := set.At(0).(*model.Record)
	clone := model.NewRecord(productType, model.AttributesFromMap(map[string]any{"id": "1"}))
	other := model.NewRecord(model.NewType("Product"), model.AttributesFromMap(map[string]any{"id": 1}))

	if !model.Equal(lamp, clone) {
		t.Fatalf("expected records with the same id to be equal")
	}
	if model.Equal(lamp, other) {
		t.Fatalf("expected records of different types to differ")
	}
	if model.Equal(lamp, set.At(1)) {
		t.Fatalf("expected different ids to differ")
	}
}

func TestRecordSetFinder(t *testing.T) {
	_, set := newRecords()

	first, err := set.First()
	if err != nil || first.(*model.Record).ID() != 1 {
		t.Fatalf("unexpected first %v %v", first, err)
	}
	last, err := set.Last()
	if err != nil || last.(*model.Record).ID() != 2 {
		t.Fatalf("unexpected last %v %v", last, err)
	}
	if _, err := set.FindByID(99); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := set.Where("name", "Desk").Len(); got != 1 {
		t.Fatalf("expected one match, got %d", got)
	}

	empty := model.NewRecordSet(model.NewType("Empty"))
	if _, err := empty.First(); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty set, got %v", err)
	}
}

func TestDecorationCache(t *testing.T) {
	var cache model.DecorationCache

	value, loaded := cache.LoadOrStore("a", 1)
	if loaded || value != 1 {
		t.Fatalf("expected first store, got %v %v", value, loaded)
	}
	value, loaded = cache.LoadOrStore("a", 2)
	if !loaded || value != 1 {
		t.Fatalf("expected cached value, got %v %v", value, loaded)
	}
	cache.Store("b", 3)
	if cache.Len() != 2 {
		t.Fatalf("expected two entries, got %d", cache.Len())
	}
	cache.Reset()
	if _, ok := cache.Load("a"); ok {
		t.Fatalf("expected reset cache to be empty")
	}
}
