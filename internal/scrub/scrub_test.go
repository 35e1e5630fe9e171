package scrub_test

import (
	"strings"
	"testing"

	"sumofix/internal/document"
	"sumofix/internal/scrub"
)

const auth = "https://sumo.app/api/auth/check?token=1"

func parse(t *testing.T, input string) *document.Value {
	t.Helper()
	v, err := document.Parse([]byte(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return v
}

func TestScrubProtectedSubtreesAreImmune(t *testing.T) {
	doc := parse(t, `{
		"materials":{"someKey":"`+auth+`"},
		"scene":{"someOtherKey":"`+auth+`","name":"room"},
		"textures":[{"src":"`+auth+`"}],
		"images":"`+auth+`"
	}`)

	log := scrub.Scrub(doc, scrub.DefaultOptions())

	if len(log) != 1 {
		t.Fatalf("expected 1 removal, got %+v", log)
	}
	if log[0].ParentKey != "scene" || log[0].Key != "someOtherKey" {
		t.Fatalf("unexpected removal %+v", log[0])
	}
	if document.Lookup(doc, "materials", "someKey") == nil {
		t.Fatal("protected materials.someKey was removed")
	}
	if document.Lookup(doc, "scene", "someOtherKey") != nil {
		t.Fatal("scene.someOtherKey was not removed")
	}
	if document.Lookup(doc, "images") == nil {
		t.Fatal("protected images member was removed")
	}
	if len(document.Lookup(doc, "textures").Items()) != 1 {
		t.Fatal("protected textures changed")
	}
}

func TestScrubDeletesMatchesKeepingOrder(t *testing.T) {
	doc := parse(t, `{"cfg":{"a":"`+auth+`","keep1":"x","b":"sumo.app/api/auth/check","keep2":7,"c":"pre sumo.app/api/auth/check post"}}`)

	log := scrub.Scrub(doc, scrub.DefaultOptions())

	if len(log) != 3 {
		t.Fatalf("expected 3 removals, got %d", len(log))
	}
	if got := strings.Join(document.Lookup(doc, "cfg").Object().Keys(), ","); got != "keep1,keep2" {
		t.Fatalf("remaining keys = %s", got)
	}
	var removed []string
	for _, r := range log {
		removed = append(removed, r.Path.String())
	}
	if got := strings.Join(removed, " "); got != "cfg.a cfg.b cfg.c" {
		t.Fatalf("removal paths = %s", got)
	}
}

func TestScrubTopLevelAndArrays(t *testing.T) {
	doc := parse(t, `{"auth":"check `+auth+` here","list":["`+auth+`",{"inner":"`+auth+`","ok":1}]}`)

	log := scrub.Scrub(doc, scrub.DefaultOptions())

	if document.Lookup(doc, "auth") != nil {
		t.Fatal("top-level auth not removed")
	}
	items := document.Lookup(doc, "list").Items()
	if len(items) != 2 {
		t.Fatalf("array strings must not be removed, got %d items", len(items))
	}
	if items[1].Object().Has("inner") || !items[1].Object().Has("ok") {
		t.Fatalf("unexpected object in list: %v", items[1].Object().Keys())
	}
	if len(log) != 2 || log[0].ParentKey != "" || log[1].ParentKey != "list" {
		t.Fatalf("unexpected log %+v", log)
	}
}

func TestScrubIgnoresNonStrings(t *testing.T) {
	doc := parse(t, `{"n":1,"b":true,"z":null,"o":{"s":"fine"}}`)
	before := doc.Clone()
	if log := scrub.Scrub(doc, scrub.DefaultOptions()); len(log) != 0 {
		t.Fatalf("unexpected removals %+v", log)
	}
	if !document.Equal(before, doc) {
		t.Fatal("document changed")
	}
}

func TestScrubEmptyEndpointRemovesNothing(t *testing.T) {
	doc := parse(t, `{"a":"anything"}`)
	if log := scrub.Scrub(doc, scrub.Options{}); log != nil {
		t.Fatalf("expected nil log, got %+v", log)
	}
	if !doc.Object().Has("a") {
		t.Fatal("member removed")
	}
}
