package match

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestRecord_UnmarshalMixedTypes(t *testing.T) {
	body := `{"league":"Süper Lig","homeTeam":"A","awayTeam":"B","homeShots":7,"awayShots":"4","homeXG":1.25,"awayXG":null}`

	var r Record
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if r.HomeShots != "7" || r.AwayShots != "4" {
		t.Errorf("shots not kept as typed: %q %q", r.HomeShots, r.AwayShots)
	}
	if r.HomeXG != "1.25" {
		t.Errorf("expected xG 1.25, got %q", r.HomeXG)
	}
	if r.AwayXG != "" {
		t.Errorf("null should become empty, got %q", r.AwayXG)
	}
	if r.Commentary != "" {
		t.Errorf("absent field should be empty, got %q", r.Commentary)
	}
}

func TestRecord_UnmarshalRejectsObjects(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"homeShots":{"x":1}}`), &r); err == nil {
		t.Fatal("expected error for object value")
	}
}

func TestRecord_FieldsExhaustive(t *testing.T) {
	// todo campo do struct precisa aparecer exatamente uma vez em Fields()
	rt := reflect.TypeOf(Record{})
	tags := map[string]int{}
	for i := 0; i < rt.NumField(); i++ {
		tags[rt.Field(i).Tag.Get("json")] = 0
	}

	fields := Record{}.Fields()
	if len(fields) != rt.NumField() {
		t.Fatalf("Fields() has %d entries, struct has %d fields", len(fields), rt.NumField())
	}
	for _, f := range fields {
		if _, ok := tags[f.Name]; !ok {
			t.Errorf("field %q is not a struct json tag", f.Name)
		}
		tags[f.Name]++
	}
	for name, n := range tags {
		if n != 1 {
			t.Errorf("field %q appears %d times", name, n)
		}
	}
}

func TestRecord_FieldsSectionOrder(t *testing.T) {
	last := SectionIdentity
	for _, f := range (Record{}).Fields() {
		if f.Section < last {
			t.Fatalf("field %q in section %d comes after section %d", f.Name, f.Section, last)
		}
		last = f.Section
	}
}

func TestRecord_FieldsCarryValues(t *testing.T) {
	r := Record{HomeCorners: "5", Commentary: "baskı var"}
	got := map[string]Value{}
	for _, f := range r.Fields() {
		got[f.Name] = f.Value
	}
	if got["homeCorners"] != "5" || got["liveCommentary"] != "baskı var" {
		t.Errorf("values not mapped: %v", got)
	}
}

func TestRecord_TeamsLabel(t *testing.T) {
	r := Record{HomeTeam: "A", AwayTeam: "B"}
	if got := r.TeamsLabel(); got != "A vs B" {
		t.Errorf("expected %q, got %q", "A vs B", got)
	}
	if got := (Record{}).TeamsLabel(); got != " vs " {
		t.Errorf("empty record label = %q", got)
	}
}
