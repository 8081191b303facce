package groupconfig

import (
	"reflect"
	"testing"
)

func TestConfigCategory(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "string", raw: `{"category":"General"}`, want: "General"},
		{name: "empty string", raw: `{"category":""}`, want: ""},
		{name: "number", raw: `{"category":5}`, want: ""},
		{name: "null", raw: `{"category":null}`, want: ""},
		{name: "missing", raw: `{"owner":"ops"}`, want: ""},
		{name: "empty config", raw: "", want: ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := (Config{raw: tc.raw}).Category(); got != tc.want {
				t.Fatalf("Category(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestConfigWithCategory(t *testing.T) {
	t.Parallel()

	c := Config{raw: `{"owner":"ops","category":"Old"}`}
	got := c.WithCategory("New")
	if got.Category() != "New" {
		t.Fatalf("Category() = %q, want New", got.Category())
	}
	if v, ok := got.Get("owner"); !ok || v != "ops" {
		t.Fatalf("owner = %q, %v", v, ok)
	}
	if c.Category() != "Old" {
		t.Fatalf("WithCategory must not mutate receiver")
	}

	empty := Config{}.WithCategory("General")
	if empty.Raw() != `{"category":"General"}` {
		t.Fatalf("empty.WithCategory raw = %q", empty.Raw())
	}
}

func TestFromMap(t *testing.T) {
	t.Parallel()

	c := FromMap(map[string]string{"category": "General", "a.b": "x"})
	want := map[string]string{"category": "General", "a.b": "x"}
	if got := c.Map(); !reflect.DeepEqual(got, want) {
		t.Fatalf("FromMap().Map() = %v, want %v", got, want)
	}
	if keys := c.Keys(); !reflect.DeepEqual(keys, []string{"a.b", "category"}) {
		t.Fatalf("Keys() = %v", keys)
	}
	if !FromMap(nil).IsEmpty() {
		t.Fatalf("FromMap(nil) should be empty")
	}
}

func TestShapeString(t *testing.T) {
	t.Parallel()

	for shape, want := range map[Shape]string{
		ShapeAbsent:  "absent",
		ShapeInvalid: "invalid",
		ShapeObject:  "object",
		ShapeArray:   "array",
		ShapeScalar:  "scalar",
		Shape(99):    "unknown",
	} {
		if got := shape.String(); got != want {
			t.Fatalf("Shape(%d).String() = %q, want %q", int(shape), got, want)
		}
	}
}

func TestCategoryOnly(t *testing.T) {
	t.Parallel()

	c := categoryOnly(`Eng "core"`)
	if got := c.Category(); got != `Eng "core"` {
		t.Fatalf("Category() = %q", got)
	}
	if got := c.Raw(); got != `{"category":"Eng \"core\""}` {
		t.Fatalf("Raw() = %q", got)
	}
	if keys := c.Keys(); !reflect.DeepEqual(keys, []string{"category"}) {
		t.Fatalf("Keys() = %v", keys)
	}
}
