package groupconfig

import (
	"reflect"
	"testing"
)

const (
	groupDescription          = "Everything under the sun."
	multilineGroupDescription = "Everything under the sun.\nIt has been a real fine day indeed.\nOh yea!"

	validJSON        = `{"category":"General"}`
	invalidJSON      = `{"invalid":"json"]`
	validNonHashJSON = `["general","todos"]`
)

func TestExtract(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		in        string
		wantOK    bool
		wantPlain string
		wantCand  string
	}{
		{name: "single line description", in: groupDescription + "\n" + validJSON, wantOK: true, wantPlain: groupDescription, wantCand: validJSON},
		{name: "multi line description", in: multilineGroupDescription + "\n" + validJSON, wantOK: true, wantPlain: multilineGroupDescription, wantCand: validJSON},
		{name: "no config", in: groupDescription, wantOK: false},
		{name: "multi line without config", in: multilineGroupDescription, wantOK: false},
		{name: "invalid json returned as is", in: groupDescription + "\n" + invalidJSON, wantOK: true, wantPlain: groupDescription, wantCand: invalidJSON},
		{name: "invalid json multi line", in: multilineGroupDescription + "\n" + invalidJSON, wantOK: true, wantPlain: multilineGroupDescription, wantCand: invalidJSON},
		{name: "array last line", in: groupDescription + "\n" + validNonHashJSON, wantOK: false},
		{name: "json without newline", in: validJSON, wantOK: false},
		{name: "leading space is not config", in: groupDescription + "\n " + validJSON, wantOK: false},
		{name: "empty plain text", in: "\n" + validJSON, wantOK: true, wantPlain: "", wantCand: validJSON},
		{name: "trailing newline", in: groupDescription + "\n" + validJSON + "\n", wantOK: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			plain, cand, ok := Extract(tc.in)
			if ok != tc.wantOK {
				t.Fatalf("Extract(%q) ok = %v, want %v", tc.in, ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if plain != tc.wantPlain {
				t.Fatalf("Extract(%q) plain = %q, want %q", tc.in, plain, tc.wantPlain)
			}
			if cand != tc.wantCand {
				t.Fatalf("Extract(%q) candidate = %q, want %q", tc.in, cand, tc.wantCand)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		in           string
		wantShape    Shape
		wantConfig   map[string]string
		wantStripped string
	}{
		{name: "valid json hash", in: groupDescription + "\n" + validJSON, wantShape: ShapeObject, wantConfig: map[string]string{"category": "General"}, wantStripped: groupDescription},
		{name: "valid json multi line", in: multilineGroupDescription + "\n" + validJSON, wantShape: ShapeObject, wantConfig: map[string]string{"category": "General"}, wantStripped: multilineGroupDescription},
		{name: "valid json not hash", in: groupDescription + "\n" + validNonHashJSON, wantShape: ShapeAbsent, wantConfig: map[string]string{}},
		{name: "invalid category tag", in: groupDescription + "\n" + invalidJSON, wantShape: ShapeInvalid, wantConfig: map[string]string{}},
		{name: "no config", in: groupDescription, wantShape: ShapeAbsent, wantConfig: map[string]string{}},
		{name: "extra keys kept", in: groupDescription + "\n" + `{"category":"Eng","owner":"ops","size":3}`, wantShape: ShapeObject, wantConfig: map[string]string{"category": "Eng", "owner": "ops", "size": "3"}, wantStripped: groupDescription},
		{name: "empty object", in: groupDescription + "\n{}", wantShape: ShapeObject, wantConfig: map[string]string{}, wantStripped: groupDescription},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := Parse(tc.in)
			if r.Shape != tc.wantShape {
				t.Fatalf("Parse(%q).Shape = %v, want %v", tc.in, r.Shape, tc.wantShape)
			}
			if got := r.Config.Map(); !reflect.DeepEqual(got, tc.wantConfig) {
				t.Fatalf("Parse(%q).Config = %v, want %v", tc.in, got, tc.wantConfig)
			}
			stripped, ok := r.Stripped()
			if ok != (tc.wantShape == ShapeObject) {
				t.Fatalf("Parse(%q).Stripped ok = %v", tc.in, ok)
			}
			if ok && stripped != tc.wantStripped {
				t.Fatalf("Parse(%q).Stripped = %q, want %q", tc.in, stripped, tc.wantStripped)
			}
		})
	}
}

func TestApplyIfStripped(t *testing.T) {
	t.Parallel()

	desc := groupDescription + "\n" + validJSON
	if !ApplyIfStripped(&desc, Parse(desc)) {
		t.Fatalf("expected description to be stripped")
	}
	if desc != groupDescription {
		t.Fatalf("description = %q, want %q", desc, groupDescription)
	}

	// 第二次解析已无配置可提取。
	r := Parse(desc)
	if r.Shape != ShapeAbsent || !r.Config.IsEmpty() {
		t.Fatalf("second parse = %+v, want absent", r)
	}
	if ApplyIfStripped(&desc, r) {
		t.Fatalf("second apply should be a no-op")
	}

	invalid := groupDescription + "\n" + invalidJSON
	orig := invalid
	if ApplyIfStripped(&invalid, Parse(invalid)) {
		t.Fatalf("invalid json must not be stripped")
	}
	if invalid != orig {
		t.Fatalf("invalid description changed: %q", invalid)
	}

	if ApplyIfStripped(nil, Parse(orig)) {
		t.Fatalf("nil description must be a no-op")
	}
}

func TestEmbedRoundTrip(t *testing.T) {
	t.Parallel()

	in := multilineGroupDescription + "\n" + `{"category":"Eng","owner":"ops"}`
	r := Parse(in)
	plain, ok := r.Stripped()
	if !ok {
		t.Fatalf("expected object shape, got %v", r.Shape)
	}

	out := Embed(plain, r.Config.WithCategory("Misc"))
	back := Parse(out)
	if back.Shape != ShapeObject {
		t.Fatalf("Parse(Embed(...)).Shape = %v", back.Shape)
	}
	want := map[string]string{"category": "Misc", "owner": "ops"}
	if got := back.Config.Map(); !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip config = %v, want %v", got, want)
	}
	if got, _ := back.Stripped(); got != multilineGroupDescription {
		t.Fatalf("round trip text = %q, want %q", got, multilineGroupDescription)
	}
}

func TestEmbed_EmptyConfigKeepsText(t *testing.T) {
	t.Parallel()

	if got := Embed(groupDescription, Config{}); got != groupDescription {
		t.Fatalf("Embed(empty) = %q, want %q", got, groupDescription)
	}
	got := Embed("", FromMap(map[string]string{"category": "General"}))
	if got != "\n"+validJSON {
		t.Fatalf("Embed(\"\") = %q", got)
	}
}
