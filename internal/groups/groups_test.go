package groups

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

func TestParseConfig(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		desc     string
		wantCfg  map[string]string
		wantDesc string
	}{
		{name: "valid JSON hash", desc: groupDescription + "\n" + validJSON, wantCfg: map[string]string{"category": "General"}, wantDesc: groupDescription},
		{name: "valid JSON multi line", desc: multilineGroupDescription + "\n" + validJSON, wantCfg: map[string]string{"category": "General"}, wantDesc: multilineGroupDescription},
		{name: "valid JSON, not hash", desc: groupDescription + "\n" + validNonHashJSON, wantCfg: map[string]string{}, wantDesc: groupDescription + "\n" + validNonHashJSON},
		{name: "invalid category tag", desc: groupDescription + "\n" + invalidJSON, wantCfg: map[string]string{}, wantDesc: groupDescription + "\n" + invalidJSON},
		{name: "no config", desc: groupDescription, wantCfg: map[string]string{}, wantDesc: groupDescription},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			g := &Group{Description: tc.desc}
			cfg := ParseConfig(g)
			if got := cfg.Map(); !reflect.DeepEqual(got, tc.wantCfg) {
				t.Fatalf("ParseConfig() = %v, want %v", got, tc.wantCfg)
			}
			if g.Description != tc.wantDesc {
				t.Fatalf("description = %q, want %q", g.Description, tc.wantDesc)
			}
		})
	}
}

func TestParseConfig_SecondCallIsEmpty(t *testing.T) {
	t.Parallel()

	g := &Group{Email: "talk@stripe.com", Description: groupDescription + "\n" + validJSON}
	UpdateConfig(g, Requestor{})
	if g.Category != "General" {
		t.Fatalf("category = %q, want General", g.Category)
	}

	cfg := ParseConfig(g)
	if !cfg.IsEmpty() {
		t.Fatalf("second ParseConfig() = %v, want empty", cfg.Map())
	}
	if g.Category != "General" {
		t.Fatalf("category changed by ParseConfig: %q", g.Category)
	}
	if g.Description != groupDescription {
		t.Fatalf("description = %q", g.Description)
	}
}

func TestUpdateConfig(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		desc string
		want string
	}{
		{name: "sets category for valid category config", desc: groupDescription + "\n" + validJSON, want: "General"},
		{name: "guesses category for invalid category config", desc: groupDescription + "\n" + invalidJSON, want: "talk"},
		{name: "guesses category without config", desc: groupDescription, want: "talk"},
		{name: "guesses category for empty category", desc: groupDescription + "\n" + `{"category":""}`, want: "talk"},
		{name: "guesses category for non-string category", desc: groupDescription + "\n" + `{"category":7}`, want: "talk"},
		{name: "guesses category for non hash json", desc: groupDescription + "\n" + validNonHashJSON, want: "talk"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			g := &Group{Email: "talk@stripe.com", Category: "old", Description: tc.desc}
			UpdateConfig(g, Requestor{Email: "admin@stripe.com"})
			if g.Category != tc.want {
				t.Fatalf("category = %q, want %q", g.Category, tc.want)
			}
		})
	}
}

func TestUpdateConfig_KeepsUnknownKeys(t *testing.T) {
	t.Parallel()

	g := &Group{Email: "eng@example.com", Description: groupDescription + "\n" + `{"owner":"ops"}`}
	UpdateConfig(g, Requestor{})
	if g.Category != "eng" {
		t.Fatalf("category = %q, want eng", g.Category)
	}
	if v, ok := g.Config.Get("owner"); !ok || v != "ops" {
		t.Fatalf("owner = %q, %v", v, ok)
	}
}

func TestGuessCategory(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"talk@stripe.com":    "talk",
		" talk@stripe.com ":  "talk",
		"a@b@c":              "a",
		"noat":               "noat",
		"@stripe.com":        DefaultCategory,
		"":                   DefaultCategory,
		"eng-team@corp.test": "eng-team",
	} {
		if got := GuessCategory(in); got != want {
			t.Fatalf("GuessCategory(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRequestorString(t *testing.T) {
	t.Parallel()

	if got := (Requestor{}).String(); got != "system" {
		t.Fatalf("empty requestor = %q", got)
	}
	if got := (Requestor{Email: "a@b.c"}).String(); got != "a@b.c" {
		t.Fatalf("requestor = %q", got)
	}
}
