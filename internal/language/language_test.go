package language

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"fr", "fr"},
		{"FR", "fr"},
		{"en-US", "en"},
		{"zh", "zh-cn"},
		{"zh-Hans", "zh-cn"},
		{"zh-TW", "zh-tw"},
		{"zh-Hant", "zh-tw"},
		{"he", "iw"},
		{"iw", "iw"},
		{"jv", "jw"},
		{"nb", "no"},
		{"fil", "tl"},
		{"ceb", "ceb"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"zh-cn", "zh"},
		{"zh-tw", "zh"},
		{"iw", "he"},
		{"en", "en"},
	}
	for _, tt := range tests {
		if got := Base(tt.in); got != tt.want {
			t.Errorf("Base(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCatalogLookup(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()

	d, ok := c.Lookup("he")
	if !ok {
		t.Fatal("expected he to resolve")
	}
	if d.Code != "iw" || d.Name != "Hebrew" {
		t.Errorf("got %+v, want iw/Hebrew", d)
	}

	if _, ok := c.Lookup("xx"); ok {
		t.Error("expected xx to be missing")
	}
	if c.Index("en") < 0 {
		t.Error("expected en in catalog")
	}
	if c.Index("xx") != -1 {
		t.Error("expected -1 for unknown code")
	}
}

func TestCatalogMarshalKeepsOrder(t *testing.T) {
	t.Parallel()

	c := NewCatalog([]Entry{{"fr", "French"}, {"en", "English"}, {"fr", "dup"}})
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(b); got != `{"fr":"French","en":"English"}` {
		t.Errorf("unexpected json %s", got)
	}
}

func TestDefaultCatalogIsStable(t *testing.T) {
	t.Parallel()

	a, _ := json.Marshal(DefaultCatalog())
	b, _ := json.Marshal(DefaultCatalog())
	if string(a) != string(b) {
		t.Fatal("catalog output changed between calls")
	}
	if !strings.HasPrefix(string(a), `{"af":"Afrikaans"`) {
		t.Errorf("unexpected first entry: %.40s", a)
	}
}
