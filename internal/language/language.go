// Package language holds the language catalog and code handling shared by
// the detector, translator and speech backends.
//
// Codes follow the translator's conventions (ISO-639-1 plus the legacy
// Google codes "iw", "jw", "zh-cn", "zh-tw"). Backends that speak strict
// BCP 47 convert with Base and Normalize.
package language

import (
	"bytes"
	"encoding/json"
	"strings"

	"golang.org/x/text/language"
)

// Detection is the best-guess language of a text.
type Detection struct {
	// Code is the catalog code (e.g., "fr", "zh-cn").
	Code string `json:"code"`

	// Name is the human-readable name (e.g., "French").
	Name string `json:"name"`
}

// Entry is a single catalog row.
type Entry struct {
	Code string
	Name string
}

// Catalog is an ordered, immutable mapping from language code to display name.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// NewCatalog builds a catalog from entries. Later duplicates are ignored.
func NewCatalog(entries []Entry) *Catalog {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if _, dup := c.index[e.Code]; dup || e.Code == "" {
			continue
		}
		c.index[e.Code] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c
}

// Len returns the number of languages.
func (c *Catalog) Len() int { return len(c.entries) }

// At returns the entry at position i.
func (c *Catalog) At(i int) Entry { return c.entries[i] }

// Entries returns a copy of the ordered entries.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Contains reports whether code is a catalog key.
func (c *Catalog) Contains(code string) bool {
	_, ok := c.index[code]
	return ok
}

// Index returns the position of code, or -1.
func (c *Catalog) Index(code string) int {
	if i, ok := c.index[code]; ok {
		return i
	}
	return -1
}

// Name returns the display name for code.
func (c *Catalog) Name(code string) (string, bool) {
	i, ok := c.index[code]
	if !ok {
		return "", false
	}
	return c.entries[i].Name, true
}

// Lookup normalizes code and returns the matching catalog detection.
func (c *Catalog) Lookup(code string) (*Detection, bool) {
	norm := Normalize(code)
	name, ok := c.Name(norm)
	if !ok {
		return nil, false
	}
	return &Detection{Code: norm, Name: name}, true
}

// MarshalJSON encodes the catalog as a JSON object, preserving order.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range c.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Code)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// legacy maps canonical BCP 47 bases back to the translator's codes.
var legacy = map[string]string{
	"he":  "iw",
	"jv":  "jw",
	"nb":  "no",
	"nn":  "no",
	"fil": "tl",
}

// Normalize converts a BCP 47 tag or legacy code into catalog form.
// Unparseable input is returned lower-cased and trimmed.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	switch code {
	case "zh-cn", "zh-tw":
		return code
	}

	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	base, _ := tag.Base()
	b := base.String()

	if b == "zh" {
		script, _ := tag.Script()
		region, _ := tag.Region()
		if script.String() == "Hant" || region.String() == "TW" || region.String() == "HK" || region.String() == "MO" {
			return "zh-tw"
		}
		return "zh-cn"
	}
	if l, ok := legacy[b]; ok {
		return l
	}
	return b
}

// Base returns the ISO-639 base language of a catalog code
// ("zh-cn" -> "zh", "iw" -> "he", "jw" -> "jv").
func Base(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		if i := strings.IndexAny(code, "-_"); i > 0 {
			return code[:i]
		}
		return code
	}
	base, _ := tag.Base()
	return base.String()
}
