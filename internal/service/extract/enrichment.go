package extract

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Enrichment wraps the optional scraped-profile JSON attached to a CSV row.
// A zero Enrichment means the row carried no usable payload.
type Enrichment struct {
	raw     string
	present bool
}

// ParseEnrichment interprets the raw enrichment cell. Empty cells, literal
// placeholders such as "nan", invalid JSON, empty containers, and arrays
// without an object element all yield an absent Enrichment. When the payload
// is an array, the first object element is used.
func ParseEnrichment(raw string) Enrichment {
	s := strings.TrimSpace(raw)
	if s == "" || !gjson.Valid(s) {
		return Enrichment{}
	}
	v := gjson.Parse(s)
	if v.IsArray() {
		found := false
		v.ForEach(func(_, el gjson.Result) bool {
			if el.IsObject() {
				v = el
				found = true
				return false
			}
			return true
		})
		if !found {
			return Enrichment{}
		}
	}
	if !v.IsObject() {
		return Enrichment{}
	}
	empty := true
	v.ForEach(func(_, _ gjson.Result) bool {
		empty = false
		return false
	})
	if empty {
		return Enrichment{}
	}
	return Enrichment{raw: v.Raw, present: true}
}

// Present reports whether the row carried a usable enrichment payload.
func (e Enrichment) Present() bool { return e.present }

// Raw returns the normalized payload, or "" when absent.
func (e Enrichment) Raw() string { return e.raw }

// Str returns the first non-empty string value among the given gjson paths.
func (e Enrichment) Str(paths ...string) string {
	if !e.present {
		return ""
	}
	for _, p := range paths {
		if s := strings.TrimSpace(gjson.Get(e.raw, p).String()); s != "" {
			return s
		}
	}
	return ""
}

// Int returns the first numeric value among the given paths.
func (e Enrichment) Int(paths ...string) (int, bool) {
	if !e.present {
		return 0, false
	}
	for _, p := range paths {
		if v := gjson.Get(e.raw, p); v.Type == gjson.Number {
			return int(v.Int()), true
		}
	}
	return 0, false
}

// Skills collects up to max skill names. Elements may be plain strings or
// objects carrying a "name" field; anything else is skipped.
func (e Enrichment) Skills(max int) []string {
	if !e.present {
		return nil
	}
	var out []string
	gjson.Get(e.raw, "skills").ForEach(func(_, el gjson.Result) bool {
		var name string
		switch {
		case el.Type == gjson.String:
			name = el.String()
		case el.IsObject():
			name = el.Get("name").String()
		}
		name = strings.TrimSpace(name)
		if name != "" {
			out = append(out, name)
		}
		return len(out) < max
	})
	return out
}

// Location derives (city, state) from the payload. A combined "location"
// string wins, split on its first two comma-separated segments; otherwise
// dedicated city/state fields are consulted.
func (e Enrichment) Location() (string, string) {
	if loc := e.Str("location", "geo.full"); loc != "" {
		return SplitLocation(loc)
	}
	return e.Str("city", "geo.city"), e.Str("state", "geo.state")
}

// SplitLocation breaks "City, State[, rest]" into its first two segments.
func SplitLocation(s string) (string, string) {
	parts := strings.SplitN(s, ",", 3)
	city := strings.TrimSpace(parts[0])
	state := ""
	if len(parts) > 1 {
		state = strings.TrimSpace(parts[1])
	}
	return city, state
}
