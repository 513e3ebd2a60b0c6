// Package params turns query-style inputs into session parameters.
//
// Resolution never fails: missing feed ids are treated as absent and
// malformed overrides degrade to zero.
package params

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/birdiecount/internal/domain/model"
)

// Input keys, shared by every carrier (query string, flags, config).
const (
	KeyEvent  = "event"
	KeyRound  = "round"
	KeyEagle  = "ea"
	KeyBirdie = "bi"
)

// Keys lists every recognised input key.
var Keys = []string{KeyEvent, KeyRound, KeyEagle, KeyBirdie}

// Source exposes named inputs. ok is false when the key is absent.
type Source interface {
	Lookup(key string) (value string, ok bool)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(key string) (string, bool)

// Lookup implements Source.
func (f SourceFunc) Lookup(key string) (string, bool) { return f(key) }

// FromQuery reads the first value of each key from a query string.
func FromQuery(q url.Values) Source {
	return SourceFunc(func(key string) (string, bool) {
		vs, ok := q[key]
		if !ok || len(vs) == 0 {
			return "", false
		}
		return vs[0], true
	})
}

// FromMap reads inputs from a plain map.
func FromMap(m map[string]string) Source {
	return SourceFunc(func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	})
}

// Present reports whether src carries any recognised key.
func Present(src Source) bool {
	for _, k := range Keys {
		if _, ok := src.Lookup(k); ok {
			return true
		}
	}
	return false
}

// Resolve derives session parameters from src.
func Resolve(src Source) model.Params {
	var p model.Params
	if v, ok := src.Lookup(KeyEvent); ok {
		p.EventID = strings.TrimSpace(v)
	}
	if v, ok := src.Lookup(KeyRound); ok {
		p.RoundID = strings.TrimSpace(v)
	}
	if v, ok := src.Lookup(KeyEagle); ok {
		p.EagleOverride = model.IntPtr(ParseOverride(v))
	}
	if v, ok := src.Lookup(KeyBirdie); ok {
		p.BirdieOverride = model.IntPtr(ParseOverride(v))
	}
	return p
}

// Encode renders p back into query form; absent inputs are omitted.
func Encode(p model.Params) url.Values {
	q := url.Values{}
	if p.EventID != "" {
		q.Set(KeyEvent, p.EventID)
	}
	if p.RoundID != "" {
		q.Set(KeyRound, p.RoundID)
	}
	if p.EagleOverride != nil {
		q.Set(KeyEagle, strconv.Itoa(*p.EagleOverride))
	}
	if p.BirdieOverride != nil {
		q.Set(KeyBirdie, strconv.Itoa(*p.BirdieOverride))
	}
	return q
}

// MaxOverride caps a parsed override so baseline plus fetched counts stay in range.
const MaxOverride = 1_000_000

// ParseOverride parses an override leniently: leading whitespace and an
// optional sign are accepted and the leading run of decimal digits is used,
// so "12abc" is 12. Input without digits and negative values yield 0.
// Values above MaxOverride yield MaxOverride.
func ParseOverride(raw string) int {
	s := strings.TrimSpace(raw)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 || neg {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n > MaxOverride {
		return MaxOverride
	}
	return n
}
