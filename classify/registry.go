// Package classify routes entity records to handlers by name.
//
// Engine names look like Prefix_Type_Suffix. A name with at least three
// underscore-separated tokens has a canonical key, its second token, which
// is looked up in an exact table. Names that miss the table are offered to an
// ordered chain of substring rules; the first rule that matches wins.
package classify

import (
	"strings"

	"gosight/directory"
	"gosight/world"
)

// Handler consumes one entity per call. Handlers draw through env and never
// return errors: anything that goes wrong means nothing is drawn.
type Handler interface {
	Handle(env *world.Env, rec directory.EntityRecord)
}

type HandlerFunc func(env *world.Env, rec directory.EntityRecord)

func (f HandlerFunc) Handle(env *world.Env, rec directory.EntityRecord) { f(env, rec) }

// Rule is one entry of the fallback chain.
type Rule struct {
	Name    string
	Match   func(name string) bool
	Handler Handler
}

// Contains matches names that contain marker.
func Contains(marker string) func(string) bool {
	return func(name string) bool { return strings.Contains(name, marker) }
}

type MatchKind uint8

const (
	NoMatch MatchKind = iota
	Exact
	Fallback
)

func (k MatchKind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Fallback:
		return "fallback"
	default:
		return "none"
	}
}

// CanonicalKey returns the second underscore token of name, or "" when name
// has fewer than three tokens.
func CanonicalKey(name string) string {
	first := strings.IndexByte(name, '_')
	if first < 0 {
		return ""
	}
	rest := name[first+1:]
	second := strings.IndexByte(rest, '_')
	if second < 0 {
		return ""
	}
	return rest[:second]
}

// Registry is built once at startup and only read afterwards.
type Registry struct {
	exact map[string]Handler
	rules []Rule
}

func NewRegistry() *Registry {
	return &Registry{exact: make(map[string]Handler)}
}

func (r *Registry) Register(key string, h Handler) *Registry {
	r.exact[key] = h
	return r
}

// RegisterAll binds the same handler to several keys.
func (r *Registry) RegisterAll(h Handler, keys ...string) *Registry {
	for _, k := range keys {
		r.exact[k] = h
	}
	return r
}

// Fallback appends a rule to the end of the chain.
func (r *Registry) Fallback(rule Rule) *Registry {
	r.rules = append(r.rules, rule)
	return r
}

func (r *Registry) Len() int { return len(r.exact) }

func (r *Registry) Rules() []Rule { return r.rules }

// Lookup returns the handler for name and the key it was found under: the
// canonical key for exact hits, the rule name for fallback hits.
func (r *Registry) Lookup(name string) (string, Handler, MatchKind) {
	if key := CanonicalKey(name); key != "" {
		if h, ok := r.exact[key]; ok {
			return key, h, Exact
		}
	}
	for _, rule := range r.rules {
		if rule.Match(name) {
			return rule.Name, rule.Handler, Fallback
		}
	}
	return "", nil, NoMatch
}
