// Package extract evaluates ordered fallback strategies against a DOM scope.
//
// A Field is a named list of Strategies. Strategies are tried strictly in
// order and the first one that locates a node and yields a non-empty value
// after post-processing wins. When none does, the field resolves to
// models.Sentinel; extraction never returns an error.
package extract

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/use-agent/jobscout/browser"
	"github.com/use-agent/jobscout/models"
)

// Origin selects which node a strategy queries from.
type Origin int

const (
	FromScope    Origin = iota // the section being extracted
	FromParent                 // the section's parent
	FromDocument               // the whole page
)

// Pick chooses which match wins when several nodes match.
type Pick int

const (
	PickFirst Pick = iota // document order
	PickLast
)

// Target is what a strategy runs against.
type Target struct {
	Scope browser.Element
	Doc   browser.Scope
}

// Strategy is one structural query plus text post-processing.
type Strategy struct {
	Name     string
	Origin   Origin
	Selector string

	// Contains filters matches to nodes whose own text holds one of these
	// substrings, like an XPath text() test.
	Contains []string
	// Fold makes Contains case-insensitive.
	Fold bool

	// Attr reads this attribute instead of the node text.
	Attr string
	Pick Pick
	Post []Post
}

// Validate compiles the selector.
func (s Strategy) Validate() error {
	if _, err := cascadia.ParseGroup(s.Selector); err != nil {
		return fmt.Errorf("strategy %q: %w", s.Name, err)
	}
	return nil
}

func (s Strategy) root(t Target) browser.Scope {
	switch s.Origin {
	case FromDocument:
		return t.Doc
	case FromParent:
		if t.Scope == nil {
			return nil
		}
		if p, ok := t.Scope.Parent(); ok {
			return p
		}
		return nil
	default:
		if t.Scope == nil {
			return nil
		}
		return t.Scope
	}
}

// candidates returns matching nodes in evaluation order.
func (s Strategy) candidates(t Target) []browser.Element {
	root := s.root(t)
	if root == nil {
		return nil
	}
	els, err := root.Elements(s.Selector)
	if err != nil || len(els) == 0 {
		return nil
	}
	if s.Pick == PickLast {
		rev := make([]browser.Element, len(els))
		for i, el := range els {
			rev[len(els)-1-i] = el
		}
		els = rev
	}
	if len(s.Contains) == 0 {
		return els
	}
	out := els[:0:0]
	for _, el := range els {
		own, err := el.OwnText()
		if err != nil {
			continue
		}
		if containsAny(own, s.Contains, s.Fold) {
			out = append(out, el)
		}
	}
	return out
}

// read returns the post-processed value of el, or "".
func (s Strategy) read(el browser.Element) string {
	var raw string
	if s.Attr != "" {
		v, ok, err := el.Attribute(s.Attr)
		if err != nil || !ok {
			return ""
		}
		raw = v
	} else {
		v, err := el.Text()
		if err != nil {
			return ""
		}
		raw = v
	}
	v := strings.TrimSpace(raw)
	for _, p := range s.Post {
		if v == "" {
			return ""
		}
		v = p(v)
	}
	return v
}

// Value runs the strategy and returns its first non-empty value.
func (s Strategy) Value(t Target) (string, bool) {
	return First(s.candidates(t), func(el browser.Element) (string, bool) {
		v := s.read(el)
		return v, v != ""
	})
}

// Values returns every non-empty value in evaluation order.
func (s Strategy) Values(t Target) []string {
	var out []string
	for _, el := range s.candidates(t) {
		if v := s.read(el); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Locate returns the first matching node whose value is non-empty.
func (s Strategy) Locate(t Target) (browser.Element, bool) {
	return First(s.candidates(t), func(el browser.Element) (browser.Element, bool) {
		return el, s.read(el) != ""
	})
}

// LocateAll returns every matching node whose value is non-empty.
func (s Strategy) LocateAll(t Target) []browser.Element {
	var out []browser.Element
	for _, el := range s.candidates(t) {
		if s.read(el) != "" {
			out = append(out, el)
		}
	}
	return out
}

// First tries each item in order and returns the first successful result.
func First[T, V any](items []T, try func(T) (V, bool)) (V, bool) {
	for _, it := range items {
		if v, ok := try(it); ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Field is a named, ordered strategy list.
type Field struct {
	Name       string
	Strategies []Strategy
}

// Validate compiles every strategy selector.
func (f Field) Validate() error {
	for _, s := range f.Strategies {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	return nil
}

// Extract returns the first strategy value, or models.Sentinel.
func (f Field) Extract(t Target) string {
	v, _ := f.Resolve(t)
	return v
}

// Resolve is Extract that also reports which strategy won (-1 for none).
func (f Field) Resolve(t Target) (string, int) {
	for i, s := range f.Strategies {
		if v, ok := s.Value(t); ok {
			return v, i
		}
	}
	return models.Sentinel, -1
}

// ExtractAll returns the values of the first strategy that yields any.
// The order of values follows the document; duplicates are kept.
func (f Field) ExtractAll(t Target) []string {
	v, _ := First(f.Strategies, func(s Strategy) ([]string, bool) {
		vals := s.Values(t)
		return vals, len(vals) > 0
	})
	if v == nil {
		return []string{}
	}
	return v
}

func containsAny(text string, subs []string, fold bool) bool {
	if fold {
		text = strings.ToLower(text)
	}
	for _, s := range subs {
		if s == "" {
			continue
		}
		if fold {
			s = strings.ToLower(s)
		}
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}
