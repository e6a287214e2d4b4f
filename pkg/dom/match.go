package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Matcher selects element nodes.
type Matcher func(n *html.Node) bool

// ByTag matches elements by tag name.
func ByTag(tag string) Matcher {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return func(n *html.Node) bool {
		return n.Data == tag
	}
}

// ByClass matches elements carrying class.
func ByClass(class string) Matcher {
	class = strings.TrimSpace(class)
	return func(n *html.Node) bool {
		return hasClass(n, class)
	}
}

// ByAttr matches elements whose attribute key equals value.
func ByAttr(key, value string) Matcher {
	return func(n *html.Node) bool {
		v, ok := attr(n, key)
		return ok && v == value
	}
}

// HasAttr matches elements carrying attribute key.
func HasAttr(key string) Matcher {
	return func(n *html.Node) bool {
		_, ok := attr(n, key)
		return ok
	}
}

// AttrPrefix matches elements whose attribute key starts with prefix.
func AttrPrefix(key, prefix string) Matcher {
	return func(n *html.Node) bool {
		v, ok := attr(n, key)
		return ok && strings.HasPrefix(v, prefix)
	}
}

// And matches elements satisfying every matcher.
func And(matchers ...Matcher) Matcher {
	return func(n *html.Node) bool {
		for _, m := range matchers {
			if m != nil && !m(n) {
				return false
			}
		}
		return true
	}
}

// Not inverts m.
func Not(m Matcher) Matcher {
	return func(n *html.Node) bool {
		return m == nil || !m(n)
	}
}

func attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	if class == "" {
		return false
	}
	raw, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(raw) {
		if c == class {
			return true
		}
	}
	return false
}
