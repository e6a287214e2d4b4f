package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	attrAutofocus    = "autofocus"
	attrScrollTarget = "data-scroll-into-view"
)

// ErrNilDocument is returned by operations on a nil Document.
var ErrNilDocument = errors.New("dom: document is nil")

// Document wraps a parsed HTML tree.
type Document struct {
	root *html.Node
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	if r == nil {
		return nil, errors.New("dom: reader is nil")
	}
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString parses markup held in memory.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// Root returns the <html> element.
func (d *Document) Root() *Element {
	if d == nil || d.root == nil {
		return nil
	}
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			return wrap(c)
		}
	}
	return nil
}

// Body returns the <body> element.
func (d *Document) Body() *Element {
	return d.Find(ByTag("body"))
}

// ByID returns the first element whose id attribute equals id.
func (d *Document) ByID(id string) *Element {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return d.Find(ByAttr("id", id))
}

// Find returns the first element in document order matching m.
func (d *Document) Find(m Matcher) *Element {
	if d == nil || d.root == nil {
		return nil
	}
	return wrap(findFirst(d.root, m))
}

// FindAll returns every element in document order matching m.
func (d *Document) FindAll(m Matcher) []*Element {
	if d == nil || d.root == nil {
		return nil
	}
	return wrapAll(findAll(d.root, m))
}

// Focus moves the autofocus marker to el. Elements that are not natively
// focusable receive tabindex="-1" so the hint still applies.
func (d *Document) Focus(el *Element) {
	if d == nil || d.root == nil {
		return
	}
	for _, other := range d.FindAll(HasAttr(attrAutofocus)) {
		other.RemoveAttr(attrAutofocus)
	}
	if el == nil {
		return
	}
	el.SetAttr(attrAutofocus, "")
	if !el.focusable() {
		if _, ok := el.Attr("tabindex"); !ok {
			el.SetAttr("tabindex", "-1")
		}
	}
}

// Focused returns the element carrying the autofocus marker.
func (d *Document) Focused() *Element {
	return d.Find(HasAttr(attrAutofocus))
}

// ScrollIntoView marks el as the element the client should bring into view.
// Only one element carries the marker at a time.
func (d *Document) ScrollIntoView(el *Element, block string) {
	if d == nil || d.root == nil {
		return
	}
	for _, other := range d.FindAll(HasAttr(attrScrollTarget)) {
		other.RemoveAttr(attrScrollTarget)
	}
	if el == nil {
		return
	}
	block = strings.TrimSpace(block)
	if block == "" {
		block = "start"
	}
	el.SetAttr(attrScrollTarget, block)
}

// ScrollTarget returns the element marked by ScrollIntoView.
func (d *Document) ScrollTarget() *Element {
	return d.Find(HasAttr(attrScrollTarget))
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	if d == nil || d.root == nil {
		return ErrNilDocument
	}
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("dom: render: %w", err)
	}
	return nil
}

// String renders the document, returning "" on failure.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func findFirst(n *html.Node, m Matcher) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (m == nil || m(c)) {
			return c
		}
		if found := findFirst(c, m); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, m Matcher) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (m == nil || m(c)) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}
