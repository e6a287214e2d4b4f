package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element wraps an element node. The zero value is not usable; nil Elements
// are tolerated by every method and behave as absent.
type Element struct {
	n *html.Node
}

func wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{n: n}
}

func wrapAll(nodes []*html.Node) []*Element {
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, wrap(n))
	}
	return out
}

// NewElement creates a detached element.
func NewElement(tag string, attrs ...html.Attribute) *Element {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return wrap(&html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     append([]html.Attribute(nil), attrs...),
	})
}

// Node exposes the underlying node.
func (e *Element) Node() *html.Node {
	if e == nil {
		return nil
	}
	return e.n
}

// Same reports whether e and other wrap the same node.
func (e *Element) Same(other *Element) bool {
	if e == nil || other == nil {
		return e == nil && other == nil
	}
	return e.n == other.n
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	if e == nil {
		return ""
	}
	return e.n.Data
}

// ID returns the id attribute.
func (e *Element) ID() string {
	v, _ := e.Attr("id")
	return v
}

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	return attr(e.n, key)
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(key, value string) {
	if e == nil {
		return
	}
	for i := range e.n.Attr {
		if e.n.Attr[i].Namespace == "" && e.n.Attr[i].Key == key {
			e.n.Attr[i].Val = value
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: key, Val: value})
}

// RemoveAttr removes an attribute if present.
func (e *Element) RemoveAttr(key string) {
	if e == nil {
		return
	}
	out := e.n.Attr[:0]
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	e.n.Attr = out
}

// Classes returns the class list.
func (e *Element) Classes() []string {
	raw, _ := e.Attr("class")
	return strings.Fields(raw)
}

// HasClass reports whether the element carries class.
func (e *Element) HasClass(class string) bool {
	if e == nil {
		return false
	}
	return hasClass(e.n, strings.TrimSpace(class))
}

// AddClass adds class if missing.
func (e *Element) AddClass(class string) {
	class = strings.TrimSpace(class)
	if e == nil || class == "" || e.HasClass(class) {
		return
	}
	e.SetAttr("class", strings.Join(append(e.Classes(), class), " "))
}

// RemoveClass removes every occurrence of class.
func (e *Element) RemoveClass(class string) {
	class = strings.TrimSpace(class)
	if e == nil || class == "" {
		return
	}
	if _, ok := e.Attr("class"); !ok {
		return
	}
	var kept []string
	for _, c := range e.Classes() {
		if c != class {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(kept, " "))
}

// ToggleClass adds class when on is true and removes it otherwise.
func (e *Element) ToggleClass(class string, on bool) {
	if on {
		e.AddClass(class)
		return
	}
	e.RemoveClass(class)
}

// Parent returns the parent element, if any.
func (e *Element) Parent() *Element {
	if e == nil {
		return nil
	}
	for p := e.n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return wrap(p)
		}
	}
	return nil
}

// Closest returns the nearest ancestor (or e itself) matching m.
func (e *Element) Closest(m Matcher) *Element {
	if e == nil {
		return nil
	}
	for n := e.n; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && (m == nil || m(n)) {
			return wrap(n)
		}
	}
	return nil
}

// Find returns the first descendant matching m.
func (e *Element) Find(m Matcher) *Element {
	if e == nil {
		return nil
	}
	return wrap(findFirst(e.n, m))
}

// FindAll returns every descendant matching m.
func (e *Element) FindAll(m Matcher) []*Element {
	if e == nil {
		return nil
	}
	return wrapAll(findAll(e.n, m))
}

// Children returns the direct element children.
func (e *Element) Children() []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, wrap(c))
		}
	}
	return out
}

// AppendChild detaches child and appends it to e.
func (e *Element) AppendChild(child *Element) {
	if e == nil || child == nil {
		return
	}
	child.Remove()
	e.n.AppendChild(child.n)
}

// PrependChild detaches child and inserts it as the first child of e.
func (e *Element) PrependChild(child *Element) {
	if e == nil || child == nil {
		return
	}
	child.Remove()
	if e.n.FirstChild == nil {
		e.n.AppendChild(child.n)
		return
	}
	e.n.InsertBefore(child.n, e.n.FirstChild)
}

// After detaches sibling and inserts it directly after e.
func (e *Element) After(sibling *Element) {
	if e == nil || sibling == nil || e.n.Parent == nil {
		return
	}
	sibling.Remove()
	e.n.Parent.InsertBefore(sibling.n, e.n.NextSibling)
}

// NextElement returns the following sibling element, if any.
func (e *Element) NextElement() *Element {
	if e == nil {
		return nil
	}
	for s := e.n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return wrap(s)
		}
	}
	return nil
}

// Matches reports whether e satisfies m.
func (e *Element) Matches(m Matcher) bool {
	return e != nil && (m == nil || m(e.n))
}

// Remove detaches e from its parent.
func (e *Element) Remove() {
	if e == nil || e.n.Parent == nil {
		return
	}
	e.n.Parent.RemoveChild(e.n)
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.n)
	return b.String()
}

// SetText replaces the children with a single text node.
func (e *Element) SetText(text string) {
	if e == nil {
		return
	}
	e.clear()
	e.n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// InnerHTML renders the children.
func (e *Element) InnerHTML() string {
	if e == nil {
		return ""
	}
	var buf bytes.Buffer
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// SetInnerHTML parses markup in the context of e and replaces its children.
func (e *Element) SetInnerHTML(markup string) error {
	if e == nil {
		return nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.n)
	if err != nil {
		return fmt.Errorf("dom: parse fragment: %w", err)
	}
	e.clear()
	for _, n := range nodes {
		e.n.AppendChild(n)
	}
	return nil
}

func (e *Element) clear() {
	for c := e.n.FirstChild; c != nil; {
		next := c.NextSibling
		e.n.RemoveChild(c)
		c = next
	}
}

// Hide sets an inline display:none.
func (e *Element) Hide() {
	e.SetStyle("display", "none")
}

// Show sets an inline display value; an empty value clears the override.
func (e *Element) Show(display string) {
	e.SetStyle("display", display)
}

// Hidden reports whether an inline display:none is set.
func (e *Element) Hidden() bool {
	return e.Style("display") == "none"
}

// Style returns an inline style property.
func (e *Element) Style(prop string) string {
	raw, _ := e.Attr("style")
	for _, decl := range parseStyle(raw) {
		if decl[0] == prop {
			return decl[1]
		}
	}
	return ""
}

// SetStyle sets or clears an inline style property.
func (e *Element) SetStyle(prop, value string) {
	if e == nil {
		return
	}
	prop = strings.ToLower(strings.TrimSpace(prop))
	value = strings.TrimSpace(value)
	raw, _ := e.Attr("style")
	decls := parseStyle(raw)

	replaced := false
	out := decls[:0]
	for _, decl := range decls {
		if decl[0] == prop {
			if value == "" || replaced {
				continue
			}
			decl[1] = value
			replaced = true
		}
		out = append(out, decl)
	}
	if !replaced && value != "" {
		out = append(out, [2]string{prop, value})
	}

	if len(out) == 0 {
		e.RemoveAttr("style")
		return
	}
	parts := make([]string, 0, len(out))
	for _, decl := range out {
		parts = append(parts, decl[0]+": "+decl[1])
	}
	e.SetAttr("style", strings.Join(parts, "; "))
}

func parseStyle(raw string) [][2]string {
	var out [][2]string
	for _, chunk := range strings.Split(raw, ";") {
		key, value, ok := strings.Cut(chunk, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		out = append(out, [2]string{key, strings.TrimSpace(value)})
	}
	return out
}

// Value returns the current value of a form control.
func (e *Element) Value() string {
	if e == nil {
		return ""
	}
	switch e.n.DataAtom {
	case atom.Textarea:
		return e.Text()
	case atom.Select:
		var first *Element
		for _, opt := range e.FindAll(ByTag("option")) {
			if first == nil {
				first = opt
			}
			if _, ok := opt.Attr("selected"); ok {
				return optionValue(opt)
			}
		}
		if first != nil {
			return optionValue(first)
		}
		return ""
	default:
		v, _ := e.Attr("value")
		return v
	}
}

// SetValue updates a form control to hold value.
func (e *Element) SetValue(value string) {
	if e == nil {
		return
	}
	switch e.n.DataAtom {
	case atom.Textarea:
		e.SetText(value)
	case atom.Select:
		for _, opt := range e.FindAll(ByTag("option")) {
			if optionValue(opt) == value {
				opt.SetAttr("selected", "")
			} else {
				opt.RemoveAttr("selected")
			}
		}
	default:
		e.SetAttr("value", value)
	}
}

func optionValue(opt *Element) string {
	if v, ok := opt.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(opt.Text())
}

// Checked reports the checked state of a checkbox or radio input.
func (e *Element) Checked() bool {
	_, ok := e.Attr("checked")
	return ok
}

// SetChecked sets the checked state.
func (e *Element) SetChecked(on bool) {
	if on {
		e.SetAttr("checked", "")
		return
	}
	e.RemoveAttr("checked")
}

// Disabled reports whether the disabled attribute is present.
func (e *Element) Disabled() bool {
	_, ok := e.Attr("disabled")
	return ok
}

// SetDisabled toggles the disabled attribute.
func (e *Element) SetDisabled(on bool) {
	if on {
		e.SetAttr("disabled", "")
		return
	}
	e.RemoveAttr("disabled")
}

// IsCheckbox reports whether e is an <input type="checkbox">.
func (e *Element) IsCheckbox() bool {
	if e == nil || e.n.DataAtom != atom.Input {
		return false
	}
	t, _ := e.Attr("type")
	return strings.EqualFold(t, "checkbox")
}

func (e *Element) focusable() bool {
	switch e.n.DataAtom {
	case atom.Input, atom.Select, atom.Textarea, atom.Button:
		return true
	case atom.A:
		_, ok := e.Attr("href")
		return ok
	}
	return false
}
