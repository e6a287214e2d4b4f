// Package present shows and clears inline validation annotations on an HTML
// tree. Each control carries at most one annotation element, placed inside
// the control's field group or, without one, right after the control.
package present

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/glotvold/go-site/pkg/dom"
)

const (
	defaultGroupClass      = "form-group"
	defaultAnnotationClass = "form-error"
	defaultInvalidClass    = "error"
	annotationTag          = "span"
)

// Presenter annotates controls. The zero value is not usable; use New.
type Presenter struct {
	groupClass      string
	annotationClass string
	invalidClass    string
}

// Option customises class names.
type Option func(*Presenter)

// WithGroupClass overrides the class of the element wrapping a control.
func WithGroupClass(class string) Option {
	return func(p *Presenter) {
		if class = strings.TrimSpace(class); class != "" {
			p.groupClass = class
		}
	}
}

// WithAnnotationClass overrides the class of the annotation element.
func WithAnnotationClass(class string) Option {
	return func(p *Presenter) {
		if class = strings.TrimSpace(class); class != "" {
			p.annotationClass = class
		}
	}
}

// WithInvalidClass overrides the class added to invalid controls.
func WithInvalidClass(class string) Option {
	return func(p *Presenter) {
		if class = strings.TrimSpace(class); class != "" {
			p.invalidClass = class
		}
	}
}

// New returns a presenter using the site's class names unless overridden.
func New(options ...Option) *Presenter {
	p := &Presenter{
		groupClass:      defaultGroupClass,
		annotationClass: defaultAnnotationClass,
		invalidClass:    defaultInvalidClass,
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Present marks control invalid with message, or clears the mark when message
// is blank. Repeated calls never produce more than one annotation.
func (p *Presenter) Present(control *dom.Element, message string) {
	if p == nil || control == nil {
		return
	}
	message = strings.TrimSpace(message)
	container, shared := p.container(control)
	existing := p.annotations(control, container, shared)

	if message == "" {
		control.RemoveClass(p.invalidClass)
		control.RemoveAttr("aria-invalid")
		for _, el := range existing {
			p.unlink(control, el)
			el.Remove()
		}
		return
	}

	control.AddClass(p.invalidClass)
	control.SetAttr("aria-invalid", "true")

	var annotation *dom.Element
	if len(existing) > 0 {
		annotation = existing[0]
		for _, extra := range existing[1:] {
			p.unlink(control, extra)
			extra.Remove()
		}
	} else {
		annotation = dom.NewElement(annotationTag, html.Attribute{Key: "class", Val: p.annotationClass})
		switch {
		case shared:
			control.After(annotation)
		case container != nil:
			container.AppendChild(annotation)
		}
	}
	annotation.SetAttr("role", "alert")
	annotation.SetText(message)

	if id := control.ID(); id != "" {
		annotationID := id + "-error"
		annotation.SetAttr("id", annotationID)
		control.SetAttr("aria-describedby", addToken(attrValue(control, "aria-describedby"), annotationID))
	}
}

// Annotation returns the annotation currently attached to control.
func (p *Presenter) Annotation(control *dom.Element) *dom.Element {
	if p == nil || control == nil {
		return nil
	}
	container, shared := p.container(control)
	found := p.annotations(control, container, shared)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// Invalid reports whether control carries the invalid mark.
func (p *Presenter) Invalid(control *dom.Element) bool {
	if p == nil {
		return false
	}
	return control.HasClass(p.invalidClass)
}

// container returns the field group holding control. Without one the parent
// is used and reported as shared, since sibling controls may annotate there
// too.
func (p *Presenter) container(control *dom.Element) (*dom.Element, bool) {
	if group := control.Closest(dom.ByClass(p.groupClass)); group != nil {
		return group, false
	}
	return control.Parent(), true
}

func (p *Presenter) annotations(control, container *dom.Element, shared bool) []*dom.Element {
	if container == nil {
		return nil
	}
	match := dom.And(dom.ByTag(annotationTag), dom.ByClass(p.annotationClass))
	if !shared {
		return container.FindAll(match)
	}

	// In a shared parent only the annotation named after the control, or an
	// unnamed one directly after it, belongs to the control.
	var found []*dom.Element
	if id := control.ID(); id != "" {
		found = container.FindAll(dom.And(match, dom.ByAttr("id", id+"-error")))
	}
	if next := control.NextElement(); next.Matches(match) && next.ID() == "" {
		found = append(found, next)
	}
	return found
}

func (p *Presenter) unlink(control, annotation *dom.Element) {
	id := annotation.ID()
	if id == "" {
		return
	}
	remaining := removeToken(attrValue(control, "aria-describedby"), id)
	if remaining == "" {
		control.RemoveAttr("aria-describedby")
		return
	}
	control.SetAttr("aria-describedby", remaining)
}

func attrValue(el *dom.Element, key string) string {
	v, _ := el.Attr(key)
	return v
}

func addToken(list, token string) string {
	for _, existing := range strings.Fields(list) {
		if existing == token {
			return list
		}
	}
	return strings.TrimSpace(list + " " + token)
}

func removeToken(list, token string) string {
	var kept []string
	for _, existing := range strings.Fields(list) {
		if existing != token {
			kept = append(kept, existing)
		}
	}
	return strings.Join(kept, " ")
}
