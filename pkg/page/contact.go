package page

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	nethtml "golang.org/x/net/html"

	"github.com/glotvold/go-site/pkg/dom"
	"github.com/glotvold/go-site/pkg/form"
	"github.com/glotvold/go-site/pkg/i18n"
	"github.com/glotvold/go-site/pkg/model"
	"github.com/glotvold/go-site/pkg/present"
	"github.com/glotvold/go-site/pkg/submission"
)

const (
	// ContactFormID is the id of the contact form element.
	ContactFormID = "contact-form"

	classFormFields = "form-fields"
	classSuccess    = "form-success"
	classNotice     = "form-notice"
	classError      = "form-error"
	classButton     = "btn"
)

// ErrNoContactForm is returned when the page has no contact form.
var ErrNoContactForm = errors.New("page: contact form not found")

// Contact is the contact form bound on one page.
type Contact struct {
	doc      *dom.Document
	form     *dom.Element
	registry *form.Registry
	controls map[model.Field]*dom.Element
	view     *contactView
	binder   *Binder
	locale   string
}

// BindContact locates the contact form on doc and registers the controls it
// finds. Missing optional parts (fields wrapper, trigger, individual
// controls) are logged once and their behaviour skipped.
func (b *Binder) BindContact(doc *dom.Document, locale string) (*Contact, error) {
	if locale = i18n.NormalizeLocale(locale); locale == "" {
		locale = b.locale
	}
	formEl := doc.ByID(ContactFormID)
	if formEl == nil {
		b.missing(CapContactForm, "")
		return nil, ErrNoContactForm
	}

	c := &Contact{
		doc:      doc,
		form:     formEl,
		registry: form.NewRegistry(),
		controls: make(map[model.Field]*dom.Element),
		binder:   b,
		locale:   locale,
	}

	for _, field := range model.ContactFields() {
		el := formEl.Find(dom.ByAttr("id", field.String()))
		if el == nil {
			b.missing(Capability("field:"+field.String()), ContactFormID)
			continue
		}
		c.controls[field] = el
		if err := c.registry.Register(domControl{field: field, el: el}); err != nil {
			return nil, fmt.Errorf("page: register %s: %w", field, err)
		}
	}

	fields := formEl.Find(dom.ByClass(classFormFields))
	if fields == nil {
		b.missing(CapFormFields, ContactFormID)
	}
	trigger := formEl.Find(dom.And(dom.ByClass(classButton), dom.ByAttr("type", "submit")))
	if trigger == nil {
		b.missing(CapSubmitTrigger, ContactFormID)
	}

	c.view = &contactView{
		doc:     doc,
		form:    formEl,
		fields:  fields,
		trigger: trigger,
		c:       c,
	}
	c.view.ensureSuccessNotice()
	return c, nil
}

// Registry returns the registered controls.
func (c *Contact) Registry() *form.Registry { return c.registry }

// View returns the page surface for the orchestrator.
func (c *Contact) View() form.View { return c.view }

// Annotator returns the presenter-backed annotator.
func (c *Contact) Annotator() form.Annotator {
	return form.AnnotatorFunc(func(field model.Field, message string) {
		if el, ok := c.controls[field]; ok {
			c.binder.presenter.Present(el, message)
		}
	})
}

// Document returns the bound page.
func (c *Contact) Document() *dom.Document { return c.doc }

// Control returns the element registered for field.
func (c *Contact) Control(field model.Field) (*dom.Element, bool) {
	el, ok := c.controls[field]
	return el, ok
}

// Presenter exposes the presenter used for annotations.
func (c *Contact) Presenter() *present.Presenter { return c.binder.presenter }

// Fill copies posted values into the controls. Checkboxes are checked when
// their value is truthy; absent checkboxes are cleared, as browsers omit
// unchecked boxes from posts.
func (c *Contact) Fill(values url.Values) {
	for field, el := range c.controls {
		if el.IsCheckbox() {
			el.SetChecked(form.Truthy(values.Get(field.String())))
			continue
		}
		el.SetValue(values.Get(field.String()))
	}
}

// Orchestrator wires an orchestrator to this page.
func (c *Contact) Orchestrator(channel submission.Channel, options ...form.Option) (*form.Orchestrator, error) {
	opts := []form.Option{
		form.WithAnnotator(c.Annotator()),
		form.WithView(c.view),
		form.WithTranslator(c.binder.translator),
		form.WithLocale(c.locale),
		form.WithLogger(c.binder.logger),
	}
	return form.New(c.registry, channel, append(opts, options...)...)
}

type domControl struct {
	field model.Field
	el    *dom.Element
}

func (d domControl) Field() model.Field { return d.field }
func (d domControl) Value() string      { return d.el.Value() }
func (d domControl) Checked() bool      { return d.el.Checked() }

type contactView struct {
	doc     *dom.Document
	form    *dom.Element
	fields  *dom.Element
	trigger *dom.Element
	c       *Contact

	originalLabel string
	busy          bool
}

func (v *contactView) Focus(field model.Field) {
	if el, ok := v.c.controls[field]; ok {
		v.doc.Focus(el)
	}
}

func (v *contactView) SetBusy(busy bool) {
	if v.trigger == nil || busy == v.busy {
		return
	}
	v.busy = busy
	if busy {
		v.originalLabel = v.trigger.InnerHTML()
		v.trigger.SetDisabled(true)
		v.trigger.SetAttr("aria-busy", "true")
		_ = v.trigger.SetInnerHTML(`<span class="spinner"></span> ` + html.EscapeString(v.c.binder.t(v.c.locale, i18n.KeySubmitBusy)))
		return
	}
	v.trigger.SetDisabled(false)
	v.trigger.RemoveAttr("aria-busy")
	_ = v.trigger.SetInnerHTML(v.originalLabel)
}

func (v *contactView) ShowSuccess() {
	notice := v.ensureSuccessNotice()
	notice.Show("block")
	notice.SetAttr("role", "status")
	if v.fields != nil {
		v.fields.Hide()
	}
	if v.trigger != nil {
		v.trigger.Hide()
	}
	v.doc.ScrollIntoView(notice, "center")
}

func (v *contactView) ShowFailure(message string) {
	notice := v.failureNotice()
	if notice == nil {
		notice = dom.NewElement("div",
			nethtml.Attribute{Key: "class", Val: classError + " " + classNotice},
			nethtml.Attribute{Key: "role", Val: "alert"},
		)
		notice.SetStyle("margin-bottom", "var(--space-lg)")
		v.form.PrependChild(notice)
	}
	notice.SetText(message)
}

func (v *contactView) ClearFailure() {
	if notice := v.failureNotice(); notice != nil {
		notice.Remove()
	}
}

func (v *contactView) failureNotice() *dom.Element {
	return v.form.Find(dom.And(dom.ByClass(classError), dom.ByClass(classNotice)))
}

func (v *contactView) ensureSuccessNotice() *dom.Element {
	if notice := v.form.Find(dom.ByClass(classSuccess)); notice != nil {
		return notice
	}
	locale := v.c.locale
	t := func(key string) string { return html.EscapeString(v.c.binder.t(locale, key)) }

	var b strings.Builder
	b.WriteString("<h3>" + t(i18n.KeySuccessTitle) + "</h3>")
	b.WriteString("<p>" + t(i18n.KeySuccessBody) + "</p>")
	if phone := v.c.binder.phone; phone != "" {
		b.WriteString("<p>" + t(i18n.KeySuccessUrgent) + ` <a href="tel:` + html.EscapeString(telTarget(phone)) + `">` + html.EscapeString(phone) + "</a>.</p>")
	}

	notice := dom.NewElement("div", nethtml.Attribute{Key: "class", Val: classSuccess})
	_ = notice.SetInnerHTML(b.String())
	trackPhoneLinks(notice.FindAll(phoneLink))
	notice.Hide()
	v.form.PrependChild(notice)
	return notice
}

func telTarget(display string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(display) {
		if r >= '0' && r <= '9' || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
