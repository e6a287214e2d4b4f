package dom_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/glotvold/go-site/pkg/dom"
)

const fixture = `<!doctype html>
<html><body>
<form id="contact-form">
  <div class="form-fields">
    <div class="form-group"><label for="name">Navn</label><input id="name" name="name" value="Kari"></div>
    <div class="form-group"><select id="projectType"><option value="">Velg</option><option value="bad" selected>Bad</option></select></div>
    <div class="form-group"><textarea id="description">Nytt bad</textarea></div>
    <div class="form-group"><input id="siteVisit" type="checkbox" checked></div>
  </div>
  <button class="btn" type="submit">Send</button>
</form>
<a href="tel:+4790000000" class="phone">Ring</a>
</body></html>`

func parse(t *testing.T) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(fixture)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestLookupAndValues(t *testing.T) {
	doc := parse(t)

	if got := doc.ByID("name").Value(); got != "Kari" {
		t.Fatalf("name value = %q", got)
	}
	if got := doc.ByID("projectType").Value(); got != "bad" {
		t.Fatalf("select value = %q", got)
	}
	if got := doc.ByID("description").Value(); got != "Nytt bad" {
		t.Fatalf("textarea value = %q", got)
	}
	box := doc.ByID("siteVisit")
	if !box.IsCheckbox() || !box.Checked() {
		t.Fatalf("expected checked checkbox")
	}
	if doc.ByID("missing") != nil {
		t.Fatalf("expected nil for missing id")
	}

	links := doc.FindAll(dom.AttrPrefix("href", "tel:"))
	if len(links) != 1 || !links[0].HasClass("phone") {
		t.Fatalf("expected one tel link, got %d", len(links))
	}
}

func TestSetValueRoundTrip(t *testing.T) {
	doc := parse(t)

	doc.ByID("name").SetValue("Ola")
	doc.ByID("projectType").SetValue("")
	doc.ByID("description").SetValue("Tilbygg <garasje>")
	doc.ByID("siteVisit").SetChecked(false)

	again, err := dom.ParseString(doc.String())
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	got := []string{
		again.ByID("name").Value(),
		again.ByID("projectType").Value(),
		again.ByID("description").Value(),
	}
	if diff := cmp.Diff([]string{"Ola", "", "Tilbygg <garasje>"}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if again.ByID("siteVisit").Checked() {
		t.Fatalf("expected checkbox to be cleared")
	}
}

func TestClassesAndClosest(t *testing.T) {
	doc := parse(t)
	name := doc.ByID("name")

	name.AddClass("error")
	name.AddClass("error")
	if diff := cmp.Diff([]string{"error"}, name.Classes()); diff != "" {
		t.Fatalf("classes mismatch (-want +got):\n%s", diff)
	}
	name.RemoveClass("error")
	if _, ok := name.Attr("class"); ok {
		t.Fatalf("expected empty class attribute to be dropped")
	}

	group := name.Closest(dom.ByClass("form-group"))
	if group == nil || group.Find(dom.ByTag("label")) == nil {
		t.Fatalf("expected enclosing form-group with label")
	}
	if !name.Closest(dom.ByTag("form")).Same(doc.ByID("contact-form")) {
		t.Fatalf("expected closest form to be the contact form")
	}
}

func TestInsertAndRemove(t *testing.T) {
	doc := parse(t)
	form := doc.ByID("contact-form")

	notice := dom.NewElement("div")
	notice.AddClass("form-success")
	notice.SetText("Takk")
	form.PrependChild(notice)

	if first := form.Children()[0]; !first.HasClass("form-success") {
		t.Fatalf("expected notice as first child, got %s", first.Tag())
	}
	notice.Remove()
	if doc.Find(dom.ByClass("form-success")) != nil {
		t.Fatalf("expected notice removed")
	}

	label := doc.Find(dom.ByTag("label"))
	hint := dom.NewElement("span")
	hint.AddClass("form-error")
	label.After(hint)
	if next := label.NextElement(); !next.Same(hint) || !next.Matches(dom.ByClass("form-error")) {
		t.Fatalf("expected span directly after the label")
	}
	if next := hint.NextElement(); next == nil || next.ID() != "name" {
		t.Fatalf("expected the input to follow the span")
	}
}

func TestStyleDisplay(t *testing.T) {
	doc := parse(t)
	fields := doc.Find(dom.ByClass("form-fields"))
	fields.SetStyle("color", "red")
	fields.Hide()
	if !fields.Hidden() {
		t.Fatalf("expected hidden")
	}
	if got, _ := fields.Attr("style"); got != "color: red; display: none" {
		t.Fatalf("style = %q", got)
	}
	fields.Show("")
	if fields.Hidden() {
		t.Fatalf("expected visible")
	}
	fields.SetStyle("color", "")
	if _, ok := fields.Attr("style"); ok {
		t.Fatalf("expected style attribute removed")
	}
}

func TestInnerHTML(t *testing.T) {
	el := dom.NewElement("div")
	if err := el.SetInnerHTML(`<h3>Takk!</h3><p>Vi tar kontakt.</p>`); err != nil {
		t.Fatalf("SetInnerHTML: %v", err)
	}
	if got := el.InnerHTML(); got != "<h3>Takk!</h3><p>Vi tar kontakt.</p>" {
		t.Fatalf("inner = %q", got)
	}
	if got := strings.TrimSpace(el.Text()); got != "Takk!Vi tar kontakt." {
		t.Fatalf("text = %q", got)
	}
}

func TestFocusAndScrollMarkersAreUnique(t *testing.T) {
	doc := parse(t)

	doc.Focus(doc.ByID("name"))
	doc.Focus(doc.ByID("description"))
	if got := doc.FindAll(dom.HasAttr("autofocus")); len(got) != 1 || got[0].ID() != "description" {
		t.Fatalf("expected only description focused")
	}

	group := doc.Find(dom.ByClass("form-group"))
	doc.Focus(group)
	if v, _ := group.Attr("tabindex"); v != "-1" {
		t.Fatalf("expected tabindex on non-focusable element, got %q", v)
	}

	doc.ScrollIntoView(doc.ByID("name"), "")
	doc.ScrollIntoView(doc.ByID("contact-form"), "center")
	target := doc.ScrollTarget()
	if target == nil || target.ID() != "contact-form" {
		t.Fatalf("expected contact form as scroll target")
	}
	if v, _ := target.Attr("data-scroll-into-view"); v != "center" {
		t.Fatalf("block = %q", v)
	}
}
