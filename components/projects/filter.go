package projects

import "github.com/glotvold/go-site/pkg/dom"

const (
	classTag       = "category-tag"
	classTagActive = "category-tag--active"
	classCard      = "project-card"
	classFadeIn    = "fade-in"
)

// ApplyFilter filters a rendered projects page in place. The tag whose
// data-category equals category becomes the only active tag; cards outside
// the category are hidden and the rest shown with the fade-in class. It
// reports the number of visible cards, or -1 when the page has no tags or
// no cards and the filter does not apply.
func ApplyFilter(doc *dom.Document, category string) int {
	tags := doc.FindAll(dom.And(dom.ByClass(classTag), dom.HasAttr("data-category")))
	cards := doc.FindAll(dom.ByClass(classCard))
	if len(tags) == 0 || len(cards) == 0 {
		return -1
	}

	category = NormalizeCategory(category)
	for _, tag := range tags {
		value, _ := tag.Attr("data-category")
		active := value == category
		tag.ToggleClass(classTagActive, active)
		if active {
			tag.SetAttr("aria-pressed", "true")
		} else {
			tag.SetAttr("aria-pressed", "false")
		}
	}

	visible := 0
	for _, card := range cards {
		value, _ := card.Attr("data-category")
		if category == CategoryAll || value == category {
			card.Show("")
			card.AddClass(classFadeIn)
			visible++
			continue
		}
		card.Hide()
		card.RemoveClass(classFadeIn)
	}
	return visible
}
