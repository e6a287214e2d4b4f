package form

import (
	"sort"
	"sync"

	"github.com/glotvold/go-site/pkg/model"
)

// View is the page surface the orchestrator drives beyond per-field
// annotations.
type View interface {
	// Focus moves keyboard focus to field.
	Focus(field model.Field)
	// SetBusy disables the trigger and shows the busy label, or re-enables it
	// with its original label.
	SetBusy(busy bool)
	// ShowSuccess hides the inputs and trigger and reveals the success notice.
	ShowSuccess()
	// ShowFailure shows the page-level failure notice.
	ShowFailure(message string)
	// ClearFailure removes the failure notice, if any.
	ClearFailure()
}

// NopView ignores every call.
type NopView struct{}

func (NopView) Focus(model.Field)  {}
func (NopView) SetBusy(bool)       {}
func (NopView) ShowSuccess()       {}
func (NopView) ShowFailure(string) {}
func (NopView) ClearFailure()      {}

// Collector records annotations instead of drawing them. It backs JSON
// responses, where the client renders messages itself.
type Collector struct {
	mu       sync.Mutex
	messages map[model.Field]string
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{messages: make(map[model.Field]string)}
}

// Annotate implements Annotator.
func (c *Collector) Annotate(field model.Field, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if message == "" {
		delete(c.messages, field)
		return
	}
	if c.messages == nil {
		c.messages = make(map[model.Field]string)
	}
	c.messages[field] = message
}

// Messages returns field name to message for the current annotations.
func (c *Collector) Messages() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return nil
	}
	out := make(map[string]string, len(c.messages))
	for field, message := range c.messages {
		out[field.String()] = message
	}
	return out
}

// Fields lists annotated fields in document order; unknown names sort last.
func (c *Collector) Fields() []model.Field {
	c.mu.Lock()
	defer c.mu.Unlock()
	rank := make(map[model.Field]int)
	for i, field := range model.ContactFields() {
		rank[field] = i
	}
	out := make([]model.Field, 0, len(c.messages))
	for field := range c.messages {
		out = append(out, field)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, iok := rank[out[i]]
		rj, jok := rank[out[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return out[i] < out[j]
		}
	})
	return out
}
