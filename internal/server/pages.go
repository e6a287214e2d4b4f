package server

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	site "github.com/glotvold/go-site"
	"github.com/glotvold/go-site/components/projects"
	"github.com/glotvold/go-site/pkg/dom"
	"github.com/glotvold/go-site/pkg/form"
	"github.com/glotvold/go-site/pkg/i18n"
	"github.com/glotvold/go-site/pkg/model"
	"github.com/glotvold/go-site/pkg/page"
)

type option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// renderPage renders a template into a node tree and applies the site-wide
// enhancements.
func (s *Server) renderPage(name string, data map[string]any) (*dom.Document, error) {
	out, err := s.pages.RenderTemplate(name, data)
	if err != nil {
		return nil, err
	}
	doc, err := dom.ParseString(out)
	if err != nil {
		return nil, fmt.Errorf("server: parse %s: %w", name, err)
	}
	s.binder.Enhance(doc)
	return doc, nil
}

func (s *Server) writePage(w http.ResponseWriter, status int, doc *dom.Document) {
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		s.logger.Error("render page", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) pageError(w http.ResponseWriter, name string, err error) {
	s.logger.Error("page unavailable", slog.String("page", name), slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Server) contactData(locale string) map[string]any {
	types := make([]option, 0, len(model.ProjectTypes()))
	for _, value := range model.ProjectTypes() {
		types = append(types, option{Value: value, Label: s.t(locale, "projectType."+value)})
	}
	return map[string]any{
		"locale":        locale,
		"project_types": types,
	}
}

// handleContactPage serves the contact form and, on POST, runs the same
// workflow the browser would: fill the controls, validate, deliver, and
// answer with the page in its resulting state.
func (s *Server) handleContactPage(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodPost:
	default:
		methodNotAllowedWith(w, http.MethodGet, http.MethodHead, http.MethodPost)
		return
	}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form payload", http.StatusBadRequest)
			return
		}
	}

	locale := s.resolveLocale(r.URL.Query().Get("lang"), r.PostForm.Get("locale"))
	doc, err := s.renderPage(site.TemplateContact, s.contactData(locale))
	if err != nil {
		s.pageError(w, site.TemplateContact, err)
		return
	}
	contact, err := s.binder.BindContact(doc, locale)
	if err != nil {
		s.pageError(w, site.TemplateContact, err)
		return
	}
	if r.Method != http.MethodPost {
		s.writePage(w, http.StatusOK, doc)
		return
	}

	contact.Fill(r.PostForm)
	if !s.allow(r) {
		contact.View().ShowFailure(s.t(locale, i18n.KeySubmitLimited))
		s.writePage(w, http.StatusTooManyRequests, doc)
		return
	}

	s.writePage(w, s.submitPage(r, contact), doc)
}

func (s *Server) submitPage(r *http.Request, contact *page.Contact) int {
	orch, err := contact.Orchestrator(s.channel)
	if err != nil {
		s.logger.Error("contact orchestrator", slog.Any("error", err))
		return http.StatusInternalServerError
	}
	defer orch.OnTransition(s.metrics.TransitionRecorder("page")).Unsubscribe()

	err = orch.Submit(r.Context())
	var verr *form.ValidationError
	var serr *form.SubmissionError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		s.metrics.RecordInvalid(verr)
		return http.StatusUnprocessableEntity
	case errors.As(err, &serr):
		s.logger.Warn("contact delivery failed", slog.Any("error", serr.Err))
		return http.StatusServiceUnavailable
	default:
		s.logger.Error("contact submit", slog.Any("error", err))
		return http.StatusInternalServerError
	}
}

// handleProjectsPage renders the reference projects with the category filter
// applied from ?kategori= (or ?category=).
func (s *Server) handleProjectsPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowedWith(w, http.MethodGet, http.MethodHead)
		return
	}
	list, err := s.projects.Projects()
	if err != nil {
		s.pageError(w, site.TemplateProjects, err)
		return
	}

	query := r.URL.Query()
	locale := s.resolveLocale(query.Get("lang"))
	category := query.Get("kategori")
	if category == "" {
		category = query.Get("category")
	}
	category = projects.NormalizeCategory(category)

	categories := []option{{Value: projects.CategoryAll, Label: s.t(locale, "projects.all")}}
	for _, value := range projects.Categories(list) {
		categories = append(categories, option{Value: value, Label: s.t(locale, "projectType."+value)})
	}

	doc, err := s.renderPage(site.TemplateProjects, map[string]any{
		"locale":     locale,
		"projects":   list,
		"categories": categories,
	})
	if err != nil {
		s.pageError(w, site.TemplateProjects, err)
		return
	}
	if projects.ApplyFilter(doc, category) < 0 {
		s.logger.Info("project filter unavailable", slog.String("page", site.TemplateProjects))
	}
	s.writePage(w, http.StatusOK, doc)
}
