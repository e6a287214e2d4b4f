package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/glotvold/go-site/pkg/form"
	"github.com/glotvold/go-site/pkg/i18n"
	"github.com/glotvold/go-site/pkg/model"
	"github.com/glotvold/go-site/pkg/openapi"
	"github.com/glotvold/go-site/pkg/render"
)

const maxBodyBytes = 64 << 10

type contactRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	ProjectType string `json:"projectType"`
	Description string `json:"description"`
	SiteVisit   bool   `json:"siteVisit"`
	Locale      string `json:"locale"`
}

func (c contactRequest) values() map[model.Field]string {
	return map[model.Field]string{
		model.FieldName:        c.Name,
		model.FieldEmail:       c.Email,
		model.FieldPhone:       c.Phone,
		model.FieldAddress:     c.Address,
		model.FieldProjectType: c.ProjectType,
		model.FieldDescription: c.Description,
		model.FieldSiteVisit:   strconv.FormatBool(c.SiteVisit),
	}
}

type contactResponse struct {
	State   model.UIState     `json:"state"`
	Errors  map[string]string `json:"errors,omitempty"`
	Focus   string            `json:"focus,omitempty"`
	Message string            `json:"message,omitempty"`
	Receipt string            `json:"receipt,omitempty"`
}

type fieldRequest struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Event  string `json:"event"`
	Locale string `json:"locale"`
}

type fieldResult struct {
	Field   string `json:"field"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

type phoneClick struct {
	Href string `json:"href"`
	Page string `json:"page"`
}

type contractViolation struct {
	Error  string              `json:"error"`
	Issues []openapi.Issue     `json:"issues,omitempty"`
	Fields map[string][]string `json:"fields,omitempty"`
	Form   []string            `json:"form,omitempty"`
}

func violationFrom(reqErr *openapi.RequestError) contractViolation {
	mapped := render.MapErrorPayload(model.ContactFields(), reqErr.Payload())
	out := contractViolation{
		Error:  "request does not match the contract",
		Issues: reqErr.Issues,
		Form:   mapped.Form,
	}
	if len(mapped.Fields) > 0 {
		out.Fields = make(map[string][]string, len(mapped.Fields))
		for field, messages := range mapped.Fields {
			out.Fields[field.String()] = messages
		}
	}
	return out
}

// checkContract validates r against the API contract and writes the 400
// response when it does not match.
func (s *Server) checkContract(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := s.contract.ValidateRequest(r)
	if err == nil {
		return true
	}
	var reqErr *openapi.RequestError
	if errors.As(err, &reqErr) {
		s.writeJSON(w, http.StatusBadRequest, violationFrom(reqErr))
		return false
	}
	s.writeJSON(w, http.StatusBadRequest, contractViolation{Error: err.Error()})
	return false
}

func (s *Server) handleContactAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowedWith(w, http.MethodPost)
		return
	}
	if !s.checkContract(w, r) {
		return
	}
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, contractViolation{Error: "invalid json payload"})
		return
	}
	locale := s.resolveLocale(req.Locale, r.URL.Query().Get("lang"))

	if !s.allow(r) {
		s.writeJSON(w, http.StatusTooManyRequests, contactResponse{
			State:   model.StateIdle,
			Message: s.t(locale, i18n.KeySubmitLimited),
		})
		return
	}

	collector := form.NewCollector()
	orch, err := form.New(form.RegistryFromValues(req.values()), s.channel,
		form.WithAnnotator(collector),
		form.WithTranslator(s.translator),
		form.WithLocale(locale),
		form.WithLogger(s.logger),
	)
	if err != nil {
		s.logger.Error("contact orchestrator", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer orch.OnTransition(s.metrics.TransitionRecorder("api")).Unsubscribe()

	err = orch.Submit(r.Context())
	var verr *form.ValidationError
	var serr *form.SubmissionError
	switch {
	case err == nil:
		receipt, _ := orch.Receipt()
		s.writeJSON(w, http.StatusOK, contactResponse{
			State:   orch.State(),
			Message: s.t(locale, i18n.KeySuccessTitle),
			Receipt: receipt.ID,
		})
	case errors.As(err, &verr):
		s.metrics.RecordInvalid(verr)
		s.writeJSON(w, http.StatusUnprocessableEntity, contactResponse{
			State:  orch.State(),
			Errors: collector.Messages(),
			Focus:  verr.First.String(),
		})
	case errors.As(err, &serr):
		s.logger.Warn("contact delivery failed", slog.Any("error", serr.Err))
		s.writeJSON(w, http.StatusServiceUnavailable, contactResponse{
			State:   orch.State(),
			Message: serr.Message,
		})
	default:
		s.logger.Error("contact submit", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// handleValidateField answers blur and input checks for one field. The
// client keeps field state, so both events validate the value sent.
func (s *Server) handleValidateField(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowedWith(w, http.MethodPost)
		return
	}
	if !s.checkContract(w, r) {
		return
	}
	var req fieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, contractViolation{Error: "invalid json payload"})
		return
	}
	field := model.Field(req.Field)
	locale := s.resolveLocale(req.Locale, r.URL.Query().Get("lang"))

	orch, err := form.New(form.RegistryFromValues(map[model.Field]string{field: req.Value}), s.channel,
		form.WithTranslator(s.translator),
		form.WithLocale(locale),
	)
	if err != nil {
		s.logger.Error("field orchestrator", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	result := orch.Blur(field)
	s.logger.Debug("field validated",
		slog.String("field", req.Field),
		slog.String("event", req.Event),
		slog.Bool("valid", result.Valid()),
	)
	s.writeJSON(w, http.StatusOK, fieldResult{
		Field:   req.Field,
		Valid:   result.Valid(),
		Message: result.Message,
	})
}

func (s *Server) handlePhoneClick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowedWith(w, http.MethodPost)
		return
	}
	if !s.checkContract(w, r) {
		return
	}
	var click phoneClick
	if err := json.NewDecoder(r.Body).Decode(&click); err != nil {
		s.writeJSON(w, http.StatusBadRequest, contractViolation{Error: "invalid json payload"})
		return
	}
	s.logger.Info("phone link clicked", slog.String("href", click.Href), slog.String("page", click.Page))
	s.metrics.RecordPhoneClick(click.Page)
	w.WriteHeader(http.StatusNoContent)
}
