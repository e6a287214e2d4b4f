// Package tui runs the contact form as an interactive terminal session. The
// same orchestrator that drives the web page validates each answer as it is
// given and delivers the enquiry through a submission channel.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/glotvold/go-site/pkg/form"
	"github.com/glotvold/go-site/pkg/i18n"
	"github.com/glotvold/go-site/pkg/model"
	"github.com/glotvold/go-site/pkg/submission"
)

// Session is one terminal contact form.
type Session struct {
	channel      submission.Channel
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	translator   i18n.Translator
	locale       string
	logger       *slog.Logger
	prefill      map[model.Field]string
	formOptions  []form.Option
}

// Result describes a delivered enquiry.
type Result struct {
	Payload model.SubmissionPayload `json:"payload"`
	Receipt submission.Receipt      `json:"receipt"`
}

// New constructs a session delivering through channel. The survey driver is
// used unless another is supplied.
func New(channel submission.Channel, options ...Option) (*Session, error) {
	if channel == nil {
		return nil, form.ErrMissingChannel
	}
	s := &Session{
		channel:      channel,
		outputFormat: OutputFormatPrettyText,
		theme:        DefaultTheme,
		translator:   i18n.Default(),
		locale:       i18n.LocaleNorwegian,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	return s, nil
}

// Run prompts for every field, validating each answer on entry, then asks
// for confirmation and submits. Fields rejected at submit are asked again,
// and a failed delivery can be retried with the answers intact.
func (s *Session) Run(ctx context.Context) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("tui: context is required")
	}
	if s.driver == nil {
		return Result{}, ErrMissingDriver
	}

	r := &run{s: s, ctx: ctx, state: NewState(s.prefill)}
	opts := []form.Option{
		form.WithAnnotator(form.AnnotatorFunc(r.annotate)),
		form.WithView(r),
		form.WithTranslator(s.translator),
		form.WithLocale(s.locale),
		form.WithLogger(s.logger),
	}
	orch, err := form.New(r.state.Registry(), s.channel, append(opts, s.formOptions...)...)
	if err != nil {
		return Result{}, err
	}
	dispatcher := form.NewDispatcher()
	defer form.UnsubscribeAll(orch.Attach(dispatcher))

	for _, field := range model.ContactFields() {
		if err := r.prompt(dispatcher, field); err != nil {
			return Result{}, err
		}
	}

	ok, err := s.driver.Confirm(ctx, ConfirmConfig{Message: s.t(i18n.KeySubmitConfirm), Default: true})
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, ErrDeclined
	}

	for {
		err := dispatcher.Submit(ctx)
		var verr *form.ValidationError
		var serr *form.SubmissionError
		switch {
		case err == nil:
			payload, _ := orch.Payload()
			receipt, _ := orch.Receipt()
			return Result{Payload: payload, Receipt: receipt}, nil
		case errors.As(err, &verr):
			for _, result := range verr.Fields {
				if err := r.prompt(dispatcher, result.Field); err != nil {
					return Result{}, err
				}
			}
		case errors.As(err, &serr):
			retry, perr := s.driver.Confirm(ctx, ConfirmConfig{Message: s.t(i18n.KeySubmitRetry), Default: true})
			if perr != nil {
				return Result{}, perr
			}
			if !retry {
				return Result{}, err
			}
		default:
			return Result{}, err
		}
	}
}

// Summary renders a delivered enquiry in the configured output format.
func (s *Session) Summary(result Result) ([]byte, error) {
	if s.outputFormat == OutputFormatJSON {
		return json.MarshalIndent(result, "", "  ")
	}

	p := result.Payload
	siteVisit := s.t(i18n.KeyNo)
	if p.WantSiteVisit {
		siteVisit = s.t(i18n.KeyYes)
	}
	projectType := s.t(i18n.KeyMailNotSelected)
	if p.ProjectType != "" {
		projectType = s.t("projectType." + p.ProjectType)
	}
	address := p.Address
	if address == "" {
		address = s.t(i18n.KeyMailNotProvided)
	}

	var b strings.Builder
	rows := [][2]string{
		{s.label(model.FieldName), p.Name},
		{s.label(model.FieldEmail), p.Email},
		{s.label(model.FieldPhone), p.Phone},
		{s.label(model.FieldAddress), address},
		{s.label(model.FieldProjectType), projectType},
		{s.label(model.FieldDescription), p.Description},
		{s.label(model.FieldSiteVisit), siteVisit},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "%s: %s\n", row[0], row[1])
	}
	if result.Receipt.ID != "" {
		fmt.Fprintf(&b, "ID: %s\n", result.Receipt.ID)
	}
	return []byte(b.String()), nil
}

func (s *Session) t(key string, args ...any) string {
	return i18n.T(s.translator, s.locale, key, args...)
}

func (s *Session) label(field model.Field) string {
	return s.t("field." + field.String() + ".label")
}

// run carries the per-Run state and implements form.View.
type run struct {
	s     *Session
	ctx   context.Context
	state *State
}

func (r *run) info(prefix, message string) {
	if prefix != "" {
		message = prefix + " " + message
	}
	_ = r.s.driver.Info(r.ctx, message)
}

func (r *run) annotate(field model.Field, message string) {
	r.state.annotate(field, message)
	if message != "" {
		r.info(r.s.theme.ErrorPrefix, message)
	}
}

// prompt asks for field until it validates. A first answer is checked as a
// blur; corrections are checked as input so a fixed value clears its
// message.
func (r *run) prompt(d *form.Dispatcher, field model.Field) error {
	dispatch := d.Blur
	if r.state.ErrorFor(field) != "" {
		dispatch = d.Input
	}
	for {
		if err := r.ask(field); err != nil {
			return err
		}
		if err := dispatch(r.ctx, field); err != nil {
			return err
		}
		if r.state.ErrorFor(field) == "" {
			return nil
		}
		dispatch = d.Input
	}
}

func (r *run) ask(field model.Field) error {
	ctx, driver, label := r.ctx, r.s.driver, r.s.label(field)
	switch field {
	case model.FieldSiteVisit:
		on, err := driver.Confirm(ctx, ConfirmConfig{Message: label, Default: r.state.Checked(field)})
		if err != nil {
			return err
		}
		r.state.SetChecked(field, on)
	case model.FieldProjectType:
		values := append([]string{""}, model.ProjectTypes()...)
		options := make([]string, len(values))
		for i, value := range values {
			key := "projectType." + value
			if value == "" {
				key = "projectType.none"
			}
			options[i] = r.s.t(key)
		}
		idx, err := driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      options,
			DefaultIndex: max(slices.Index(values, r.state.Value(field)), 0),
		})
		if err != nil {
			return err
		}
		value := ""
		if idx >= 0 && idx < len(values) {
			value = values[idx]
		}
		r.state.SetValue(field, value)
	case model.FieldDescription:
		text, err := driver.TextArea(ctx, TextAreaConfig{Message: label, Default: r.state.Value(field)})
		if err != nil {
			return err
		}
		r.state.SetValue(field, text)
	default:
		text, err := driver.Input(ctx, InputConfig{Message: label, Default: r.state.Value(field)})
		if err != nil {
			return err
		}
		r.state.SetValue(field, text)
	}
	return nil
}

func (r *run) Focus(model.Field) {}

func (r *run) SetBusy(busy bool) {
	if busy {
		r.info(r.s.theme.InfoPrefix, r.s.t(i18n.KeySubmitBusy))
	}
}

func (r *run) ShowSuccess() {
	r.info(r.s.theme.SuccessPrefix, r.s.t(i18n.KeySuccessTitle))
	r.info("", r.s.t(i18n.KeySuccessBody))
}

func (r *run) ShowFailure(message string) {
	r.info(r.s.theme.ErrorPrefix, message)
}

func (r *run) ClearFailure() {}
