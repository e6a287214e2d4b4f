package form

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/glotvold/go-site/pkg/i18n"
	"github.com/glotvold/go-site/pkg/model"
	"github.com/glotvold/go-site/pkg/submission"
	"github.com/glotvold/go-site/pkg/validation"
)

// Transition records a state change.
type Transition struct {
	From model.UIState
	To   model.UIState
	At   time.Time
}

// TransitionFunc observes state changes. It runs after the orchestrator lock
// is released and may call back into the orchestrator.
type TransitionFunc func(Transition)

// Orchestrator runs the contact form workflow for one form instance:
// per-field validation on blur and input, full validation on submit, one
// delivery at a time, and the Idle, Submitting, Success and Failed states.
type Orchestrator struct {
	registry   *Registry
	channel    submission.Channel
	validators *validation.Set
	annotator  Annotator
	view       View
	logger     *slog.Logger
	now        func() time.Time
	translator i18n.Translator
	locale     string

	mu       sync.Mutex
	state    model.UIState
	results  map[model.Field]model.ValidationResult
	failure  string
	receipt  submission.Receipt
	payload  *model.SubmissionPayload
	watchers map[uint64]TransitionFunc
	nextID   uint64
}

// New wires an orchestrator over registry and channel.
func New(registry *Registry, channel submission.Channel, options ...Option) (*Orchestrator, error) {
	if registry == nil {
		return nil, ErrMissingRegistry
	}
	if channel == nil {
		return nil, ErrMissingChannel
	}
	o := &Orchestrator{
		registry:   registry,
		channel:    channel,
		validators: validation.New(),
		annotator:  AnnotatorFunc(func(model.Field, string) {}),
		view:       NopView{},
		logger:     slog.New(slog.DiscardHandler),
		now:        time.Now,
		translator: i18n.Default(),
		locale:     i18n.LocaleNorwegian,
		state:      model.StateIdle,
		results:    make(map[model.Field]model.ValidationResult),
		watchers:   make(map[uint64]TransitionFunc),
	}
	for _, opt := range options {
		if opt != nil {
			opt(o)
		}
	}
	return o, nil
}

// State returns the current UI state.
func (o *Orchestrator) State() model.UIState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Failure returns the notice shown after the last failed delivery.
func (o *Orchestrator) Failure() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.failure
}

// Receipt returns the delivery receipt once the form reached Success.
func (o *Orchestrator) Receipt() (submission.Receipt, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.receipt, o.state == model.StateSuccess
}

// Payload returns the snapshot captured by the last valid submit.
func (o *Orchestrator) Payload() (model.SubmissionPayload, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.payload == nil {
		return model.SubmissionPayload{}, false
	}
	return *o.payload, true
}

// Fields returns the live view of every registered field.
func (o *Orchestrator) Fields() []model.FormField {
	o.mu.Lock()
	defer o.mu.Unlock()
	fields := o.registry.Fields()
	out := make([]model.FormField, 0, len(fields))
	for _, field := range fields {
		out = append(out, model.FormField{
			Name:    field,
			Value:   o.registry.Value(field),
			Checked: o.registry.Checked(field),
			Result:  o.resultLocked(field),
		})
	}
	return out
}

// Errors returns the fields currently carrying a message, in document order.
func (o *Orchestrator) Errors() []model.ValidationResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []model.ValidationResult
	for _, field := range o.validators.Fields() {
		if result := o.resultLocked(field); !result.Valid() {
			out = append(out, result)
		}
	}
	return out
}

// OnTransition registers fn for every state change.
func (o *Orchestrator) OnTransition(fn TransitionFunc) *Subscription {
	if fn == nil {
		return &Subscription{}
	}
	o.mu.Lock()
	o.nextID++
	id := o.nextID
	o.watchers[id] = fn
	o.mu.Unlock()

	return &Subscription{cancel: func() {
		o.mu.Lock()
		delete(o.watchers, id)
		o.mu.Unlock()
	}}
}

// Attach registers blur and input handlers for every validated field present
// in the registry, and a submit handler. Cancelling the returned
// subscriptions detaches the orchestrator.
func (o *Orchestrator) Attach(d *Dispatcher) []*Subscription {
	if d == nil {
		return nil
	}
	var subs []*Subscription
	for _, field := range o.validators.Fields() {
		if !o.registry.Has(field) {
			o.logger.Debug("field not on page, skipping handlers", slog.String("field", field.String()))
			continue
		}
		subs = append(subs,
			d.On(EventBlur, field, func(_ context.Context, ev Event) error {
				o.Blur(ev.Field)
				return nil
			}),
			d.On(EventInput, field, func(_ context.Context, ev Event) error {
				o.Input(ev.Field)
				return nil
			}),
		)
	}
	subs = append(subs, d.On(EventSubmit, "", func(ctx context.Context, _ Event) error {
		return o.Submit(ctx)
	}))
	return subs
}

// Blur validates field and updates its annotation.
func (o *Orchestrator) Blur(field model.Field) model.ValidationResult {
	o.mu.Lock()
	if o.state == model.StateSuccess {
		o.mu.Unlock()
		return model.ValidationResult{Field: field}
	}
	transitions := o.leaveFailedLocked()
	result := o.validateLocked(field)
	o.mu.Unlock()

	o.notify(transitions)
	return result
}

// Input re-validates field only while it carries an error, so a message
// disappears as soon as the value is corrected. The boolean reports whether
// validation ran.
func (o *Orchestrator) Input(field model.Field) (model.ValidationResult, bool) {
	o.mu.Lock()
	if o.state == model.StateSuccess {
		o.mu.Unlock()
		return model.ValidationResult{Field: field}, false
	}
	transitions := o.leaveFailedLocked()
	current := o.resultLocked(field)
	ran := !current.Valid()
	if ran {
		current = o.validateLocked(field)
	}
	o.mu.Unlock()

	o.notify(transitions)
	return current, ran
}

// Submit validates every field and, when all pass, delivers the payload.
// It returns nil on success, *ValidationError when fields are invalid,
// *SubmissionError when the channel failed, *MissingControlError when a
// validated field has no control, ErrSubmitInFlight while a delivery is
// running and ErrAlreadySubmitted after success.
//
// The delivery ignores ctx cancellation: once started it runs to completion.
func (o *Orchestrator) Submit(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	o.mu.Lock()
	switch o.state {
	case model.StateSubmitting:
		o.mu.Unlock()
		return ErrSubmitInFlight
	case model.StateSuccess:
		o.mu.Unlock()
		return ErrAlreadySubmitted
	}
	transitions := o.leaveFailedLocked()

	var missing []model.Field
	for _, field := range o.validators.Fields() {
		if !o.registry.Has(field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		o.mu.Unlock()
		o.notify(transitions)
		err := &MissingControlError{Fields: missing}
		o.logger.ErrorContext(ctx, "contact form cannot submit", slog.Any("error", err))
		return err
	}

	var invalid []model.ValidationResult
	for _, field := range o.validators.Fields() {
		if result := o.validateLocked(field); !result.Valid() {
			invalid = append(invalid, result)
		}
	}
	if len(invalid) > 0 {
		first := invalid[0].Field
		o.view.Focus(first)
		o.mu.Unlock()
		o.notify(transitions)
		o.logger.DebugContext(ctx, "contact form invalid",
			slog.Int("invalid", len(invalid)),
			slog.String("first", first.String()),
		)
		return &ValidationError{Fields: invalid, First: first}
	}

	payload := o.payloadLocked()
	o.payload = &payload
	o.view.ClearFailure()
	o.view.SetBusy(true)
	transitions = append(transitions, o.setStateLocked(model.StateSubmitting))
	o.mu.Unlock()
	o.notify(transitions)

	channelName := submission.NameOf(o.channel)
	receipt, err := o.deliver(context.WithoutCancel(ctx), payload)

	o.mu.Lock()
	if err != nil {
		message := i18n.T(o.translator, o.locale, i18n.KeySubmitFailed)
		o.failure = message
		o.view.SetBusy(false)
		o.view.ShowFailure(message)
		tr := o.setStateLocked(model.StateFailed)
		o.mu.Unlock()
		o.notify([]Transition{tr})

		o.logger.WarnContext(ctx, "contact form delivery failed",
			slog.String("channel", channelName),
			slog.String("kind", string(submission.KindOf(err))),
			slog.Any("error", err),
		)
		return &SubmissionError{Message: message, Err: err}
	}

	o.receipt = receipt
	o.failure = ""
	o.view.ShowSuccess()
	tr := o.setStateLocked(model.StateSuccess)
	o.mu.Unlock()
	o.notify([]Transition{tr})

	o.logger.InfoContext(ctx, "contact form delivered",
		slog.String("channel", channelName),
		slog.String("receipt", receipt.ID),
	)
	return nil
}

func (o *Orchestrator) deliver(ctx context.Context, payload model.SubmissionPayload) (receipt submission.Receipt, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrChannelPanic, r)
		}
	}()
	return o.channel.Submit(ctx, payload)
}

func (o *Orchestrator) validateLocked(field model.Field) model.ValidationResult {
	if !o.registry.Has(field) {
		return model.ValidationResult{Field: field}
	}
	result := o.validators.Validate(field, o.registry.Value(field))
	if result.Valid() {
		delete(o.results, field)
	} else {
		o.results[field] = result
	}
	o.annotator.Annotate(field, result.Message)
	return result
}

func (o *Orchestrator) resultLocked(field model.Field) model.ValidationResult {
	if result, ok := o.results[field]; ok {
		return result
	}
	return model.ValidationResult{Field: field}
}

func (o *Orchestrator) payloadLocked() model.SubmissionPayload {
	text := func(field model.Field) string {
		return strings.TrimSpace(o.registry.Value(field))
	}
	return model.SubmissionPayload{
		Name:          text(model.FieldName),
		Email:         text(model.FieldEmail),
		Phone:         text(model.FieldPhone),
		Address:       text(model.FieldAddress),
		ProjectType:   o.registry.Value(model.FieldProjectType),
		Description:   text(model.FieldDescription),
		WantSiteVisit: o.registry.Checked(model.FieldSiteVisit),
		Timestamp:     o.now().UTC(),
	}
}

func (o *Orchestrator) leaveFailedLocked() []Transition {
	if o.state != model.StateFailed {
		return nil
	}
	return []Transition{o.setStateLocked(model.StateIdle)}
}

func (o *Orchestrator) setStateLocked(to model.UIState) Transition {
	tr := Transition{From: o.state, To: to, At: o.now()}
	o.state = to
	return tr
}

func (o *Orchestrator) notify(transitions []Transition) {
	if len(transitions) == 0 {
		return
	}
	o.mu.Lock()
	ids := make([]uint64, 0, len(o.watchers))
	for id := range o.watchers {
		ids = append(ids, id)
	}
	watchers := make([]TransitionFunc, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		watchers = append(watchers, o.watchers[id])
	}
	o.mu.Unlock()

	for _, tr := range transitions {
		o.logger.Debug("contact form state",
			slog.String("from", tr.From.String()),
			slog.String("to", tr.To.String()),
		)
		for _, fn := range watchers {
			fn(tr)
		}
	}
}
