package form_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/glotvold/go-site/pkg/form"
	"github.com/glotvold/go-site/pkg/i18n"
	"github.com/glotvold/go-site/pkg/model"
	"github.com/glotvold/go-site/pkg/submission"
)

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

type recordingView struct {
	mu     sync.Mutex
	calls  []string
	focus  []model.Field
	notice string
}

func (v *recordingView) record(call string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = append(v.calls, call)
}

func (v *recordingView) Focus(field model.Field) {
	v.mu.Lock()
	v.focus = append(v.focus, field)
	v.mu.Unlock()
	v.record("focus:" + field.String())
}

func (v *recordingView) SetBusy(busy bool) {
	if busy {
		v.record("busy")
		return
	}
	v.record("idle")
}

func (v *recordingView) ShowSuccess() { v.record("success") }

func (v *recordingView) ShowFailure(message string) {
	v.mu.Lock()
	v.notice = message
	v.mu.Unlock()
	v.record("failure")
}

func (v *recordingView) ClearFailure() { v.record("clear-failure") }

func (v *recordingView) Calls() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.calls...)
}

type mutableControl struct {
	mu      sync.Mutex
	name    model.Field
	value   string
	checked bool
}

func (c *mutableControl) Field() model.Field { return c.name }

func (c *mutableControl) Value() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *mutableControl) Checked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checked
}

func (c *mutableControl) Set(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
}

type fixture struct {
	controls  map[model.Field]*mutableControl
	registry  *form.Registry
	view      *recordingView
	collector *form.Collector
	calls     atomic.Int32
}

func newFixture(values map[model.Field]string) *fixture {
	f := &fixture{
		controls:  make(map[model.Field]*mutableControl),
		view:      &recordingView{},
		collector: form.NewCollector(),
	}
	var controls []form.Control
	for _, field := range model.ContactFields() {
		control := &mutableControl{name: field, value: values[field]}
		if field == model.FieldSiteVisit {
			control.checked = form.Truthy(values[field])
		}
		f.controls[field] = control
		controls = append(controls, control)
	}
	f.registry = form.NewRegistry(controls...)
	return f
}

func validValues() map[model.Field]string {
	return map[model.Field]string{
		model.FieldName:        "  Kari Nordmann ",
		model.FieldEmail:       "kari@example.no",
		model.FieldPhone:       "+47 900 00 000",
		model.FieldAddress:     " Storgata 1, Oslo ",
		model.FieldProjectType: " bathroom ",
		model.FieldDescription: "Nytt bad i kjelleren, ca 6 kvm.",
		model.FieldSiteVisit:   "on",
	}
}

func (f *fixture) orchestrator(t *testing.T, ch submission.Channel) *form.Orchestrator {
	t.Helper()
	o, err := form.New(f.registry, ch,
		form.WithView(f.view),
		form.WithAnnotator(f.collector),
		form.WithClock(func() time.Time { return fixedNow }),
	)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	return o
}

func (f *fixture) countingChannel(err error) submission.Channel {
	return submission.Func(func(context.Context, model.SubmissionPayload) (submission.Receipt, error) {
		f.calls.Add(1)
		if err != nil {
			return submission.Receipt{}, err
		}
		return submission.Receipt{ID: "r-1", Channel: "test"}, nil
	})
}

func collect(o *form.Orchestrator) *[]form.Transition {
	var mu sync.Mutex
	var got []form.Transition
	o.OnTransition(func(tr form.Transition) {
		mu.Lock()
		defer mu.Unlock()
		tr.At = time.Time{}
		got = append(got, tr)
	})
	return &got
}

func TestNewRequiresRegistryAndChannel(t *testing.T) {
	if _, err := form.New(nil, submission.NewStub()); !errors.Is(err, form.ErrMissingRegistry) {
		t.Fatalf("expected missing registry, got %v", err)
	}
	if _, err := form.New(form.NewRegistry(), nil); !errors.Is(err, form.ErrMissingChannel) {
		t.Fatalf("expected missing channel, got %v", err)
	}
}

func TestSubmitInvalidNeverCallsChannel(t *testing.T) {
	values := validValues()
	values[model.FieldEmail] = "a@b"
	values[model.FieldDescription] = "kort"
	f := newFixture(values)
	o := f.orchestrator(t, f.countingChannel(nil))
	transitions := collect(o)

	err := o.Submit(context.Background())

	var invalid *form.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if invalid.First != model.FieldEmail {
		t.Fatalf("expected email first, got %s", invalid.First)
	}
	want := map[string]string{
		"email":       "Vennligst oppgi en gyldig e-postadresse",
		"description": "Beskrivelsen må være minst 10 tegn",
	}
	if diff := cmp.Diff(want, invalid.Messages()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, f.collector.Messages()); diff != "" {
		t.Fatalf("annotations mismatch (-want +got):\n%s", diff)
	}
	if f.calls.Load() != 0 {
		t.Fatalf("channel called %d times for invalid form", f.calls.Load())
	}
	if diff := cmp.Diff([]string{"focus:email"}, f.view.Calls()); diff != "" {
		t.Fatalf("view calls mismatch (-want +got):\n%s", diff)
	}
	if o.State() != model.StateIdle || len(*transitions) != 0 {
		t.Fatalf("expected to stay idle, state %s transitions %v", o.State(), *transitions)
	}
	if _, ok := o.Payload(); ok {
		t.Fatalf("payload must not be captured for an invalid form")
	}
}

func TestSubmitSuccessIsTerminal(t *testing.T) {
	f := newFixture(validValues())
	o := f.orchestrator(t, f.countingChannel(nil))
	transitions := collect(o)

	if err := o.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	wantTransitions := []form.Transition{
		{From: model.StateIdle, To: model.StateSubmitting},
		{From: model.StateSubmitting, To: model.StateSuccess},
	}
	if diff := cmp.Diff(wantTransitions, *transitions); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"clear-failure", "busy", "success"}, f.view.Calls()); diff != "" {
		t.Fatalf("view calls mismatch (-want +got):\n%s", diff)
	}

	if err := o.Submit(context.Background()); !errors.Is(err, form.ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}
	f.controls[model.FieldName].Set("")
	if result := o.Blur(model.FieldName); !result.Valid() {
		t.Fatalf("blur after success must be ignored, got %q", result.Message)
	}
	if o.State() != model.StateSuccess || len(*transitions) != 2 || f.calls.Load() != 1 {
		t.Fatalf("success must be terminal: state %s transitions %d calls %d", o.State(), len(*transitions), f.calls.Load())
	}
	receipt, ok := o.Receipt()
	if !ok || receipt.ID != "r-1" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
}

func TestSubmitCapturesPayload(t *testing.T) {
	f := newFixture(validValues())
	var got model.SubmissionPayload
	o := f.orchestrator(t, submission.Func(func(_ context.Context, p model.SubmissionPayload) (submission.Receipt, error) {
		got = p
		return submission.Receipt{}, nil
	}))

	if err := o.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	want := model.SubmissionPayload{
		Name:          "Kari Nordmann",
		Email:         "kari@example.no",
		Phone:         "+47 900 00 000",
		Address:       "Storgata 1, Oslo",
		ProjectType:   " bathroom ",
		Description:   "Nytt bad i kjelleren, ca 6 kvm.",
		WantSiteVisit: true,
		Timestamp:     fixedNow,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitFailureRestoresForm(t *testing.T) {
	f := newFixture(validValues())
	boom := errors.New("connection reset")
	var fail atomic.Bool
	fail.Store(true)
	o := f.orchestrator(t, submission.Func(func(context.Context, model.SubmissionPayload) (submission.Receipt, error) {
		if fail.Load() {
			return submission.Receipt{}, boom
		}
		return submission.Receipt{ID: "retry"}, nil
	}))
	transitions := collect(o)
	before := o.Fields()

	err := o.Submit(context.Background())

	var failed *form.SubmissionError
	if !errors.As(err, &failed) || !errors.Is(err, boom) {
		t.Fatalf("expected SubmissionError wrapping cause, got %v", err)
	}
	if failed.Message != i18n.T(i18n.Default(), i18n.LocaleNorwegian, i18n.KeySubmitFailed) {
		t.Fatalf("unexpected notice %q", failed.Message)
	}
	if o.State() != model.StateFailed || o.Failure() != failed.Message {
		t.Fatalf("expected failed state with notice, got %s %q", o.State(), o.Failure())
	}
	if diff := cmp.Diff(before, o.Fields()); diff != "" {
		t.Fatalf("field values changed by failure (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"clear-failure", "busy", "idle", "failure"}, f.view.Calls()); diff != "" {
		t.Fatalf("view calls mismatch (-want +got):\n%s", diff)
	}

	// Any user event returns the form to idle; a retry may then succeed.
	o.Blur(model.FieldName)
	if o.State() != model.StateIdle {
		t.Fatalf("expected idle after blur, got %s", o.State())
	}
	fail.Store(false)
	if err := o.Submit(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}

	wantTransitions := []form.Transition{
		{From: model.StateIdle, To: model.StateSubmitting},
		{From: model.StateSubmitting, To: model.StateFailed},
		{From: model.StateFailed, To: model.StateIdle},
		{From: model.StateIdle, To: model.StateSubmitting},
		{From: model.StateSubmitting, To: model.StateSuccess},
	}
	if diff := cmp.Diff(wantTransitions, *transitions); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitFromFailedGoesThroughIdle(t *testing.T) {
	f := newFixture(validValues())
	o := f.orchestrator(t, f.countingChannel(errors.New("down")))
	transitions := collect(o)

	_ = o.Submit(context.Background())
	_ = o.Submit(context.Background())

	want := []form.Transition{
		{From: model.StateIdle, To: model.StateSubmitting},
		{From: model.StateSubmitting, To: model.StateFailed},
		{From: model.StateFailed, To: model.StateIdle},
		{From: model.StateIdle, To: model.StateSubmitting},
		{From: model.StateSubmitting, To: model.StateFailed},
	}
	if diff := cmp.Diff(want, *transitions); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentSubmitIsRejected(t *testing.T) {
	f := newFixture(validValues())
	started := make(chan struct{})
	release := make(chan struct{})
	o := f.orchestrator(t, submission.Func(func(context.Context, model.SubmissionPayload) (submission.Receipt, error) {
		close(started)
		<-release
		return submission.Receipt{}, nil
	}))

	done := make(chan error, 1)
	go func() { done <- o.Submit(context.Background()) }()
	<-started

	if o.State() != model.StateSubmitting {
		t.Fatalf("expected submitting, got %s", o.State())
	}
	if err := o.Submit(context.Background()); !errors.Is(err, form.ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
}

func TestSubmitIgnoresCallerCancellation(t *testing.T) {
	f := newFixture(validValues())
	ctx, cancel := context.WithCancel(context.Background())
	var sawCancelled bool
	o := f.orchestrator(t, submission.Func(func(ctx context.Context, _ model.SubmissionPayload) (submission.Receipt, error) {
		cancel()
		sawCancelled = ctx.Err() != nil
		return submission.Receipt{}, nil
	}))

	if err := o.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sawCancelled {
		t.Fatalf("channel context must not inherit caller cancellation")
	}
}

func TestChannelPanicBecomesFailure(t *testing.T) {
	f := newFixture(validValues())
	o := f.orchestrator(t, submission.Func(func(context.Context, model.SubmissionPayload) (submission.Receipt, error) {
		panic("nil map")
	}))

	err := o.Submit(context.Background())
	if !errors.Is(err, form.ErrChannelPanic) {
		t.Fatalf("expected ErrChannelPanic, got %v", err)
	}
	if o.State() != model.StateFailed {
		t.Fatalf("expected failed state, got %s", o.State())
	}
}

func TestInputRevalidatesOnlyInvalidFields(t *testing.T) {
	f := newFixture(validValues())
	o := f.orchestrator(t, f.countingChannel(nil))
	name := f.controls[model.FieldName]

	name.Set("K")
	if _, ran := o.Input(model.FieldName); ran {
		t.Fatalf("input on a clean field must not validate")
	}
	if result := o.Blur(model.FieldName); result.Key != i18n.KeyNameTooShort {
		t.Fatalf("expected too short on blur, got %q", result.Key)
	}

	name.Set("Ka")
	result, ran := o.Input(model.FieldName)
	if !ran || !result.Valid() {
		t.Fatalf("expected input to clear the stale error, ran=%v result=%+v", ran, result)
	}
	if len(o.Errors()) != 0 || f.collector.Messages() != nil {
		t.Fatalf("expected no lingering errors: %v %v", o.Errors(), f.collector.Messages())
	}
}

func TestAttachRoutesEventsAndUnsubscribes(t *testing.T) {
	values := validValues()
	values[model.FieldPhone] = "123"
	f := newFixture(values)
	o := f.orchestrator(t, f.countingChannel(nil))
	d := form.NewDispatcher()

	subs := o.Attach(d)
	// name, email, phone, description each get blur and input, plus submit.
	if len(subs) != 9 || d.Count() != 9 {
		t.Fatalf("expected 9 subscriptions, got %d (dispatcher %d)", len(subs), d.Count())
	}

	if err := d.Blur(context.Background(), model.FieldPhone); err != nil {
		t.Fatalf("blur: %v", err)
	}
	if got := f.collector.Messages()["phone"]; got != "Vennligst oppgi et gyldig telefonnummer" {
		t.Fatalf("unexpected phone annotation %q", got)
	}

	f.controls[model.FieldPhone].Set("900 00 000")
	if err := d.Input(context.Background(), model.FieldPhone); err != nil {
		t.Fatalf("input: %v", err)
	}
	if f.collector.Messages() != nil {
		t.Fatalf("expected phone error cleared, got %v", f.collector.Messages())
	}

	if err := d.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if o.State() != model.StateSuccess {
		t.Fatalf("expected success, got %s", o.State())
	}

	form.UnsubscribeAll(subs)
	form.UnsubscribeAll(subs)
	if d.Count() != 0 {
		t.Fatalf("expected all handlers removed, %d left", d.Count())
	}
}

func TestAttachSkipsMissingControls(t *testing.T) {
	registry := form.NewRegistry(
		form.ValueControl{Name: model.FieldName, Raw: "Kari"},
		form.ValueControl{Name: model.FieldDescription, Raw: "Tilbygg på hytta"},
	)
	o, err := form.New(registry, submission.NewStub(submission.WithDelay(0)))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	d := form.NewDispatcher()
	if subs := o.Attach(d); len(subs) != 5 {
		t.Fatalf("expected handlers for name and description plus submit, got %d", len(subs))
	}
	var calls atomic.Int32
	o, err = form.New(registry, submission.Func(func(context.Context, model.SubmissionPayload) (submission.Receipt, error) {
		calls.Add(1)
		return submission.Receipt{}, nil
	}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	err = o.Submit(context.Background())
	var missing *form.MissingControlError
	if !errors.As(err, &missing) || !errors.Is(err, form.ErrMissingControl) {
		t.Fatalf("expected missing control error, got %v", err)
	}
	if diff := cmp.Diff([]model.Field{model.FieldEmail, model.FieldPhone}, missing.Fields); diff != "" {
		t.Fatalf("missing fields mismatch (-want +got):\n%s", diff)
	}
	if calls.Load() != 0 || o.State() != model.StateIdle {
		t.Fatalf("expected no delivery and idle state, got %d calls in %s", calls.Load(), o.State())
	}
	if _, ok := o.Payload(); ok {
		t.Fatalf("no payload may be captured")
	}
}

func TestUnsubscribedTransitionListenerStopsReceiving(t *testing.T) {
	f := newFixture(validValues())
	o := f.orchestrator(t, f.countingChannel(nil))
	var count atomic.Int32
	sub := o.OnTransition(func(form.Transition) { count.Add(1) })
	sub.Unsubscribe()

	if err := o.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if count.Load() != 0 {
		t.Fatalf("listener called %d times after unsubscribe", count.Load())
	}
}
