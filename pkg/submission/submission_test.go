package submission_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/glotvold/go-site/pkg/model"
	"github.com/glotvold/go-site/pkg/submission"
)

func samplePayload() model.SubmissionPayload {
	return model.SubmissionPayload{
		Name:          "Kari <b>Nordmann</b>",
		Email:         "kari@example.no",
		Phone:         "+47 900 00 000",
		ProjectType:   "bathroom",
		Description:   "Nytt bad\ni kjelleren",
		WantSiteVisit: true,
		Timestamp:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestStubSucceedsAfterDelay(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stub := submission.NewStub(submission.WithDelay(5*time.Millisecond), submission.WithStubClock(func() time.Time { return fixed }))

	first, err := stub.Submit(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	second, err := stub.Submit(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	want := submission.Receipt{ID: "stub-1", Channel: "stub", DeliveredAt: fixed}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("receipt mismatch (-want +got):\n%s", diff)
	}
	if second.ID != "stub-2" {
		t.Fatalf("expected sequential ids, got %q", second.ID)
	}
}

func TestStubHonoursCancellation(t *testing.T) {
	stub := submission.NewStub(submission.WithDelay(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stub.Submit(ctx, samplePayload())
	if submission.KindOf(err) != submission.FailureNetwork {
		t.Fatalf("expected network failure, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}

func TestComposerSanitisesAndLocalises(t *testing.T) {
	composer, err := submission.NewComposer()
	if err != nil {
		t.Fatalf("composer: %v", err)
	}
	email, err := composer.Compose(samplePayload())
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	if email.Subject != "Ny henvendelse fra Kari <b>Nordmann</b>" {
		t.Fatalf("unexpected subject %q", email.Subject)
	}
	if email.ReplyTo != "kari@example.no" {
		t.Fatalf("unexpected reply-to %q", email.ReplyTo)
	}
	for _, want := range []string{
		"<h2>Ny henvendelse fra nettsiden</h2>",
		"<strong>Navn:</strong> Kari Nordmann</p>",
		"<strong>Adresse/område:</strong> Ikke oppgitt</p>",
		"<strong>Type prosjekt:</strong> Bad</p>",
		"<strong>Ønsker befaring:</strong> Ja</p>",
		"Nytt bad<br",
	} {
		if !strings.Contains(email.HTML, want) {
			t.Fatalf("expected %q in email:\n%s", want, email.HTML)
		}
	}
	if strings.Contains(email.HTML, "<b>") {
		t.Fatalf("expected markup stripped:\n%s", email.HTML)
	}
}

func TestComposerEnglish(t *testing.T) {
	composer, err := submission.NewComposer(submission.WithComposerLocale("en"))
	if err != nil {
		t.Fatalf("composer: %v", err)
	}
	payload := samplePayload()
	payload.ProjectType = ""
	payload.WantSiteVisit = false
	email, err := composer.Compose(payload)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !strings.HasPrefix(email.Subject, "New enquiry from ") {
		t.Fatalf("unexpected subject %q", email.Subject)
	}
	if !strings.Contains(email.HTML, "Not selected") || !strings.Contains(email.HTML, "Request a site visit:</strong> No") {
		t.Fatalf("unexpected english body:\n%s", email.HTML)
	}
}

func TestNewResendValidatesConfig(t *testing.T) {
	if _, err := submission.NewResend(submission.ResendConfig{From: "a@b.no", To: "c@d.no"}); !errors.Is(err, submission.ErrMissingAPIKey) {
		t.Fatalf("expected missing key error, got %v", err)
	}
	if _, err := submission.NewResend(submission.ResendConfig{APIKey: "re_test"}); !errors.Is(err, submission.ErrMissingRecipient) {
		t.Fatalf("expected missing recipient error, got %v", err)
	}
}

func newResend(t *testing.T, url string) *submission.Resend {
	t.Helper()
	ch, err := submission.NewResend(submission.ResendConfig{
		BaseURL: url,
		APIKey:  "re_test",
		From:    "nettside@glotvold.no",
		To:      "post@glotvold.no",
		Timeout: time.Second,
	})
	if err != nil {
		t.Fatalf("new resend: %v", err)
	}
	return ch
}

func TestResendDelivers(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer re_test" {
			t.Errorf("unexpected authorization %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"4ef9a417"}`))
	}))
	defer server.Close()

	receipt, err := newResend(t, server.URL).Submit(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if receipt.ID != "4ef9a417" || receipt.Channel != "resend" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	if got["from"] != "nettside@glotvold.no" || got["reply_to"] != "kari@example.no" {
		t.Fatalf("unexpected request body %+v", got)
	}
	if diff := cmp.Diff([]any{"post@glotvold.no"}, got["to"]); diff != "" {
		t.Fatalf("recipient mismatch (-want +got):\n%s", diff)
	}
}

func TestResendClassifiesFailures(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		kind    submission.FailureKind
		message string
	}{
		{"validation", http.StatusUnprocessableEntity, `{"name":"validation_error","message":"Invalid from field"}`, submission.FailureRejected, "Invalid from field"},
		{"auth", http.StatusUnauthorized, `missing key`, submission.FailureRejected, "missing key"},
		{"server", http.StatusBadGateway, `{"message":"upstream"}`, submission.FailureServer, "upstream"},
		{"no id", http.StatusOK, `{}`, submission.FailureServer, "response carried no message id"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := newResend(t, server.URL).Submit(context.Background(), samplePayload())
			var delivery *submission.DeliveryError
			if !errors.As(err, &delivery) {
				t.Fatalf("expected DeliveryError, got %v", err)
			}
			if delivery.Kind != tc.kind || delivery.StatusCode != tc.status || delivery.Message != tc.message {
				t.Fatalf("unexpected failure %+v", delivery)
			}
		})
	}
}

func TestResendNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newResend(t, url).Submit(context.Background(), samplePayload())
	if submission.KindOf(err) != submission.FailureNetwork {
		t.Fatalf("expected network failure, got %v", err)
	}
	var delivery *submission.DeliveryError
	if errors.As(err, &delivery) && !delivery.Temporary() {
		t.Fatalf("expected network failure to be temporary")
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingObserver) ObserveSubmission(channel, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, channel+":"+outcome)
}

func TestInstrumentReportsOutcomes(t *testing.T) {
	observer := &recordingObserver{}
	calls := 0
	ch := submission.Instrument(submission.Func(func(context.Context, model.SubmissionPayload) (submission.Receipt, error) {
		calls++
		switch calls {
		case 1:
			return submission.Receipt{ID: "ok"}, nil
		case 2:
			return submission.Receipt{}, &submission.DeliveryError{Kind: submission.FailureRejected}
		default:
			return submission.Receipt{}, errors.New("boom")
		}
	}), observer)

	for i := 0; i < 3; i++ {
		_, _ = ch.Submit(context.Background(), samplePayload())
	}

	want := []string{"custom:success", "custom:rejected", "custom:error"}
	if diff := cmp.Diff(want, observer.outcomes); diff != "" {
		t.Fatalf("outcomes mismatch (-want +got):\n%s", diff)
	}
	if submission.Instrument(nil, observer) != nil {
		t.Fatalf("expected nil channel to stay nil")
	}
}
