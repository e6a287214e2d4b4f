package form_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/glotvold/go-site/pkg/form"
	"github.com/glotvold/go-site/pkg/model"
)

func TestRegistryRejectsDuplicatesAndBlankNames(t *testing.T) {
	r := form.NewRegistry()
	if err := r.Register(form.ValueControl{Name: model.FieldEmail}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(form.ValueControl{Name: model.FieldEmail}); !errors.Is(err, form.ErrDuplicateField) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err := r.Register(form.ValueControl{}); !errors.Is(err, form.ErrInvalidControl) {
		t.Fatalf("expected invalid control error, got %v", err)
	}
	if err := r.Register(nil); !errors.Is(err, form.ErrInvalidControl) {
		t.Fatalf("expected invalid control error for nil, got %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("expected one control, got %d", r.Len())
	}
}

func TestRegistryFromValues(t *testing.T) {
	r := form.RegistryFromValues(map[model.Field]string{
		model.FieldName:      "Kari",
		model.FieldSiteVisit: "Ja",
	})

	if diff := cmp.Diff(model.ContactFields(), r.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if r.Value(model.FieldName) != "Kari" || r.Value(model.FieldPhone) != "" {
		t.Fatalf("unexpected values")
	}
	if !r.Checked(model.FieldSiteVisit) {
		t.Fatalf("expected site visit checked")
	}
	if r.Checked(model.Field("unknown")) {
		t.Fatalf("unknown field must not be checked")
	}
}

func TestTruthy(t *testing.T) {
	for raw, want := range map[string]bool{
		"on": true, "TRUE": true, "1": true, "ja": true, " yes ": true,
		"": false, "off": false, "0": false, "nei": false,
	} {
		if got := form.Truthy(raw); got != want {
			t.Fatalf("Truthy(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestDispatcherWildcardAndErrors(t *testing.T) {
	d := form.NewDispatcher()
	var seen []string
	d.On(form.EventBlur, model.FieldName, func(_ context.Context, ev form.Event) error {
		seen = append(seen, "name:"+string(ev.Kind))
		return nil
	})
	d.On(form.EventBlur, "", func(_ context.Context, ev form.Event) error {
		seen = append(seen, "any:"+ev.Field.String())
		return errors.New("wildcard failed")
	})

	err := d.Blur(context.Background(), model.FieldName)
	if err == nil || err.Error() != "wildcard failed" {
		t.Fatalf("expected joined handler error, got %v", err)
	}
	if err := d.Input(context.Background(), model.FieldName); err != nil {
		t.Fatalf("input with no handlers: %v", err)
	}

	if diff := cmp.Diff([]string{"name:blur", "any:name"}, seen); diff != "" {
		t.Fatalf("handler order mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectorFieldsInDocumentOrder(t *testing.T) {
	c := form.NewCollector()
	c.Annotate(model.FieldDescription, "kort")
	c.Annotate(model.Field("zz"), "x")
	c.Annotate(model.FieldName, "mangler")
	c.Annotate(model.FieldEmail, "feil")
	c.Annotate(model.FieldEmail, "")

	want := []model.Field{model.FieldName, model.FieldDescription, model.Field("zz")}
	if diff := cmp.Diff(want, c.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}
