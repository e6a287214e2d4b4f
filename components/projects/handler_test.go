package projects

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var fixture = []Project{
	{Slug: "a", Title: "A", Category: "bathroom"},
	{Slug: "b", Title: "B", Category: "extension"},
}

func TestHandler_FiltersByCategory(t *testing.T) {
	h := NewHandler(NewOptions(WithProjects(fixture)))

	req := httptest.NewRequest(http.MethodGet, "/api/projects?category=extension", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}

	var payload listResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := listResponse{
		Data:       []Project{{Slug: "b", Title: "B", Category: "extension"}},
		Categories: []string{"bathroom", "extension"},
		Active:     "extension",
	}
	if diff := cmp.Diff(want, payload); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_UnknownCategoryReturnsEmptyArray(t *testing.T) {
	h := NewHandler(NewOptions(WithProjects(fixture), WithCategoryParam("kategori")))

	req := httptest.NewRequest(http.MethodGet, "/api/projects?kategori=garage", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var payload listResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Data == nil || len(payload.Data) != 0 {
		t.Fatalf("expected empty data array, got %#v", payload.Data)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := NewHandler(NewOptions(WithProjects(fixture)))

	req := httptest.NewRequest(http.MethodPost, "/api/projects", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, HEAD" {
		t.Fatalf("unexpected Allow header %q", allow)
	}
}

func TestHandler_GuardStatus(t *testing.T) {
	h := NewHandler(NewOptions(
		WithProjects(fixture),
		WithGuard(func(*http.Request) error {
			return StatusError{Code: http.StatusUnauthorized, Err: errors.New("nope")}
		}),
	))

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	var payload errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Error != "nope" {
		t.Fatalf("unexpected guard message %q", payload.Error)
	}
}

func TestHandler_PlainGuardErrorIsForbidden(t *testing.T) {
	h := NewHandler(NewOptions(WithProjects(fixture), WithGuard(func(*http.Request) error {
		return errors.New("closed")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestComponent_Mount(t *testing.T) {
	mux := http.NewServeMux()
	base := New(WithProjects(fixture))
	route, err := base.With(WithRoute("/prosjekter.json")).Mount(mux)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	if route != "/prosjekter.json" {
		t.Fatalf("unexpected route %q", route)
	}
	if base.Options().Route != "/api/projects" {
		t.Fatalf("With must not modify the receiver")
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, route, nil))
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 200 for HEAD, got %d with %d bytes", rec.Code, rec.Body.Len())
	}

	if _, err := base.Mount(nil); err == nil {
		t.Fatalf("expected error for nil mux")
	}
}
