package openapi_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/glotvold/go-site/pkg/openapi"
)

func loadContract(t *testing.T) *openapi.Contract {
	t.Helper()
	contract, err := openapi.LoadContact(context.Background())
	if err != nil {
		t.Fatalf("load contract: %v", err)
	}
	return contract
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestContactContractOperations(t *testing.T) {
	contract := loadContract(t)

	var ids []string
	for _, op := range contract.Operations() {
		ids = append(ids, op.Method+" "+op.Path+" "+op.ID)
	}
	want := []string{
		"POST /api/contact submitContact",
		"POST /api/contact/validate validateContactField",
		"GET /api/projects listProjects",
		"POST /api/track/phone trackPhoneClick",
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
	if contract.Version() != "1.0.0" {
		t.Fatalf("unexpected version %q", contract.Version())
	}
}

func TestValidateRequestAcceptsContactPayload(t *testing.T) {
	contract := loadContract(t)
	body := `{"name":"Kari","email":"kari@example.no","phone":"90000000","projectType":"bathroom","description":"Nytt bad","siteVisit":true}`
	req := jsonRequest(http.MethodPost, "/api/contact", body)

	if err := contract.ValidateRequest(req); err != nil {
		t.Fatalf("validate: %v", err)
	}
	got, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(got) != body {
		t.Fatalf("body not restored: %q", got)
	}
}

func TestValidateRequestReportsPointers(t *testing.T) {
	contract := loadContract(t)
	req := jsonRequest(http.MethodPost, "/api/contact", `{"name":"Kari","siteVisit":"ja"}`)

	err := contract.ValidateRequest(req)
	var reqErr *openapi.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if reqErr.Operation != "submitContact" {
		t.Fatalf("unexpected operation %q", reqErr.Operation)
	}
	if _, ok := reqErr.Payload()["/siteVisit"]; !ok {
		t.Fatalf("expected issue at /siteVisit, got %+v", reqErr.Issues)
	}
}

func TestValidateRequestUnknownRoute(t *testing.T) {
	contract := loadContract(t)
	req := jsonRequest(http.MethodDelete, "/api/contact", `{}`)
	if err := contract.ValidateRequest(req); !errors.Is(err, openapi.ErrUnknownRoute) {
		t.Fatalf("expected ErrUnknownRoute, got %v", err)
	}
}

func TestLoaderSources(t *testing.T) {
	files := fstest.MapFS{"api/contract.yaml": {Data: []byte("openapi: 3.0.3\n")}}
	loader := openapi.NewLoader(openapi.WithFileSystem(files))

	doc, err := loader.Load(context.Background(), openapi.SourceFromFS("api/contract.yaml"))
	if err != nil {
		t.Fatalf("load fs: %v", err)
	}
	if doc.Location() != "api/contract.yaml" || doc.Source().Kind() != openapi.SourceKindFS {
		t.Fatalf("unexpected document origin %q", doc.Location())
	}

	if _, err := openapi.NewLoader().Load(context.Background(), openapi.SourceFromFS("x.yaml")); err == nil {
		t.Fatalf("expected error without filesystem")
	}
	if _, err := loader.Load(context.Background(), openapi.SourceFromFile("/does/not/exist.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestNewContractRejectsEmptyPaths(t *testing.T) {
	doc, err := openapi.NewDocument(openapi.SourceFromFS("empty.yaml"), []byte("openapi: 3.0.3\ninfo:\n  title: x\n  version: '1'\npaths: {}\n"))
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if _, err := openapi.NewContract(context.Background(), doc); err == nil {
		t.Fatalf("expected error for document without paths")
	}
}
