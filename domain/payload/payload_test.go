package payload

import (
	"strings"
	"testing"

	"github.com/artpar/fieldmap/pkg/ordered"
)

func TestBuildRequestGET(t *testing.T) {
	fields := ordered.NewMap()
	fields.Set("q", "golang tips")
	fields.Set("page", float64(2))
	fields.Set("active", true)

	req, err := BuildRequest(Endpoint{Name: "search", Method: "get", Path: "/search"}, fields)
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if req.Method != "GET" {
		t.Errorf("Method = %q, want GET", req.Method)
	}
	want := "q=golang+tips&page=2&active=true"
	if req.Query != want {
		t.Errorf("Query = %q, want %q", req.Query, want)
	}
	if len(req.Body) != 0 {
		t.Errorf("Body = %q, want empty", req.Body)
	}
}

func TestBuildRequestQueryOrder(t *testing.T) {
	fields := ordered.NewMap()
	fields.Set("z", "1")
	fields.Set("a", "2")
	fields.Set("m", "3")

	req, err := BuildRequest(Endpoint{Method: "GET"}, fields)
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if want := "z=1&a=2&m=3"; req.Query != want {
		t.Errorf("Query = %q, want %q (insertion order)", req.Query, want)
	}
}

func TestBuildRequestSliceRepeatsKey(t *testing.T) {
	fields := ordered.NewMap()
	fields.Set("tag", []any{"go", "http"})

	req, err := BuildRequest(Endpoint{Method: "GET"}, fields)
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if want := "tag=go&tag=http"; req.Query != want {
		t.Errorf("Query = %q, want %q", req.Query, want)
	}
}

func TestBuildRequestPOST(t *testing.T) {
	fields := ordered.NewMap()
	fields.Set("name", "Ada")
	fields.Set("age", float64(36))

	req, err := BuildRequest(Endpoint{Method: "POST", Path: "/users"}, fields)
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if want := `{"name":"Ada","age":36}`; string(req.Body) != want {
		t.Errorf("Body = %s, want %s", req.Body, want)
	}
	if ct := req.Headers["Content-Type"]; ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if req.Query != "" {
		t.Errorf("Query = %q, want empty", req.Query)
	}
}

func TestBuildRequestDefaultsToGET(t *testing.T) {
	req, err := BuildRequest(Endpoint{}, ordered.NewMap())
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if req.Method != "GET" {
		t.Errorf("Method = %q, want GET", req.Method)
	}
}

func TestBuildRequestEndpointHeaders(t *testing.T) {
	ep := Endpoint{Method: "POST", Headers: map[string]string{"X-Api": "v2"}}
	req, err := BuildRequest(ep, ordered.NewMap())
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if req.Headers["X-Api"] != "v2" {
		t.Errorf("Headers[X-Api] = %q, want v2", req.Headers["X-Api"])
	}
}

func TestBuildRequestEndpointBaseURL(t *testing.T) {
	ep := Endpoint{Method: "GET", BaseURL: "http://backup.localhost:3000"}
	req, err := BuildRequest(ep, ordered.NewMap())
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if req.BaseURL != ep.BaseURL {
		t.Errorf("BaseURL = %q, want %q", req.BaseURL, ep.BaseURL)
	}
}

func TestBuildRequestNilValue(t *testing.T) {
	fields := ordered.NewMap()
	fields.Set("empty", nil)
	req, err := BuildRequest(Endpoint{Method: "GET"}, fields)
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if want := "empty="; req.Query != want {
		t.Errorf("Query = %q, want %q", req.Query, want)
	}
}

func TestBuildRequestStructuredQueryValue(t *testing.T) {
	fields := ordered.NewMap()
	fields.Set("filter", map[string]any{"lang": "go"})
	req, err := BuildRequest(Endpoint{Method: "GET"}, fields)
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if !strings.HasPrefix(req.Query, "filter=") {
		t.Fatalf("Query = %q, want filter= prefix", req.Query)
	}
	if !strings.Contains(req.Query, "%22lang%22") {
		t.Errorf("Query = %q, want JSON-encoded value", req.Query)
	}
}

func TestRequestURL(t *testing.T) {
	r := Request{BaseURL: "https://api.example.com/", Path: "/v1/x", Query: "a=1"}
	if want := "https://api.example.com/v1/x?a=1"; r.URL() != want {
		t.Errorf("URL() = %q, want %q", r.URL(), want)
	}
	r = Request{BaseURL: "https://api.example.com", Path: "/v1/x"}
	if want := "https://api.example.com/v1/x"; r.URL() != want {
		t.Errorf("URL() = %q, want %q", r.URL(), want)
	}
}
