// Package payload provides the outbound request/response value types
// the engine's output feeds into, plus the builder that turns an
// extracted field mapping into a concrete request. These are plain
// value types; no I/O happens here.
package payload

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/artpar/fieldmap/pkg/ordered"
)

// Request is an outbound HTTP request (value type).
type Request struct {
	Method  string
	BaseURL string
	Path    string
	Query   string
	Headers map[string]string
	Body    []byte
	TraceID string
}

// URL assembles the full request URL.
func (r Request) URL() string {
	u := strings.TrimSuffix(r.BaseURL, "/") + r.Path
	if r.Query != "" {
		u += "?" + r.Query
	}
	return u
}

// Response is the upstream's answer (value type).
type Response struct {
	Status  int
	Headers map[string]string
	Body    []byte

	// Data holds the decoded body when the response was JSON.
	Data any

	LatencyMs int64
}

// Endpoint binds a container to an upstream operation.
type Endpoint struct {
	Name      string
	Container string
	Method    string
	Path      string
	Headers   map[string]string

	// BaseURL overrides the transport's default upstream for this
	// endpoint. Empty means use the default.
	BaseURL string

	// Into names a container whose data is replaced with the decoded
	// response, making it readable by later extractions.
	Into string
}

// BuildRequest turns an extracted field mapping into a request for the
// endpoint. GET-like methods carry the fields as a query string, other
// methods as a JSON body; both keep the mapping's declaration order.
func BuildRequest(ep Endpoint, fields *ordered.Map) (Request, error) {
	req := Request{
		Method:  strings.ToUpper(ep.Method),
		BaseURL: ep.BaseURL,
		Path:    ep.Path,
		Headers: make(map[string]string, len(ep.Headers)+1),
	}
	if req.Method == "" {
		req.Method = "GET"
	}
	for k, v := range ep.Headers {
		req.Headers[k] = v
	}

	switch req.Method {
	case "GET", "HEAD", "DELETE":
		q, err := encodeQuery(fields)
		if err != nil {
			return Request{}, fmt.Errorf("endpoint %s: %w", ep.Name, err)
		}
		req.Query = q
	default:
		body, err := json.Marshal(fields)
		if err != nil {
			return Request{}, fmt.Errorf("endpoint %s: marshal body: %w", ep.Name, err)
		}
		req.Body = body
		req.Headers["Content-Type"] = "application/json"
	}
	return req, nil
}

// encodeQuery renders the mapping as application/x-www-form-urlencoded
// pairs in insertion order. net/url.Values would sort the keys, so the
// pairs are appended by hand. Slice values repeat the key; structured
// values are JSON-encoded.
func encodeQuery(fields *ordered.Map) (string, error) {
	if fields == nil || fields.Len() == 0 {
		return "", nil
	}
	var b strings.Builder
	var err error
	fields.Iterate(func(key string, value any) bool {
		if list, ok := value.([]any); ok {
			for _, item := range list {
				err = appendPair(&b, key, item)
				if err != nil {
					return false
				}
			}
			return true
		}
		err = appendPair(&b, key, value)
		return err == nil
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func appendPair(b *strings.Builder, key string, value any) error {
	s, err := queryValue(value)
	if err != nil {
		return fmt.Errorf("query field %q: %w", key, err)
	}
	if b.Len() > 0 {
		b.WriteByte('&')
	}
	b.WriteString(url.QueryEscape(key))
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(s))
	return nil
}

func queryValue(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		return fmt.Sprintf("%v", t), nil
	case float64, float32, int, int64:
		return fmt.Sprintf("%v", t), nil
	default:
		enc, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(enc), nil
	}
}
