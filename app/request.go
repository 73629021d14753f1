package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/fieldmap/domain/payload"
	"github.com/artpar/fieldmap/ports"
)

// RequestService turns extractions into upstream calls: extract the
// endpoint's container, build the request, send it, and optionally
// feed the decoded response back into another container.
type RequestService struct {
	model     *Model
	transport ports.Transport
	observer  ports.Observer
	logger    zerolog.Logger
}

// RequestDeps contains dependencies for RequestService.
type RequestDeps struct {
	Model     *Model
	Transport ports.Transport

	// Observer is optional; nil disables observation.
	Observer ports.Observer

	Logger zerolog.Logger
}

// NewRequestService creates a request service.
func NewRequestService(deps RequestDeps) *RequestService {
	return &RequestService{
		model:     deps.Model,
		transport: deps.Transport,
		observer:  deps.Observer,
		logger:    deps.Logger,
	}
}

// Call runs the full flow for one endpoint. The extraction result is
// returned alongside the response so callers can inspect diagnostics.
// When the endpoint names an Into container, that container's data is
// replaced with the decoded response body before Call returns.
func (s *RequestService) Call(ctx context.Context, ep payload.Endpoint) (payload.Response, *Result, error) {
	res, err := s.model.Extract(ep.Container)
	if err != nil {
		return payload.Response{}, nil, fmt.Errorf("extract %s: %w", ep.Container, err)
	}
	if s.observer != nil {
		s.observer.ObserveExtraction(res.Container, res.Fields.Len(), res.Diags)
	}

	req, err := payload.BuildRequest(ep, res.Fields)
	if err != nil {
		return payload.Response{}, res, err
	}

	start := time.Now()
	resp, err := s.transport.Do(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Error().Err(err).
			Str("endpoint", ep.Name).
			Str("method", req.Method).
			Str("url", req.URL()).
			Msg("upstream call failed")
		return payload.Response{}, res, fmt.Errorf("call %s: %w", ep.Name, err)
	}
	if s.observer != nil {
		s.observer.ObserveRequest(req.Method, resp.Status, elapsed.Seconds())
	}

	s.logger.Debug().
		Str("endpoint", ep.Name).
		Str("method", req.Method).
		Str("url", req.URL()).
		Int("status", resp.Status).
		Int64("latency_ms", resp.LatencyMs).
		Msg("upstream call")

	if ep.Into != "" && resp.Data != nil {
		if target, ok := s.model.Container(ep.Into); ok {
			target.ReplaceData(resp.Data)
		} else {
			s.logger.Warn().
				Str("endpoint", ep.Name).
				Str("into", ep.Into).
				Msg("into container not declared, response dropped")
		}
	}

	return resp, res, nil
}
