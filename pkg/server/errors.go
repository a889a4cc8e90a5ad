package server

import (
	"errors"
	"net/http"

	"github.com/scrubbed/scrubbed/pkg/metrics"
)

var errNotJSON = errors.New("request must be in JSON format")

type kind int

const (
	kindBadRequest kind = iota
	kindMalformedPayload
	kindForwardFailure
)

func (k kind) String() string {
	switch k {
	case kindBadRequest:
		return "BadRequest"
	case kindMalformedPayload:
		return "MalformedPayload"
	default:
		return "ForwardFailure"
	}
}

// relayError tags the failure of one relay stage with the kind that picks the response.
type relayError struct {
	kind kind
	err  error
}

func (e *relayError) Error() string { return e.err.Error() }

func (e *relayError) Unwrap() error { return e.err }

func (e *relayError) status() int {
	if e.kind == kindBadRequest {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (e *relayError) outcome() string {
	switch e.kind {
	case kindBadRequest:
		return metrics.OutcomeBadRequest
	case kindMalformedPayload:
		return metrics.OutcomeMalformedPayload
	default:
		return metrics.OutcomeForwardFailure
	}
}
