package domain

import "errors"

var (
	// ErrTransportFailure covers connection errors, timeouts and non-2xx responses.
	ErrTransportFailure = errors.New("transport failure")
	// ErrMalformedResponse means a response body was undecodable or missing required fields.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrEmptyRouteSet means the planner returned zero candidate routes.
	ErrEmptyRouteSet = errors.New("empty route set")
	// ErrPreconditionViolation means an adjustment was requested before any route exists.
	ErrPreconditionViolation = errors.New("precondition violation: no current route")
	// ErrRequestInFlight rejects a trigger while another request is outstanding.
	ErrRequestInFlight = errors.New("request already in flight")
	// ErrStaleResponse means a response arrived after the session was torn down.
	ErrStaleResponse = errors.New("stale response discarded")
	// ErrInvalidGeometry means a coordinate list is too short or holds a non-finite value.
	ErrInvalidGeometry = errors.New("invalid geometry")
)

// ErrorCode maps an error to its stable snake_case code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrPreconditionViolation):
		return "precondition_violation"
	case errors.Is(err, ErrRequestInFlight):
		return "request_in_flight"
	case errors.Is(err, ErrStaleResponse):
		return "stale_response"
	case errors.Is(err, ErrEmptyRouteSet):
		return "empty_route_set"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrTransportFailure):
		return "transport_failure"
	default:
		return "internal_error"
	}
}
