package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/detourmap/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, precondition_violation, transport_failure, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errFromDomain maps a session error to its status and code.
// State conflicts are 409, planner failures are 502.
func errFromDomain(c *fiber.Ctx, err error) error {
	code := domain.ErrorCode(err)
	switch code {
	case "precondition_violation", "request_in_flight", "stale_response":
		return newError(c, 409, code, err.Error())
	case "empty_route_set", "malformed_response", "transport_failure":
		return newError(c, 502, code, err.Error())
	default:
		return errInternal(c, err.Error())
	}
}
