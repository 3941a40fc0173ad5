package http

import (
	"bytes"
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/detourmap/internal/core/domain"
	"github.com/samirrijal/detourmap/internal/pkg/geospatial"
	"github.com/samirrijal/detourmap/internal/pkg/metrics"
)

// SessionView is the session state as served to clients.
type SessionView struct {
	domain.Session
	Start        domain.Coordinate `json:"start"`
	End          domain.Coordinate `json:"end"`
	Polyline     string            `json:"polyline,omitempty"`
	LengthMeters float64           `json:"length_meters,omitempty"`
	Bounds       *domain.Bounds    `json:"bounds,omitempty"`
}

type adjustRequest struct {
	Description *string `json:"description"`
}

func (d *Dependencies) sessionView(sess domain.Session) SessionView {
	start, end := d.Session.Endpoints()
	v := SessionView{Session: sess, Start: start, End: end}
	if sess.Route != nil {
		b := geospatial.RouteBounds(*sess.Route)
		v.Polyline = geospatial.EncodePolyline(*sess.Route)
		v.LengthMeters = geospatial.RouteLength(*sess.Route)
		v.Bounds = &b
	}
	return v
}

// RequestRouteHandler fetches the initial route and redraws the route layer.
func RequestRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Session.RequestInitialRoute(c.UserContext())
		metrics.SyncActions.WithLabelValues("initial_route", domain.ErrorCode(err)).Inc()
		if err != nil {
			LoggerFromCtx(c.UserContext()).Warn("initial route failed", "error", err)
			return errFromDomain(c, err)
		}
		return c.JSON(deps.sessionView(sess))
	}
}

// AdjustRouteHandler sends a blockade description for the current route.
// The description may be empty or omitted.
func AdjustRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req adjustRequest
		if len(bytes.TrimSpace(c.Body())) > 0 {
			if err := json.Unmarshal(c.Body(), &req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		description := ""
		if req.Description != nil {
			description = *req.Description
		}

		sess, err := deps.Session.RequestAdjustment(c.UserContext(), description)
		metrics.SyncActions.WithLabelValues("adjustment", domain.ErrorCode(err)).Inc()
		if err != nil {
			LoggerFromCtx(c.UserContext()).Warn("adjustment failed", "error", err)
			return errFromDomain(c, err)
		}
		return c.JSON(deps.sessionView(sess))
	}
}

// GetSessionHandler returns the current session state.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.sessionView(deps.Session.Session()))
	}
}

// DeleteSessionHandler clears every drawn layer and discards outstanding responses.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deps.Session.Teardown()
		metrics.SyncActions.WithLabelValues("teardown", "ok").Inc()
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// MapGeoJSONHandler returns the drawn layers as a GeoJSON FeatureCollection.
func MapGeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := json.Marshal(deps.Surface.FeatureCollection())
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}

// MapKMLHandler returns the drawn layers as a KML document.
func MapKMLHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := deps.Surface.WriteKML(&buf, "detourmap"); err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/vnd.google-earth.kml+xml")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="detourmap.kml"`)
		return c.Send(buf.Bytes())
	}
}
