package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/detourmap/internal/core/domain"
	"github.com/samirrijal/detourmap/internal/pkg/geospatial"
)

// buildSchema creates the read-only GraphQL schema over the session and the map surface.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"lon": &graphql.Field{Type: graphql.Float},
			"lat": &graphql.Field{Type: graphql.Float},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Route",
		Fields: graphql.Fields{
			"coordinates":   &graphql.Field{Type: graphql.NewList(coordinateType)},
			"polyline":      &graphql.Field{Type: graphql.String},
			"length_meters": &graphql.Field{Type: graphql.Float},
		},
	})

	obstructionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Obstruction",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"collided": &graphql.Field{Type: graphql.Boolean},
			"reason":   &graphql.Field{Type: graphql.String},
		},
	})

	layerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Layer",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"kind":        &graphql.Field{Type: graphql.String},
			"color":       &graphql.Field{Type: graphql.String},
			"weight":      &graphql.Field{Type: graphql.Int},
			"fillOpacity": &graphql.Field{Type: graphql.Float},
			"popup":       &graphql.Field{Type: graphql.String},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"state":               &graphql.Field{Type: graphql.String},
			"busy":                &graphql.Field{Type: graphql.Boolean},
			"collision_signature": &graphql.Field{Type: graphql.String},
			"start":               &graphql.Field{Type: coordinateType},
			"end":                 &graphql.Field{Type: coordinateType},
			"route":               &graphql.Field{Type: routeType},
			"obstructions":        &graphql.Field{Type: graphql.NewList(obstructionType)},
		},
	})

	mapType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Map",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.String},
			"center": &graphql.Field{Type: coordinateType},
			"zoom":   &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Current route session",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return sessionObject(deps), nil
				},
			},
			"layers": &graphql.Field{
				Type:        graphql.NewList(layerType),
				Description: "Layers currently drawn on the map, optionally filtered by kind",
				Args: graphql.FieldConfigArgument{
					"kind": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					kind, _ := p.Args["kind"].(string)
					var result []map[string]interface{}
					for _, l := range deps.Surface.Layers() {
						if kind != "" && string(l.Handle.Kind) != kind {
							continue
						}
						result = append(result, map[string]interface{}{
							"id":          l.Handle.ID,
							"kind":        string(l.Handle.Kind),
							"color":       l.Spec.Style.Color,
							"weight":      l.Spec.Style.Weight,
							"fillOpacity": l.Spec.Style.FillOpacity,
							"popup":       l.Spec.Popup,
						})
					}
					return result, nil
				},
			},
			"map": &graphql.Field{
				Type:        mapType,
				Description: "Map view, null before the map is created",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					h, ok := deps.Surface.MapHandle()
					if !ok {
						return nil, nil
					}
					return map[string]interface{}{
						"id":     h.ID,
						"center": coordinateObject(h.Center),
						"zoom":   h.Zoom,
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func coordinateObject(c domain.Coordinate) map[string]interface{} {
	return map[string]interface{}{"lon": c.Lon, "lat": c.Lat}
}

func sessionObject(deps *Dependencies) map[string]interface{} {
	sess := deps.Session.Session()
	start, end := deps.Session.Endpoints()

	obstructions := make([]map[string]interface{}, 0, len(sess.Obstructions))
	for _, o := range sess.Obstructions {
		obstructions = append(obstructions, map[string]interface{}{
			"id":       o.ID,
			"collided": o.Collided,
			"reason":   o.Reason,
		})
	}

	m := map[string]interface{}{
		"state":               string(sess.State),
		"busy":                sess.Busy,
		"collision_signature": sess.CollisionSignature,
		"start":               coordinateObject(start),
		"end":                 coordinateObject(end),
		"obstructions":        obstructions,
	}
	if sess.Route != nil {
		coords := make([]map[string]interface{}, 0, len(sess.Route.Coordinates))
		for _, c := range sess.Route.Coordinates {
			coords = append(coords, coordinateObject(c))
		}
		m["route"] = map[string]interface{}{
			"coordinates":   coords,
			"polyline":      geospatial.EncodePolyline(*sess.Route),
			"length_meters": geospatial.RouteLength(*sess.Route),
		}
	}
	return m
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
