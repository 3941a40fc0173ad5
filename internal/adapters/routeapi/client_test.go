package routeapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/detourmap/internal/core/domain"
)

// MockHTTPDoer is a mock implementation of HTTPDoer
type MockHTTPDoer struct {
	mock.Mock
}

func (m *MockHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}

func createMockResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

// requestBody returns a fresh reader so matchers can run more than once.
func requestBody(req *http.Request) io.Reader {
	body, err := req.GetBody()
	if err != nil {
		return strings.NewReader("")
	}
	return body
}

var (
	start = domain.Coordinate{Lon: 67.131119, Lat: 24.921264}
	end   = domain.Coordinate{Lon: 67.0629, Lat: 24.8413}
)

const initialFixture = `{"routes":[{"geometry":{"type":"LineString","coordinates":[[67.131119,24.921264],[67.10,24.88],[67.0629,24.8413]]}},
{"geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]}}]}`

const adjustFixture = `{
  "route": {"type":"LineString","coordinates":[[67.131119,24.921264],[67.12,24.90],[67.08,24.86],[67.0629,24.8413]]},
  "blockades": [
    {"type":"Feature","id":"flood-1","properties":{"collided":true,"reason":"Flood"},
     "geometry":{"type":"Polygon","coordinates":[[[67.11,24.89],[67.12,24.89],[67.12,24.90],[67.11,24.89]]]}},
    {"type":"Feature","id":7,"properties":{"collided":false},
     "geometry":{"type":"Polygon","coordinates":[[[67.0,24.8],[67.01,24.8],[67.01,24.81],[67.0,24.8]]]}}
  ],
  "collisionSignature": "blk-center"
}`

func TestFetchInitialRoute_Success(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		if req.Method != http.MethodPost || req.URL.String() != "http://planner:8000/route" {
			return false
		}
		if req.Header.Get("Content-Type") != "application/json" {
			return false
		}
		var body initialRequest
		if err := json.NewDecoder(requestBody(req)).Decode(&body); err != nil {
			return false
		}
		return body.Start == [2]float64{67.131119, 24.921264} && body.End == [2]float64{67.0629, 24.8413}
	})).Return(createMockResponse(200, initialFixture), nil)

	client := NewClientWithHTTPDoer("http://planner:8000/", mockHTTP)
	route, err := client.FetchInitialRoute(context.Background(), start, end)

	require.NoError(t, err)
	require.Len(t, route.Coordinates, 3, "only routes[0] should be consumed")
	assert.Equal(t, domain.Coordinate{Lon: 67.10, Lat: 24.88}, route.Coordinates[1])
	mockHTTP.AssertExpectations(t)
}

func TestFetchInitialRoute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		doErr   error
		wantErr error
	}{
		{"empty routes", 200, `{"routes": []}`, nil, domain.ErrEmptyRouteSet},
		{"routes missing", 200, `{"code":"Ok"}`, nil, domain.ErrMalformedResponse},
		{"geometry missing", 200, `{"routes":[{}]}`, nil, domain.ErrMalformedResponse},
		{"not a line string", 200, `{"routes":[{"geometry":{"type":"Point","coordinates":[1,2]}}]}`, nil, domain.ErrMalformedResponse},
		{"single point line", 200, `{"routes":[{"geometry":{"type":"LineString","coordinates":[[1,2]]}}]}`, nil, domain.ErrMalformedResponse},
		{"unknown geometry type", 200, `{"routes":[{"geometry":{"type":"Circle","coordinates":[1,2]}}]}`, nil, domain.ErrMalformedResponse},
		{"not json", 200, `<html>`, nil, domain.ErrMalformedResponse},
		{"server error", 500, `upstream OSRM down`, nil, domain.ErrTransportFailure},
		{"not found", 404, `{}`, nil, domain.ErrTransportFailure},
		{"connection refused", 0, "", errors.New("dial tcp: connection refused"), domain.ErrTransportFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockHTTP := &MockHTTPDoer{}
			if tt.doErr != nil {
				mockHTTP.On("Do", mock.Anything).Return(nil, tt.doErr)
			} else {
				mockHTTP.On("Do", mock.Anything).Return(createMockResponse(tt.status, tt.body), nil)
			}

			client := NewClientWithHTTPDoer("http://planner:8000", mockHTTP)
			route, err := client.FetchInitialRoute(context.Background(), start, end)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, route.Coordinates)
			mockHTTP.AssertNumberOfCalls(t, "Do", 1)
		})
	}
}

func TestFetchAdjustment_Success(t *testing.T) {
	current, err := domain.NewRouteGeometry(orb.LineString{{67.131119, 24.921264}, {67.0629, 24.8413}})
	require.NoError(t, err)

	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		var body struct {
			Route struct {
				Type        string       `json:"type"`
				Coordinates [][2]float64 `json:"coordinates"`
			} `json:"route"`
			Description *string `json:"description"`
		}
		if err := json.NewDecoder(requestBody(req)).Decode(&body); err != nil {
			return false
		}
		return req.URL.Path == "/adjust" &&
			body.Route.Type == "LineString" &&
			len(body.Route.Coordinates) == 2 &&
			body.Description != nil && *body.Description == "Flood on Elm St"
	})).Return(createMockResponse(200, adjustFixture), nil)

	client := NewClientWithHTTPDoer("http://planner:8000", mockHTTP)
	adj, err := client.FetchAdjustment(context.Background(), current, "Flood on Elm St")

	require.NoError(t, err)
	require.NotNil(t, adj)
	assert.Len(t, adj.Route.Coordinates, 4)
	require.Len(t, adj.Blockades, 2)
	assert.Equal(t, "flood-1", adj.Blockades[0].ID)
	assert.True(t, adj.Blockades[0].Collided)
	assert.Equal(t, "Flood", adj.Blockades[0].Reason)
	assert.Equal(t, "7", adj.Blockades[1].ID, "numeric ids are rendered as strings")
	assert.False(t, adj.Blockades[1].Collided)
	assert.Empty(t, adj.Blockades[1].Reason)
	assert.Len(t, adj.Blockades[0].Geometry.Rings[0], 4)
	assert.Equal(t, "blk-center", adj.CollisionSignature)
	mockHTTP.AssertExpectations(t)
}

func TestFetchAdjustment_EmptyDescriptionPassedThrough(t *testing.T) {
	current, _ := domain.NewRouteGeometry(orb.LineString{{1, 1}, {2, 2}})

	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		raw, _ := io.ReadAll(requestBody(req))
		return strings.Contains(string(raw), `"description":""`)
	})).Return(createMockResponse(200, `{"route":{"type":"LineString","coordinates":[[1,1],[2,2]]},"blockades":[]}`), nil)

	client := NewClientWithHTTPDoer("http://planner:8000", mockHTTP)
	adj, err := client.FetchAdjustment(context.Background(), current, "")

	require.NoError(t, err)
	assert.Empty(t, adj.Blockades)
	assert.Empty(t, adj.CollisionSignature)
	mockHTTP.AssertExpectations(t)
}

func TestFetchAdjustment_Malformed(t *testing.T) {
	const okRoute = `{"type":"LineString","coordinates":[[1,1],[2,2]]}`
	const okPoly = `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`

	tests := []struct {
		name string
		body string
	}{
		{"route missing", `{"blockades":[]}`},
		{"blockades missing", `{"route":` + okRoute + `}`},
		{"blockades null", `{"route":` + okRoute + `,"blockades":null}`},
		{"blockade without id", `{"route":` + okRoute + `,"blockades":[{"properties":{"collided":true},"geometry":` + okPoly + `}]}`},
		{"blockade without collided", `{"route":` + okRoute + `,"blockades":[{"id":"a","properties":{"reason":"x"},"geometry":` + okPoly + `}]}`},
		{"blockade without properties", `{"route":` + okRoute + `,"blockades":[{"id":"a","geometry":` + okPoly + `}]}`},
		{"blockade line geometry", `{"route":` + okRoute + `,"blockades":[{"id":"a","properties":{"collided":false},"geometry":` + okRoute + `}]}`},
		{"blockade short ring", `{"route":` + okRoute + `,"blockades":[{"id":"a","properties":{"collided":false},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,1]]]}}]}`},
	}

	current, _ := domain.NewRouteGeometry(orb.LineString{{1, 1}, {2, 2}})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockHTTP := &MockHTTPDoer{}
			mockHTTP.On("Do", mock.Anything).Return(createMockResponse(200, tt.body), nil)

			client := NewClientWithHTTPDoer("http://planner:8000", mockHTTP)
			adj, err := client.FetchAdjustment(context.Background(), current, "x")

			assert.ErrorIs(t, err, domain.ErrMalformedResponse)
			assert.Nil(t, adj)
		})
	}
}

func TestFetchAdjustment_TransportFailure(t *testing.T) {
	current, _ := domain.NewRouteGeometry(orb.LineString{{1, 1}, {2, 2}})

	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.Anything).Return(createMockResponse(422, `{"detail":"bad route"}`), nil)

	client := NewClientWithHTTPDoer("http://planner:8000", mockHTTP)
	_, err := client.FetchAdjustment(context.Background(), current, "x")

	require.ErrorIs(t, err, domain.ErrTransportFailure)
	assert.Contains(t, err.Error(), "422")
	mockHTTP.AssertNumberOfCalls(t, "Do", 1)
}

func TestHealthCheck(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == http.MethodGet && req.URL.Path == "/health"
	})).Return(createMockResponse(200, `{"status":"ok"}`), nil).Once()
	mockHTTP.On("Do", mock.Anything).Return(createMockResponse(503, ``), nil).Once()

	client := NewClientWithHTTPDoer("http://planner:8000", mockHTTP)

	assert.NoError(t, client.HealthCheck(context.Background()))
	assert.ErrorIs(t, client.HealthCheck(context.Background()), domain.ErrTransportFailure)
}
