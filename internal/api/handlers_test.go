package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"example.com/sleeveselector/internal/domain"
	"example.com/sleeveselector/internal/reference"
	"example.com/sleeveselector/internal/sizing"
	"example.com/sleeveselector/internal/sleeve"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	tables, err := reference.LoadDefault()
	require.NoError(t, err)
	catalog, err := sleeve.LoadCatalog(context.Background(), sleeve.EmbeddedSource{})
	require.NoError(t, err)
	selector, err := sleeve.NewSelector(catalog, tables)
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewHandler(domain.NewService(tables, selector, nil, zerolog.Nop())).RegisterRoutes(mux)
	return mux
}

func serve(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestResolveExactMatch(t *testing.T) {
	mux := newTestMux(t)

	rr := serve(mux, http.MethodPost, "/v1/sizes/arm-sleeve/resolve", `{"measurements":{"bicep":26,"wrist":16}}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res sizing.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, "arm-sleeve", res.Table)
	require.Equal(t, "M", res.Label)
	require.Equal(t, sizing.FitExact, res.Fit)
}

func TestResolveConvertsUnits(t *testing.T) {
	mux := newTestMux(t)

	rr := serve(mux, http.MethodPost, "/v1/sizes/arm-sleeve/resolve", `{"unit":"in","measurements":{"bicep":9,"wrist":6}}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res sizing.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, "S", res.Label)
}

func TestResolveErrors(t *testing.T) {
	mux := newTestMux(t)

	cases := []struct {
		name      string
		target    string
		body      string
		status    int
		errType   string
		dimension string
	}{
		{"missing dimension", "/v1/sizes/arm-sleeve/resolve", `{"measurements":{"bicep":22}}`, http.StatusUnprocessableEntity, "missing_measurement", "wrist"},
		{"negative value", "/v1/sizes/arm-sleeve/resolve", `{"measurements":{"bicep":-3,"wrist":15}}`, http.StatusUnprocessableEntity, "invalid_measurement", "bicep"},
		{"unknown dimension", "/v1/sizes/arm-sleeve/resolve", `{"measurements":{"bicep":22,"wrist":15,"neck":40}}`, http.StatusUnprocessableEntity, "invalid_measurement", "neck"},
		{"far outside", "/v1/sizes/arm-sleeve/resolve", `{"measurements":{"bicep":50,"wrist":25}}`, http.StatusUnprocessableEntity, "out_of_range", ""},
		{"unknown table", "/v1/sizes/hats/resolve", `{"measurements":{"head":50}}`, http.StatusNotFound, "not_found", ""},
		{"bad unit", "/v1/sizes/arm-sleeve/resolve", `{"unit":"furlong","measurements":{"bicep":22}}`, http.StatusBadRequest, "validation_failed", ""},
		{"empty measurements", "/v1/sizes/arm-sleeve/resolve", `{"measurements":{}}`, http.StatusBadRequest, "validation_failed", ""},
		{"malformed body", "/v1/sizes/arm-sleeve/resolve", `{"measurements":`, http.StatusBadRequest, "invalid_request", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(mux, http.MethodPost, tc.target, tc.body)
			require.Equal(t, tc.status, rr.Code, rr.Body.String())
			resp := decodeError(t, rr)
			require.Equal(t, tc.errType, resp.Type)
			require.Equal(t, tc.dimension, resp.Dimension)
		})
	}
}

func TestResolveRejectsWrongMethod(t *testing.T) {
	mux := newTestMux(t)

	rr := serve(mux, http.MethodGet, "/v1/sizes/arm-sleeve/resolve", "")
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestListAndGetTables(t *testing.T) {
	mux := newTestMux(t)

	rr := serve(mux, http.MethodGet, "/v1/sizes", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Items []TableSummary `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Items, 3)
	require.Equal(t, "arm-sleeve", list.Items[0].Name)
	require.Equal(t, []string{"S", "M", "L", "XL", "XXL"}, list.Items[0].Labels)

	rr = serve(mux, http.MethodGet, "/v1/sizes/arm-sleeve", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var table sizing.Table
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &table))
	require.Len(t, table.Entries, 5)
	require.Equal(t, sizing.Range{Min: 20, Max: 24}, table.Entries[0].Ranges["bicep"])

	rr = serve(mux, http.MethodGet, "/v1/sizes/hats", "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(mux, http.MethodGet, "/v1/sizes/arm-sleeve/other", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCompatibleSleeves(t *testing.T) {
	mux := newTestMux(t)

	rr := serve(mux, http.MethodGet, "/v1/sleeves/compatible?diameter=1.5&length=6", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp CompatibleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, 5, resp.Count)
	require.Empty(t, resp.Message)
	require.Equal(t, "Ridge", resp.Items[0].Model)
	require.Equal(t, "6 x 1.125", resp.Items[0].RecommendedInternalDimensions)
	require.Nil(t, resp.Items[0].Diameter)
	require.Nil(t, resp.Items[0].MaxInternalLength)
}

func TestCompatibleSleevesDetailed(t *testing.T) {
	mux := newTestMux(t)

	rr := serve(mux, http.MethodGet, "/v1/sleeves/compatible?diameter=1.5&length=6&detailed=true", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp CompatibleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Items[0].Diameter)
	require.Equal(t, 2.149, *resp.Items[0].Diameter)
	require.Equal(t, 6.5, *resp.Items[0].MaxInternalLength)
}

func TestCompatibleSleevesEmptyResult(t *testing.T) {
	mux := newTestMux(t)

	rr := serve(mux, http.MethodGet, "/v1/sleeves/compatible?diameter=1.5&length=6&max_girth=5.6", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp CompatibleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Zero(t, resp.Count)
	require.Empty(t, resp.Items)
	require.Equal(t, "No compatible sleeves with the selected filters.", resp.Message)
}

func TestCompatibleSleevesValidation(t *testing.T) {
	mux := newTestMux(t)

	for _, target := range []string{
		"/v1/sleeves/compatible?length=6",
		"/v1/sleeves/compatible?diameter=abc&length=6",
		"/v1/sleeves/compatible?diameter=1.5&length=6&min_girth=x",
		"/v1/sleeves/compatible?diameter=1.5&length=6&detailed=maybe",
		"/v1/sleeves/compatible?diameter=1.5&length=6&min_girth=9&max_girth=6",
	} {
		rr := serve(mux, http.MethodGet, target, "")
		require.Equal(t, http.StatusBadRequest, rr.Code, target)
		require.Equal(t, "validation_failed", decodeError(t, rr).Type, target)
	}
}

func TestSleeveOptions(t *testing.T) {
	mux := newTestMux(t)

	rr := serve(mux, http.MethodGet, "/v1/sleeves/options", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var opts sleeve.Options
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &opts))
	require.Len(t, opts.Diameters, 17)
	require.Len(t, opts.Lengths, 25)
}

func TestHealthz(t *testing.T) {
	mux := newTestMux(t)

	rr := serve(mux, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}
