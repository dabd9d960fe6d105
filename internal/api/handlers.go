// Package api exposes HTTP handlers for the sleeve selector.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"example.com/sleeveselector/internal/domain"
	"example.com/sleeveselector/internal/reference"
	"example.com/sleeveselector/internal/sizing"
	"example.com/sleeveselector/internal/sleeve"
	httptransport "example.com/sleeveselector/internal/transport/http"
)

const maxBodyBytes = 64 << 10

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/sizes", h.sizes)
	mux.HandleFunc("/v1/sizes/", h.sizeTable)
	mux.HandleFunc("/v1/sleeves/options", h.sleeveOptions)
	mux.HandleFunc("/v1/sleeves/compatible", h.compatibleSleeves)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) sizes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	tables := h.service.Tables()
	items := make([]TableSummary, 0, len(tables))
	for _, table := range tables {
		items = append(items, toTableSummary(table))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// sizeTable serves /v1/sizes/{table} and /v1/sizes/{table}/resolve.
func (h *Handler) sizeTable(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sizes/"), "/")
	name, action, _ := strings.Cut(rest, "/")
	if name == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing table name")
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		h.getTable(w, name)
	case "resolve":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		h.resolve(w, r, name)
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
	}
}

func (h *Handler) getTable(w http.ResponseWriter, name string) {
	table, err := h.service.Table(name)
	if err != nil {
		if errors.Is(err, reference.ErrTableNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "reference table not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, table string) {
	var req ResolveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	unit, err := req.Validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	result, err := h.service.ResolveSize(r.Context(), domain.ResolveInput{
		Table:        table,
		Unit:         unit,
		Measurements: req.Measurements,
		RequestID:    httptransport.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		writeResolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeResolveError(w http.ResponseWriter, err error) {
	var (
		missing *sizing.MissingMeasurementError
		invalid *sizing.InvalidMeasurementError
		outside *sizing.OutOfRangeError
	)
	switch {
	case errors.Is(err, reference.ErrTableNotFound):
		writeError(w, http.StatusNotFound, "not_found", "reference table not found")
	case errors.As(err, &missing):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Type:      "missing_measurement",
			Detail:    err.Error(),
			Dimension: missing.Dimension,
		})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Type:      "invalid_measurement",
			Detail:    err.Error(),
			Dimension: invalid.Dimension,
		})
	case errors.As(err, &outside):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Type:   "out_of_range",
			Detail: "no matching size; check the measurements or try another size chart",
		})
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func (h *Handler) sleeveOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	writeJSON(w, http.StatusOK, h.service.SleeveOptions())
}

func (h *Handler) compatibleSleeves(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	query, detailed, err := parseCompatibleQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	matches, err := h.service.CompatibleSleeves(r.Context(), query)
	if err != nil {
		if errors.Is(err, sleeve.ErrInvalidQuery) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	resp := CompatibleResponse{
		Count: len(matches),
		Items: make([]SleeveView, 0, len(matches)),
	}
	for _, m := range matches {
		resp.Items = append(resp.Items, toSleeveView(m, detailed))
	}
	if len(matches) == 0 {
		resp.Message = "No compatible sleeves with the selected filters."
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseCompatibleQuery(r *http.Request) (sleeve.Query, bool, error) {
	values := r.URL.Query()
	var q sleeve.Query

	diameter, err := requiredFloat(values.Get("diameter"), "diameter")
	if err != nil {
		return q, false, err
	}
	length, err := requiredFloat(values.Get("length"), "length")
	if err != nil {
		return q, false, err
	}
	q.Diameter, q.Length = diameter, length

	for key, dst := range map[string]**float64{
		"min_girth":  &q.MinGirth,
		"max_girth":  &q.MaxGirth,
		"min_length": &q.MinLength,
		"max_length": &q.MaxLength,
	} {
		raw := values.Get(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, false, fmt.Errorf("%s must be a number", key)
		}
		*dst = &v
	}

	detailed := false
	if raw := values.Get("detailed"); raw != "" {
		detailed, err = strconv.ParseBool(raw)
		if err != nil {
			return q, false, errors.New("detailed must be a boolean")
		}
	}
	return q, detailed, nil
}

func requiredFloat(raw, name string) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("missing %s parameter", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive number", name)
	}
	return v, nil
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorResponse{Type: code, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
