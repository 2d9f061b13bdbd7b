package in

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	activityin "activitylog/internal/modules/activity/port/in"
	trackerdto "activitylog/internal/modules/tracker/dto"
	trackerin "activitylog/internal/modules/tracker/port/in"
	apperrors "activitylog/internal/platform/errors"
	"activitylog/internal/platform/id"
)

const (
	dateParam       = "2006-01-02"
	maxRequestBytes = 1 << 16
)

type HTTPHandler struct {
	tracker    trackerin.Usecase
	activities activityin.Usecase
	ids        id.Generator
	logger     zerolog.Logger
}

func NewHTTPHandler(tracker trackerin.Usecase, activities activityin.Usecase, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{tracker: tracker, activities: activities, ids: id.RandomHex{}, logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

type totalsResponse struct {
	Date   string                   `json:"date,omitempty"`
	Totals []trackerdto.TotalOutput `json:"totals"`
}

type sessionsResponse struct {
	Sessions []trackerdto.SessionOutput `json:"sessions"`
}

type activitiesResponse struct {
	Activities []string `json:"activities"`
}

// Router exposes the tracker under /api. Writes are handed to the accounting
// sequence; reads go straight to storage.
func (h *HTTPHandler) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.logRequests)

	api.HandleFunc("/state", h.getState).Methods(http.MethodGet)
	api.HandleFunc("/today", h.getTotals).Methods(http.MethodGet)
	api.HandleFunc("/sessions", h.getSessions).Methods(http.MethodGet)
	api.HandleFunc("/activities", h.getActivities).Methods(http.MethodGet)

	api.HandleFunc("/start", h.postStart).Methods(http.MethodPost)
	api.HandleFunc("/switch", h.postSwitch).Methods(http.MethodPost)
	api.HandleFunc("/stop", h.postStop).Methods(http.MethodPost)
	api.HandleFunc("/tick", h.postTick).Methods(http.MethodPost)
	return r
}

func (h *HTTPHandler) getState(w http.ResponseWriter, r *http.Request) {
	st, err := h.tracker.Status(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// getTotals serves today's credited totals, or those of ?date=YYYY-MM-DD.
func (h *HTTPHandler) getTotals(w http.ResponseWriter, r *http.Request) {
	var (
		totals []trackerdto.TotalOutput
		day    string
		err    error
	)
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, perr := time.Parse(dateParam, raw)
		if perr != nil {
			h.writeError(w, r, fmt.Errorf("date %q: %w", raw, apperrors.ErrInvalidInput))
			return
		}
		day = raw
		totals, err = h.tracker.TotalsForDate(r.Context(), date)
	} else {
		totals, err = h.tracker.TodayTotals(r.Context())
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totalsResponse{Date: day, Totals: totals})
}

func (h *HTTPHandler) getSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, r, fmt.Errorf("limit %q: %w", raw, apperrors.ErrInvalidInput))
			return
		}
		limit = n
	}
	sessions, err := h.tracker.AllSessions(r.Context(), trackerdto.SessionsInput{Limit: limit})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionsResponse{Sessions: sessions})
}

func (h *HTTPHandler) getActivities(w http.ResponseWriter, r *http.Request) {
	names, err := h.activities.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activitiesResponse{Activities: names})
}

func (h *HTTPHandler) postStart(w http.ResponseWriter, r *http.Request) {
	h.handleStart(w, r, h.tracker.Start)
}

func (h *HTTPHandler) postSwitch(w http.ResponseWriter, r *http.Request) {
	h.handleStart(w, r, h.tracker.Switch)
}

func (h *HTTPHandler) handleStart(w http.ResponseWriter, r *http.Request, op func(context.Context, trackerdto.StartInput) (trackerdto.StateOutput, error)) {
	var input trackerdto.StartInput
	if err := decodeBody(r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}
	st, err := op(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *HTTPHandler) postStop(w http.ResponseWriter, r *http.Request) {
	var input trackerdto.StopInput
	if err := decodeBody(r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}
	st, err := h.tracker.Stop(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *HTTPHandler) postTick(w http.ResponseWriter, r *http.Request) {
	var input trackerdto.TickInput
	if err := decodeBody(r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}
	st, err := h.tracker.Tick(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *HTTPHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		reqID := id.Reuse(h.ids, r.Header.Get(id.HeaderRequestID))
		w.Header().Set(id.HeaderRequestID, reqID)
		logger := h.logger.With().Str("request_id", reqID).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
		logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("took", time.Since(started)).Msg("http request")
	})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("http request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// StatusFor maps tracker errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrSequencerClosed), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody accepts an empty body as the zero input.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request: %v: %w", err, apperrors.ErrInvalidInput)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
