package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mingxia/ganzhi-api/internal/config"
	"github.com/mingxia/ganzhi-api/internal/database"
	"github.com/mingxia/ganzhi-api/internal/ganzhi"
	"github.com/mingxia/ganzhi-api/internal/logger"
)

// maxWindow caps the ranking window to keep a single request bounded.
const maxWindow = 90

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db     *database.DB
	conv   ganzhi.Converter
	cfg    *config.Config
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *database.DB, conv ganzhi.Converter, cfg *config.Config, log *slog.Logger) *Handlers {
	return &Handlers{
		db:     db,
		conv:   conv,
		cfg:    cfg,
		logger: log,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Health(r.Context()); err != nil {
			h.logger.Warn("health check failed", slog.Any("error", err))
			WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
			return
		}
	}

	WriteSuccess(w, map[string]string{
		"status": "healthy",
	})
}

// ChartRequest is the body of POST /api/v1/chart.
type ChartRequest struct {
	Date      string  `json:"date"`                // YYYY-MM-DD, required
	Time      string  `json:"time,omitempty"`      // HH:MM, optional
	Timezone  string  `json:"timezone,omitempty"`  // IANA zone, defaults from config
	Longitude float64 `json:"longitude,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	TrueSolar bool    `json:"true_solar,omitempty"`
}

// BuildChart handles POST /api/v1/chart
func (h *Handlers) BuildChart(w http.ResponseWriter, r *http.Request) {
	var req ChartRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	moment, errMsg := h.momentFromRequest(req)
	if errMsg != "" {
		WriteBadRequest(w, errMsg)
		return
	}

	chart, err := ganzhi.BuildChart(h.conv, moment)
	if err != nil {
		h.writeDerivationError(w, r, err)
		return
	}

	WriteSuccess(w, chart)
}

// GetRelation handles GET /api/v1/relation?ref=丁&date=YYYY-MM-DD
func (h *Handlers) GetRelation(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")
	if !isStem(ref) {
		WriteBadRequest(w, "ref must be one of the ten heavenly stems")
		return
	}

	dateStr := r.URL.Query().Get("date")
	date, err := parseDate(dateStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid date %q: use YYYY-MM-DD", dateStr))
		return
	}

	c, err := h.conv.Convert(date.Year(), date.Month(), date.Day())
	if err != nil {
		h.writeDerivationError(w, r, err)
		return
	}

	result := ganzhi.AnalyzeRelation(ref, c.DayPillar.Stem)
	WriteSuccess(w, map[string]any{
		"ref":        ref,
		"date":       dateStr,
		"day_pillar": c.DayPillar,
		"relation":   result.Relation,
		"rating":     result.Rating,
		"advice":     result.Advice,
	})
}

// GetDays handles GET /api/v1/days?ref=丁&event=wedding&window=30&start=YYYY-MM-DD
func (h *Handlers) GetDays(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")
	if !isStem(ref) {
		WriteBadRequest(w, "ref must be one of the ten heavenly stems")
		return
	}

	h.rankDays(w, r, ref)
}

// rankDays parses the shared event/window/start parameters and writes
// the scored ranking for the given reference stem.
func (h *Handlers) rankDays(w http.ResponseWriter, r *http.Request, refStem string) {
	eventKey := r.URL.Query().Get("event")
	event, ok := ganzhi.EventCategoryByKey(eventKey)
	if !ok {
		WriteBadRequest(w, fmt.Sprintf("Unknown event %q", eventKey))
		return
	}

	window := ganzhi.DefaultWindow
	if s := r.URL.Query().Get("window"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxWindow {
			WriteBadRequest(w, fmt.Sprintf("window must be between 1 and %d", maxWindow))
			return
		}
		window = n
	}

	start := time.Now()
	if s := r.URL.Query().Get("start"); s != "" {
		d, err := parseDate(s)
		if err != nil {
			WriteBadRequest(w, fmt.Sprintf("Invalid start %q: use YYYY-MM-DD", s))
			return
		}
		start = d
	}

	ranking, err := ganzhi.RankDays(h.conv, refStem, event, start, window)
	if err != nil {
		h.writeDerivationError(w, r, err)
		return
	}

	WriteSuccess(w, map[string]any{
		"ref":    refStem,
		"event":  event.Key,
		"window": window,
		"start":  start.Format("2006-01-02"),
		"top":    ranking.Top,
		"next":   ranking.Next,
	})
}

// CreateProfile handles POST /api/v1/profiles
func (h *Handlers) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string  `json:"name"`
		BirthDate string  `json:"birth_date"`
		BirthTime string  `json:"birth_time,omitempty"`
		Timezone  string  `json:"timezone,omitempty"`
		Longitude float64 `json:"longitude,omitempty"`
		Latitude  float64 `json:"latitude,omitempty"`
		TrueSolar bool    `json:"true_solar,omitempty"`
	}

	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	if req.Name == "" {
		WriteBadRequest(w, "name is required")
		return
	}
	if _, err := parseDate(req.BirthDate); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid birth_date %q: use YYYY-MM-DD", req.BirthDate))
		return
	}
	if req.BirthTime != "" {
		if _, err := time.Parse("15:04", req.BirthTime); err != nil {
			WriteBadRequest(w, fmt.Sprintf("Invalid birth_time %q: use HH:MM", req.BirthTime))
			return
		}
	}

	tz := req.Timezone
	if tz == "" {
		tz = h.cfg.DefaultTimezone
	}
	if _, err := time.LoadLocation(tz); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Unknown timezone %q", tz))
		return
	}

	profile := &database.Profile{
		Name:      req.Name,
		BirthDate: req.BirthDate,
		Timezone:  tz,
		Longitude: req.Longitude,
		Latitude:  req.Latitude,
		TrueSolar: req.TrueSolar,
	}
	if req.BirthTime != "" {
		profile.BirthTime = &req.BirthTime
	}

	if err := h.db.CreateProfile(r.Context(), profile); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			WriteError(w, http.StatusConflict, "Profile name already exists", "DUPLICATE")
			return
		}
		h.logger.Error("failed to create profile", slog.Any("error", err))
		WriteInternalError(w, "Failed to create profile")
		return
	}

	WriteCreated(w, profile)
}

// ListProfiles handles GET /api/v1/profiles
func (h *Handlers) ListProfiles(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0

	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			offset = n
		}
	}

	profiles, err := h.db.ListProfiles(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list profiles", slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve profiles")
		return
	}

	WriteSuccess(w, map[string]any{
		"profiles": profiles,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetProfile handles GET /api/v1/profiles/{id}
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profileFromPath(w, r)
	if !ok {
		return
	}

	moment, errMsg := h.momentFromProfile(profile)
	if errMsg != "" {
		h.logger.Error("stored profile failed validation",
			slog.Int64("profile_id", profile.ID),
			slog.String("reason", errMsg))
		WriteInternalError(w, "Stored profile is invalid")
		return
	}

	chart, err := ganzhi.BuildChart(h.conv, moment)
	if err != nil {
		h.writeDerivationError(w, r, err)
		return
	}

	WriteSuccess(w, map[string]any{
		"profile": profile,
		"chart":   chart,
	})
}

// DeleteProfile handles DELETE /api/v1/profiles/{id}
func (h *Handlers) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "Invalid profile ID")
		return
	}

	if err := h.db.DeleteProfile(r.Context(), id); err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Profile not found")
			return
		}
		h.logger.Error("failed to delete profile", slog.Any("error", err))
		WriteInternalError(w, "Failed to delete profile")
		return
	}

	WriteSuccess(w, map[string]string{"message": "Profile deleted"})
}

// GetProfileDays handles GET /api/v1/profiles/{id}/days?event=wedding&window=30
//
// The profile's own day stem is the reference, so the ranking is
// personalized without the caller restating birth data.
func (h *Handlers) GetProfileDays(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profileFromPath(w, r)
	if !ok {
		return
	}

	moment, errMsg := h.momentFromProfile(profile)
	if errMsg != "" {
		h.logger.Error("stored profile failed validation",
			slog.Int64("profile_id", profile.ID),
			slog.String("reason", errMsg))
		WriteInternalError(w, "Stored profile is invalid")
		return
	}

	chart, err := ganzhi.BuildChart(h.conv, moment)
	if err != nil {
		h.writeDerivationError(w, r, err)
		return
	}

	h.rankDays(w, r, chart.Day.Stem)
}

// profileFromPath loads the profile named by the {id} path parameter,
// writing the error response itself when that fails.
func (h *Handlers) profileFromPath(w http.ResponseWriter, r *http.Request) (*database.Profile, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "Invalid profile ID")
		return nil, false
	}

	profile, err := h.db.GetProfile(r.Context(), id)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Profile not found")
			return nil, false
		}
		h.logger.Error("failed to get profile", slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve profile")
		return nil, false
	}

	return profile, true
}

// momentFromRequest validates a chart request and builds the derivation
// input. The returned string is an empty-on-success error message.
func (h *Handlers) momentFromRequest(req ChartRequest) (ganzhi.Moment, string) {
	date, err := parseDate(req.Date)
	if err != nil {
		return ganzhi.Moment{}, fmt.Sprintf("Invalid date %q: use YYYY-MM-DD", req.Date)
	}

	tz := req.Timezone
	if tz == "" {
		tz = h.cfg.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return ganzhi.Moment{}, fmt.Sprintf("Unknown timezone %q", tz)
	}

	m := ganzhi.Moment{
		Year:      date.Year(),
		Month:     date.Month(),
		Day:       date.Day(),
		Location:  loc,
		Longitude: req.Longitude,
		Latitude:  req.Latitude,
		TrueSolar: req.TrueSolar,
	}

	if req.Time != "" {
		t, err := time.Parse("15:04", req.Time)
		if err != nil {
			return ganzhi.Moment{}, fmt.Sprintf("Invalid time %q: use HH:MM", req.Time)
		}
		m.Hour = t.Hour()
		m.Minute = t.Minute()
		m.HasTime = true
	}

	return m, ""
}

// momentFromProfile rebuilds the derivation input from a saved profile.
func (h *Handlers) momentFromProfile(p *database.Profile) (ganzhi.Moment, string) {
	req := ChartRequest{
		Date:      p.BirthDate,
		Timezone:  p.Timezone,
		Longitude: p.Longitude,
		Latitude:  p.Latitude,
		TrueSolar: p.TrueSolar,
	}
	if p.BirthTime != nil {
		req.Time = *p.BirthTime
	}
	return h.momentFromRequest(req)
}

// writeDerivationError maps derivation failures onto HTTP statuses.
// Out-of-range dates are a client error; anything else is internal.
func (h *Handlers) writeDerivationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ganzhi.ErrOutOfRange):
		WriteBadRequest(w, "Date is outside the supported range")
	case errors.Is(err, ganzhi.ErrMissingInput):
		WriteBadRequest(w, "A birth date is required")
	default:
		logger.FromContext(r.Context()).Error("derivation failed", slog.Any("error", err))
		WriteInternalError(w, "Derivation failed")
	}
}

func isStem(s string) bool {
	return slices.Contains(ganzhi.Stems, s)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// decodeJSON decodes a JSON request body.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("request body is empty")
	}
	defer r.Body.Close()

	return json.NewDecoder(r.Body).Decode(v)
}
