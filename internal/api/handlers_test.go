package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/mingxia/ganzhi-api/internal/config"
	"github.com/mingxia/ganzhi-api/internal/database"
	"github.com/mingxia/ganzhi-api/internal/lunar"
)

// =============================================================================
// TEST SETUP HELPERS
// =============================================================================

// testEnv sets up a complete test environment with database, calendar,
// config, and the assembled router.
type testEnv struct {
	db      *database.DB
	cfg     *config.Config
	router  http.Handler
	cleanup func()
}

// setupTest creates a fresh test environment. apiKey is empty for
// unauthenticated tests; development mode skips auth when no key is set.
func setupTest(t *testing.T, apiKey string) *testEnv {
	t.Helper()

	dbCfg := database.Config{
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Quiet during tests
	}))

	db, err := database.Open(dbCfg, log)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if _, err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	cal, err := lunar.NewCalendar()
	if err != nil {
		t.Fatalf("load calendar: %v", err)
	}

	cfg := &config.Config{
		Port:            8080,
		Env:             config.EnvDevelopment,
		DatabasePath:    ":memory:",
		APIKey:          apiKey,
		DefaultTimezone: "Asia/Shanghai",
		LogLevel:        "error",
		LogFormat:       "text",
	}

	handlers := NewHandlers(db, cal, cfg, log)

	return &testEnv{
		db:      db,
		cfg:     cfg,
		router:  SetupRoutes(handlers, cfg, log),
		cleanup: func() { db.Close() },
	}
}

// makeRequest builds a request with an optional JSON body and API key.
func makeRequest(method, path string, body any, apiKey string) *http.Request {
	var bodyReader io.Reader
	if body != nil {
		jsonData, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonData)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	return req
}

// do runs a request through the router and decodes the envelope.
func (env *testEnv) do(t *testing.T, req *http.Request) (int, Response) {
	t.Helper()

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}

	return rec.Code, resp
}

// dataMap re-decodes the envelope's data field as a map.
func dataMap(t *testing.T, resp Response) map[string]any {
	t.Helper()

	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("re-encode data: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("decode data as map: %v", err)
	}
	return m
}

// =============================================================================
// HEALTH
// =============================================================================

func TestHealthCheck(t *testing.T) {
	env := setupTest(t, "")
	defer env.cleanup()

	status, resp := env.do(t, makeRequest("GET", "/health", nil, ""))

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if !resp.Success {
		t.Error("expected success response")
	}
}

// =============================================================================
// CHART
// =============================================================================

func TestBuildChart(t *testing.T) {
	env := setupTest(t, "")
	defer env.cleanup()

	status, resp := env.do(t, makeRequest("POST", "/api/v1/chart", ChartRequest{
		Date:     "2000-01-01",
		Time:     "12:00",
		Timezone: "Asia/Shanghai",
	}, ""))

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	data := dataMap(t, resp)

	day := data["day"].(map[string]any)
	if day["stem"] != "戊" || day["branch"] != "午" {
		t.Errorf("day pillar = %v%v, want 戊午", day["stem"], day["branch"])
	}

	// Noon on a 戊 day starts the hour cycle at 壬子, so 午时 is 戊午.
	hour := data["hour"].(map[string]any)
	if hour["stem"] != "戊" || hour["branch"] != "午" {
		t.Errorf("hour pillar = %v%v, want 戊午", hour["stem"], hour["branch"])
	}
	if data["has_hour"] != true {
		t.Error("has_hour = false, want true")
	}

	elements := data["elements"].([]any)
	sum := 0.0
	for _, v := range elements {
		sum += v.(float64)
	}
	if sum != 100 {
		t.Errorf("element percentages sum to %v, want 100", sum)
	}
}

func TestBuildChart_NoTime(t *testing.T) {
	env := setupTest(t, "")
	defer env.cleanup()

	status, resp := env.do(t, makeRequest("POST", "/api/v1/chart", ChartRequest{
		Date: "2000-01-01",
	}, ""))

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	data := dataMap(t, resp)
	if data["has_hour"] != false {
		t.Error("has_hour = true for a date-only request")
	}
}

func TestBuildChart_BadRequests(t *testing.T) {
	env := setupTest(t, "")
	defer env.cleanup()

	tests := []struct {
		name string
		req  ChartRequest
	}{
		{"missing date", ChartRequest{}},
		{"malformed date", ChartRequest{Date: "01/02/2000"}},
		{"malformed time", ChartRequest{Date: "2000-01-01", Time: "noonish"}},
		{"unknown timezone", ChartRequest{Date: "2000-01-01", Timezone: "Mars/Olympus"}},
		{"out of range", ChartRequest{Date: "1850-06-15"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := env.do(t, makeRequest("POST", "/api/v1/chart", tt.req, ""))
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
			if resp.Success {
				t.Error("expected error response")
			}
		})
	}
}

func TestBuildChart_InvalidJSON(t *testing.T) {
	env := setupTest(t, "")
	defer env.cleanup()

	req := httptest.NewRequest("POST", "/api/v1/chart", bytes.NewReader([]byte("{not json")))
	status, _ := env.do(t, req)

	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}

// =============================================================================
// RELATION
// =============================================================================

func TestGetRelation(t *testing.T) {
	env := setupTest(t, "")
	defer env.cleanup()

	// 2000-01-01 is a 戊 day; 丁 fire produces 戊 earth with opposite
	// polarity, the injury relation.
	status, resp := env.do(t, makeRequest("GET", "/api/v1/relation?ref=丁&date=2000-01-01", nil, ""))

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	data := dataMap(t, resp)
	if data["relation"] != "伤官" {
		t.Errorf("relation = %v, want 伤官", data["relation"])
	}
	if data["rating"] != "unfavorable" {
		t.Errorf("rating = %v, want unfavorable", data["rating"])
	}
	if data["advice"] == "" {
		t.Error("advice is empty")
	}
}

func TestGetRelation_BadRequests(t *testing.T) {
	env := setupTest(t, "")
	defer env.cleanup()

	paths := map[string]string{
		"missing ref":  "/api/v1/relation?date=2000-01-01",
		"bad ref":      "/api/v1/relation?ref=x&date=2000-01-01",
		"branch ref":   "/api/v1/relation?ref=午&date=2000-01-01",
		"missing date": "/api/v1/relation?ref=丁",
		"bad date":     "/api/v1/relation?ref=丁&date=yesterday",
	}

	for name, path := range paths {
		t.Run(name, func(t *testing.T) {
			status, _ := env.do(t, makeRequest("GET", path, nil, ""))
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
		})
	}
}

// =============================================================================
// DAYS
// =============================================================================

// rankedDays mirrors the days endpoint payload.
type rankedDays struct {
	Ref    string `json:"ref"`
	Event  string `json:"event"`
	Window int    `json:"window"`
	Top    []struct {
		Score int `json:"score"`
	} `json:"top"`
	Next []struct {
		Score int `json:"score"`
	} `json:"next"`
}

func decodeDays(t *testing.T, resp Response) rankedDays {
	t.Helper()

	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("re-encode data: %v", err)
	}

	var days rankedDays
	if err := json.Unmarshal(raw, &days); err != nil {
		t.Fatalf("decode days payload: %v", err)
	}
	return days
}

func TestGetDays(t *testing.T) {
	env := setupTest(t, "")
	defer env.cleanup()

	status, resp := env.do(t, makeRequest("GET",
		"/api/v1/days?ref=丁&event=wedding&start=2024-06-01&window=30", nil, ""))

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	days := decodeDays(t, resp)
	if len(days.Top) != 3 {
		t.Errorf("len(top) = %d, want 3", len(days.Top))
	}
	if len(days.Next) != 5 {
		t.Errorf("len(next) = %d, want 5", len(days.Next))
	}
	if days.Window != 30 {
		t.Errorf("window = %d, want 30", days.Window)
	}

	// Scores descend across the partition boundary.
	if len(days.Top) == 3 && len(days.Next) > 0 {
		if days.Top[2].Score < days.Next[0].Score {
			t.Errorf("top[2] score %d below next[0] score %d",
				days.Top[2].Score, days.Next[0].Score)
		}
	}
}

func TestGetDays_SmallWindow(t *testing.T) {
	env := setupTest(t, "")
	defer env.cleanup()

	status, resp := env.do(t, makeRequest("GET",
		"/api/v1/days?ref=甲&event=travel&start=2024-06-01&window=2", nil, ""))

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	days := decodeDays(t, resp)
	if len(days.Top) != 2 {
		t.Errorf("len(top) = %d, want 2", len(days.Top))
	}
	if len(days.Next) != 0 {
		t.Errorf("len(next) = %d, want 0", len(days.Next))
	}
}

func TestGetDays_BadRequests(t *testing.T) {
	env := setupTest(t, "")
	defer env.cleanup()

	paths := map[string]string{
		"missing ref":   "/api/v1/days?event=wedding",
		"unknown event": "/api/v1/days?ref=丁&event=birthday",
		"missing event": "/api/v1/days?ref=丁",
		"zero window":   "/api/v1/days?ref=丁&event=wedding&window=0",
		"huge window":   "/api/v1/days?ref=丁&event=wedding&window=5000",
		"bad start":     "/api/v1/days?ref=丁&event=wedding&start=soon",
	}

	for name, path := range paths {
		t.Run(name, func(t *testing.T) {
			status, _ := env.do(t, makeRequest("GET", path, nil, ""))
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
		})
	}
}

// =============================================================================
// PROFILES
// =============================================================================

func validProfileBody(name string) map[string]any {
	return map[string]any{
		"name":       name,
		"birth_date": "1990-06-15",
		"birth_time": "14:30",
		"timezone":   "Asia/Shanghai",
		"longitude":  116.4,
		"latitude":   39.9,
		"true_solar": true,
	}
}

func TestProfileLifecycle(t *testing.T) {
	env := setupTest(t, "")
	defer env.cleanup()

	status, resp := env.do(t, makeRequest("POST", "/api/v1/profiles", validProfileBody("alice"), ""))
	if status != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", status)
	}

	created := dataMap(t, resp)
	id := int64(created["id"].(float64))
	if id == 0 {
		t.Fatal("created profile has no ID")
	}

	// Fetch returns the profile with its derived chart.
	status, resp = env.do(t, makeRequest("GET", "/api/v1/profiles/1", nil, ""))
	if status != http.StatusOK {
		t.Fatalf("get status = %d, want 200", status)
	}
	data := dataMap(t, resp)
	if data["profile"] == nil || data["chart"] == nil {
		t.Error("expected profile and chart in response")
	}

	status, resp = env.do(t, makeRequest("GET", "/api/v1/profiles", nil, ""))
	if status != http.StatusOK {
		t.Fatalf("list status = %d, want 200", status)
	}
	listing := dataMap(t, resp)
	if profiles := listing["profiles"].([]any); len(profiles) != 1 {
		t.Errorf("list returned %d profiles, want 1", len(profiles))
	}

	status, _ = env.do(t, makeRequest("DELETE", "/api/v1/profiles/1", nil, ""))
	if status != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", status)
	}

	status, _ = env.do(t, makeRequest("GET", "/api/v1/profiles/1", nil, ""))
	if status != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", status)
	}
}

func TestCreateProfile_Duplicate(t *testing.T) {
	env := setupTest(t, "")
	defer env.cleanup()

	if status, _ := env.do(t, makeRequest("POST", "/api/v1/profiles", validProfileBody("bob"), "")); status != http.StatusCreated {
		t.Fatalf("first create status = %d, want 201", status)
	}

	status, _ := env.do(t, makeRequest("POST", "/api/v1/profiles", validProfileBody("bob"), ""))
	if status != http.StatusConflict {
		t.Errorf("duplicate create status = %d, want 409", status)
	}
}

func TestCreateProfile_BadRequests(t *testing.T) {
	env := setupTest(t, "")
	defer env.cleanup()

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"birth_date": "1990-06-15"}},
		{"missing birth date", map[string]any{"name": "x"}},
		{"bad birth date", map[string]any{"name": "x", "birth_date": "June 15"}},
		{"bad birth time", map[string]any{"name": "x", "birth_date": "1990-06-15", "birth_time": "2pm"}},
		{"bad timezone", map[string]any{"name": "x", "birth_date": "1990-06-15", "timezone": "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := env.do(t, makeRequest("POST", "/api/v1/profiles", tt.body, ""))
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
		})
	}
}

func TestGetProfileDays(t *testing.T) {
	env := setupTest(t, "")
	defer env.cleanup()

	if status, _ := env.do(t, makeRequest("POST", "/api/v1/profiles", validProfileBody("carol"), "")); status != http.StatusCreated {
		t.Fatalf("create failed with status %d", status)
	}

	status, resp := env.do(t, makeRequest("GET",
		"/api/v1/profiles/1/days?event=moving&start=2024-06-01&window=30", nil, ""))
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	days := decodeDays(t, resp)
	if len(days.Top) != 3 || len(days.Next) != 5 {
		t.Errorf("partition = %d/%d, want 3/5", len(days.Top), len(days.Next))
	}
	if days.Ref == "" {
		t.Error("response did not echo the profile's day stem")
	}
}

func TestProfile_NotFoundAndBadID(t *testing.T) {
	env := setupTest(t, "")
	defer env.cleanup()

	if status, _ := env.do(t, makeRequest("GET", "/api/v1/profiles/999", nil, "")); status != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", status)
	}
	if status, _ := env.do(t, makeRequest("GET", "/api/v1/profiles/abc", nil, "")); status != http.StatusBadRequest {
		t.Errorf("non-numeric id status = %d, want 400", status)
	}
	if status, _ := env.do(t, makeRequest("DELETE", "/api/v1/profiles/999", nil, "")); status != http.StatusNotFound {
		t.Errorf("delete unknown id status = %d, want 404", status)
	}
}

// =============================================================================
// AUTH
// =============================================================================

func TestProfileAuth(t *testing.T) {
	env := setupTest(t, "secret-key")
	defer env.cleanup()

	// No key.
	status, _ := env.do(t, makeRequest("GET", "/api/v1/profiles", nil, ""))
	if status != http.StatusUnauthorized {
		t.Errorf("missing key status = %d, want 401", status)
	}

	// Wrong key.
	status, _ = env.do(t, makeRequest("GET", "/api/v1/profiles", nil, "wrong"))
	if status != http.StatusUnauthorized {
		t.Errorf("wrong key status = %d, want 401", status)
	}

	// Correct key.
	status, _ = env.do(t, makeRequest("GET", "/api/v1/profiles", nil, "secret-key"))
	if status != http.StatusOK {
		t.Errorf("valid key status = %d, want 200", status)
	}

	// Derivation endpoints stay public.
	status, _ = env.do(t, makeRequest("GET", "/api/v1/relation?ref=丁&date=2000-01-01", nil, ""))
	if status != http.StatusOK {
		t.Errorf("public endpoint status = %d, want 200", status)
	}
}

func TestRequestIDHeader(t *testing.T) {
	env := setupTest(t, "")
	defer env.cleanup()

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, makeRequest("GET", "/health", nil, ""))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}
}
