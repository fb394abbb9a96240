package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_OverLimitThenVacation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/scenarios/load", map[string]any{"scenario_id": "over-limit"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = ts.do(t, http.MethodGet, "/api/weeks/2024-06-12", nil)
	week := decode[WeekStatusDTO](t, rec)
	assert.Equal(t, 1950, week.TotalMinutes)
	assert.True(t, week.OverLimit)

	rec = ts.do(t, http.MethodPost, "/api/scenarios/load", map[string]any{"scenario_id": "vacation-week"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/weeks/2024-06-12", nil)
	week = decode[WeekStatusDTO](t, rec)
	assert.Equal(t, 1950, week.TotalMinutes)
	assert.False(t, week.OverLimit)

	rec = ts.do(t, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "vacation-week", decode[ScenarioDTO](t, rec).ID)

	rec = ts.do(t, http.MethodPost, "/api/scenarios/load", map[string]any{"scenario_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScenarioRoutes_NotMountedByDefault(t *testing.T) {
	ts := newTestServer(t)
	router := NewRouter(ts.h, RouterOptions{})

	req := httptest.NewRequest(http.MethodGet, "/api/scenarios", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListScenarios(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/scenarios", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]ScenarioDTO](t, rec)
	assert.Len(t, list, len(scenarioLoaders))
	for _, s := range list {
		assert.Contains(t, scenarioLoaders, s.ID)
	}
}

func TestResetStore(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, mkShift("2024-06-10", "09:00", "10:00", 0))

	rec := ts.do(t, http.MethodPost, "/api/scenarios/reset", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/shifts", nil)
	assert.Empty(t, decode[map[string][]ShiftDTO](t, rec)["shifts"])
}
