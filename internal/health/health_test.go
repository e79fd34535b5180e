package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_AllHealthy(t *testing.T) {
	h := NewHandler("1.2.3")
	h.RegisterChecker("gateway", NewSimpleChecker("gateway", func() error { return nil }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, StatusHealthy, resp.Checks["gateway"].Status)
}

func TestHandler_UnhealthyChecker(t *testing.T) {
	h := NewHandler("test")
	h.RegisterChecker("gateway", NewSimpleChecker("gateway", func() error {
		return errors.New("connection refused")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Equal(t, "connection refused", resp.Checks["gateway"].Message)
}

func TestHandler_DegradedKeeps200(t *testing.T) {
	h := NewHandler("test")
	h.RegisterChecker("snapshot", NewStalenessChecker("snapshot", time.Minute, func() time.Time {
		return time.Time{}
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusDegraded, resp.Status)
}

func TestReadinessHandler(t *testing.T) {
	h := NewHandler("test")
	h.RegisterChecker("gateway", NewSimpleChecker("gateway", func() error { return nil }))

	rec := httptest.NewRecorder()
	h.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h.RegisterChecker("broken", NewSimpleChecker("broken", func() error {
		return errors.New("boom")
	}))

	rec = httptest.NewRecorder()
	h.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStalenessChecker(t *testing.T) {
	t.Run("fresh snapshot", func(t *testing.T) {
		c := NewStalenessChecker("snapshot", time.Minute, func() time.Time {
			return time.Now().Add(-time.Second)
		})
		assert.Equal(t, StatusHealthy, c.Check().Status)
	})

	t.Run("stale snapshot", func(t *testing.T) {
		c := NewStalenessChecker("snapshot", time.Minute, func() time.Time {
			return time.Now().Add(-5 * time.Minute)
		})
		check := c.Check()
		assert.Equal(t, StatusDegraded, check.Status)
		assert.Contains(t, check.Message, "stale")
	})
}
