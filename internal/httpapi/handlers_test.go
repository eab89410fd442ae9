package httpapi

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisshield/fraud-graph-engine/internal/config"
	"github.com/aegisshield/fraud-graph-engine/internal/engine"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleAnalyze_EmptyLedgerOK(t *testing.T) {
	fe, err := engine.NewFraudEngine(config.Default(), testLogger())
	require.NoError(t, err)

	s := NewServer(fe, testLogger(), nil)

	csv := "sender_id,receiver_id,amount,timestamp\n"
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(csv))
	rec := httptest.NewRecorder()

	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "graph_data")
	assert.Contains(t, rec.Body.String(), "Analysis Complete")
}

func TestHandleAnalyze_BadInputRejected(t *testing.T) {
	fe, err := engine.NewFraudEngine(config.Default(), testLogger())
	require.NoError(t, err)

	s := NewServer(fe, testLogger(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader("not,a,valid,header\n"))
	rec := httptest.NewRecorder()

	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	fe, err := engine.NewFraudEngine(config.Default(), testLogger())
	require.NoError(t, err)

	s := NewServer(fe, testLogger(), nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
