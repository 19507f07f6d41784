package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aidin1998/amlguard/internal/annotator"
	"github.com/Aidin1998/amlguard/internal/casestore"
	"github.com/Aidin1998/amlguard/internal/config"
	"github.com/Aidin1998/amlguard/internal/report"
	"github.com/Aidin1998/amlguard/internal/screening"
)

func newTestServer(t *testing.T) (*Server, *casestore.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	store := casestore.NewMemoryStore()
	svc, err := screening.NewService(cfg, annotator.NewRuleBased(), store, nil, zap.NewNop())
	require.NoError(t, err)
	svc.Stages().WithCaseIDFunc(func() string { return "CASE-API" })

	return NewServer(cfg.Server, svc, store, zap.NewNop()), store
}

func doRequest(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func screeningPayload() map[string]any {
	return map[string]any{
		"transaction": map[string]any{
			"id":                  "TX-API-1",
			"amount":              5000,
			"origin_country":      "US",
			"destination_country": "GB",
			"asset_type":          "FIAT",
			"parties":             []string{"Acme Imports"},
			"timestamp":           time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC).Format(time.RFC3339),
			"documents":           []string{"Standard invoice for goods"},
		},
		"customer": map[string]any{
			"name":             "John Smith",
			"account_age_days": 400,
		},
	}
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doRequest(t, server, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestScreenTransaction(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/screenings", screeningPayload())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var r report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, "TX-API-1", r.TransactionID)
	assert.Equal(t, "UNDER_REVIEW", r.ReportingStatus)
	require.NotEmpty(t, r.DecisionPath)
	assert.Equal(t, "initial_screening", r.DecisionPath[0])
	assert.Equal(t, "human_review", r.DecisionPath[len(r.DecisionPath)-1])
	assert.GreaterOrEqual(t, r.RiskScore, 0)
	assert.LessOrEqual(t, r.RiskScore, 100)
}

func TestScreenSanctionedTransactionFilesSAR(t *testing.T) {
	server, store := newTestServer(t)

	payload := screeningPayload()
	payload["transaction"].(map[string]any)["parties"] = []string{"Narcotics_Cartel_XYZ Holdings"}

	rec := doRequest(t, server, http.MethodPost, "/api/v1/screenings", payload)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var r report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, "SAR_FILED", r.ReportingStatus)
	assert.Equal(t, "CASE-API", r.CaseID)

	record, err := store.Get(context.Background(), "CASE-API")
	require.NoError(t, err)
	assert.Equal(t, "TX-API-1", record.TransactionID)
}

func TestScreenMalformedBody(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/screenings", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScreenInvalidTransaction(t *testing.T) {
	server, _ := newTestServer(t)

	payload := screeningPayload()
	payload["transaction"].(map[string]any)["origin_country"] = ""

	rec := doRequest(t, server, http.MethodPost, "/api/v1/screenings", payload)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid input")
}

func TestListAndGetCases(t *testing.T) {
	server, _ := newTestServer(t)

	payload := screeningPayload()
	payload["transaction"].(map[string]any)["parties"] = []string{"Terror_Group_ABC"}
	rec := doRequest(t, server, http.MethodPost, "/api/v1/screenings", payload)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/api/v1/cases", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Cases []casestore.Record `json:"cases"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Cases, 1)

	rec = doRequest(t, server, http.MethodGet, fmt.Sprintf("/api/v1/cases/%s", "CASE-API"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var record casestore.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "SAR_FILED", record.Disposition)
}

func TestGetUnknownCase(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doRequest(t, server, http.MethodGet, "/api/v1/cases/CASE-MISSING", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
