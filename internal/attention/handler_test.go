package attention

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/internal/engine"
	"beacon/internal/logger"
	"beacon/internal/records"
)

func setupHandlerRouter(t *testing.T, repo *fakeRecordsRepo, rules staticRules) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := NewService(rules, repo, nil, nil, logger.NopLogger())
	handler := NewHandler(svc, logger.NopLogger())

	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func TestListItemsEndpoint(t *testing.T) {
	repo := &fakeRecordsRepo{
		applicants: []*records.Applicant{
			stuckApplicant("ap-1", "Amy", 10),
			stuckApplicant("ap-2", "Zoe", 10),
		},
	}
	rules := staticRules{
		stuckRule("r-critical", engine.KindApplicant, engine.UrgencyCritical, 5),
		stuckRule("r-info", engine.KindApplicant, engine.UrgencyInfo, 5),
	}
	router := setupHandlerRouter(t, repo, rules)

	t.Run("returns sorted items", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/attention", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Items []engine.ActionItem `json:"items"`
			Count int                 `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Equal(t, 4, body.Count)
		assert.Equal(t, engine.UrgencyCritical, body.Items[0].Urgency)
		assert.Equal(t, "Amy", body.Items[0].Name)
	})

	t.Run("urgency filter", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/attention?urgency=info", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Items []engine.ActionItem `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Items, 2)
		for _, item := range body.Items {
			assert.Equal(t, engine.UrgencyInfo, item.Urgency)
		}
	})

	t.Run("limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/attention?limit=1", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 1, body.Count)
	})

	t.Run("invalid urgency", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/attention?urgency=severe", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/attention?limit=-3", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListItemsEndpoint_EmptyResult(t *testing.T) {
	router := setupHandlerRouter(t, &fakeRecordsRepo{}, staticRules{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/attention", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items": [], "count": 0}`, w.Body.String())
}

func TestSummaryEndpoint(t *testing.T) {
	repo := &fakeRecordsRepo{
		applicants: []*records.Applicant{stuckApplicant("ap-1", "Amy", 10)},
		leads:      []*records.Lead{stuckLead("ld-1", "Initech", 10)},
	}
	rules := staticRules{
		stuckRule("r-warning", engine.KindApplicant, engine.UrgencyWarning, 5),
		stuckRule("r-critical", engine.KindLead, engine.UrgencyCritical, 5),
	}
	router := setupHandlerRouter(t, repo, rules)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/attention/summary", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"critical": 1, "warning": 1, "info": 0}`, w.Body.String())
}
