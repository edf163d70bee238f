package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-portal-api/internal/models"
	"github.com/noah-isme/internship-portal-api/internal/service"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.JWTClaims{UserID: "user-1", Role: models.RoleCoordinator}, nil
}

type recordedAudit struct {
	entries []service.AuditEntry
}

func (r *recordedAudit) Record(ctx context.Context, entry service.AuditEntry) {
	r.entries = append(r.entries, entry)
}

func perform(r http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTRequiresBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", JWT(stubValidator{}), func(c *gin.Context) {
		claims := currentClaims(c)
		c.String(http.StatusOK, claims.UserID)
	})

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/me", "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/me", "Bearer bad").Code)

	w := perform(r, http.MethodGet, "/me", "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}

func TestOptionalJWTNeverBlocks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/open", OptionalJWT(stubValidator{}), func(c *gin.Context) {
		if claims := currentClaims(c); claims != nil {
			c.String(http.StatusOK, claims.UserID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	assert.Equal(t, "anonymous", perform(r, http.MethodGet, "/open", "Bearer bad").Body.String())
	assert.Equal(t, "user-1", perform(r, http.MethodGet, "/open", "Bearer good").Body.String())
}

func TestAuditRecordsSuccessfulRequestsOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := &recordedAudit{}
	r := gin.New()
	r.Use(OptionalJWT(stubValidator{}))
	r.PUT("/MarkasComplete/:internshipId", Audit(recorder, models.AuditActionComplete, "internship", "internshipId"), func(c *gin.Context) {
		if c.Param("internshipId") == "missing" {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusOK)
	})

	perform(r, http.MethodPut, "/MarkasComplete/I1", "Bearer good")
	perform(r, http.MethodPut, "/MarkasComplete/missing", "Bearer good")

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	assert.Equal(t, models.AuditActionComplete, entry.Action)
	assert.Equal(t, "I1", entry.ResourceID)
	assert.Equal(t, "user-1", entry.UserID)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/internship/:internshipId", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, http.MethodGet, "/internship/I1", "")
	perform(r, http.MethodGet, "/nowhere", "")

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	paths := map[string]bool{}
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "path" {
					paths[label.GetValue()] = true
				}
			}
		}
	}
	assert.True(t, paths["/internship/:internshipId"])
	assert.True(t, paths[unmatchedRoute])
	assert.False(t, paths["/nowhere"])
}

func TestExtractMetaStampsProcessingTime(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	var meta map[string]interface{}
	r.GET("/x", func(c *gin.Context) {
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	perform(r, http.MethodGet, "/x", "")
	require.NotNil(t, meta)
	assert.Contains(t, meta, "processing_time_ms")

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, ExtractMeta(c))
	assert.Nil(t, ExtractMeta(nil))
}
