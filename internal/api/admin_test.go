package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/nocapcooking/backend/internal/service"
	"github.com/pageza/nocapcooking/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminStats(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedScenario(t, db)
	tokens := service.NewTokenService("test-secret", "nocapcooking")

	r := gin.New()
	NewAdminHandler(service.NewCatalogService(db), tokens, nil).RegisterRoutes(r.Group(""))

	w := get(t, r, "/admin/stats")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := tokens.GenerateToken("ops", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Stats       service.CatalogStats `json:"stats"`
		RequestedBy string               `json:"requested_by"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body.Stats.Recipes)
	assert.Equal(t, int64(2), body.Stats.Cuisines)
	assert.Equal(t, "ops", body.RequestedBy)
}
