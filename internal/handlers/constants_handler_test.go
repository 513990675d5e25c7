package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantsHandler_Routes(t *testing.T) {
	router := gin.New()
	NewConstantsHandler().RegisterRoutes(router.Group("/api/constants"))

	w := serve(router, http.MethodGet, "/api/constants/all", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var all map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 10)
	assert.Equal(t, models.ThematicAreas, all["thematic_areas"])

	for _, path := range []string{
		"states", "facility-types", "interaction-types", "activity-types", "thematic-areas",
		"competency-levels", "transfer-methods", "priorities", "attachment-types", "cadres",
	} {
		w := serve(router, http.MethodGet, "/api/constants/"+path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w = serve(router, http.MethodGet, "/api/constants/facility-types", nil)
	var types []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &types))
	assert.Equal(t, models.FacilityTypes, types)
}
