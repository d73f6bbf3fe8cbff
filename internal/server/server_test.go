package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	compensationservice "github.com/ecoverde/compensa/internal/compensation/service"
	"github.com/ecoverde/compensa/internal/config"
	rulesdomain "github.com/ecoverde/compensa/internal/rules/domain"
	rulesrepo "github.com/ecoverde/compensa/internal/rules/repository"
	"github.com/ecoverde/compensa/internal/seed"
	speciesservice "github.com/ecoverde/compensa/internal/species/service"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&rulesdomain.TreeRule{},
		&rulesdomain.PatchRule{},
		&rulesdomain.AppRule{},
		&rulesdomain.SpeciesStatus{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	repo := rulesrepo.NewRepository(conn)
	loader := seed.NewLoader(seed.LoaderParams{
		DB:      conn,
		Log:     log,
		GenID:   node,
		Sources: config.NewStaticSourcesHolder(config.SourcesConfig{}),
	})

	srv := NewServer(ServerParams{
		Gin: NewEngine(log),
		Cfg: config.Config{},
		CompensationSvc: compensationservice.NewService(compensationservice.ServiceParams{
			Log:   log,
			Rules: repo,
		}),
		SpeciesSvc: speciesservice.NewService(speciesservice.ServiceParams{
			Log:   log,
			Rules: repo,
		}),
		RulesRepo: repo,
		Loader:    loader,
	})
	return srv, conn
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTreeBatchEndpoint(t *testing.T) {
	srv, conn := newTestServer(t)
	require.NoError(t, conn.Create(&rulesdomain.TreeRule{
		ID: 1, Group: "native", Municipality: "piracicaba",
		BaseCompensation: 100, EndangeredMultiplier: 3.0,
	}).Error)

	w := doJSON(t, srv, http.MethodPost, "/api/compensacao/lote", gin.H{
		"items": []gin.H{
			{"municipality": "piracicaba", "group": "native", "quantidade": 5, "endangered": true},
			{"municipality": "nowhere", "quantidade": 1},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Processed []map[string]any `json:"processed_items"`
		Total     float64          `json:"total_compensation"`
		Rejected  []map[string]any `json:"items_without_rule"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Processed, 1)
	assert.Equal(t, 1500.0, resp.Total)
	require.Len(t, resp.Rejected, 1)
	assert.Equal(t, "no rule found", resp.Rejected[0]["reason"])
}

func TestTreeBatchEndpoint_EmptyBatch(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/compensacao/lote", gin.H{"items": []gin.H{}})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error.Type)
	assert.Equal(t, "send a list with at least one item", resp.Error.Message)
}

func TestTreeBatchEndpoint_MalformedJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/compensacao/lote", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMunicipalityListingEndpoint(t *testing.T) {
	srv, conn := newTestServer(t)
	require.NoError(t, conn.Create(&rulesdomain.PatchRule{ID: 1, Municipality: "piracicaba", CompensationM2: 2.5}).Error)
	require.NoError(t, conn.Create(&rulesdomain.PatchRule{ID: 2, Municipality: "americana", CompensationM2: 1.0}).Error)

	w := doJSON(t, srv, http.MethodGet, "/api/patch_municipios", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Municipalities []string `json:"municipios"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"americana", "piracicaba"}, resp.Municipalities)
}

func TestSpeciesStatusEndpoint(t *testing.T) {
	srv, conn := newTestServer(t)
	require.NoError(t, conn.Create(&rulesdomain.SpeciesStatus{ID: 1, Family: "Fabaceae", Specie: "Dalbergia nigra", Status: "VU"}).Error)

	w := doJSON(t, srv, http.MethodGet, "/api/species/status?family=fabac", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "vulnerável", records[0]["description"])
}

func TestSpeciesFamiliesEndpoint(t *testing.T) {
	srv, conn := newTestServer(t)
	require.NoError(t, conn.Create(&rulesdomain.SpeciesStatus{ID: 1, Family: "Fabaceae", Specie: "Dalbergia nigra", Status: "VU"}).Error)
	require.NoError(t, conn.Create(&rulesdomain.SpeciesStatus{ID: 2, Family: "Fabaceae", Specie: "Caesalpinia echinata", Status: "EN"}).Error)
	require.NoError(t, conn.Create(&rulesdomain.SpeciesStatus{ID: 3, Family: "Arecaceae", Specie: "Euterpe edulis", Status: "EN"}).Error)

	w := doJSON(t, srv, http.MethodGet, "/api/species/families", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Families []string `json:"families"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Arecaceae", "Fabaceae"}, resp.Families)
}

func TestReloadEndpoint_UnknownKind(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/admin/rules/bogus/reload", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unknown rule kind", resp.Error.Message)
}
