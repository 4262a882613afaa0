package controllers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	dbpkg "imobot/db"
	"imobot/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDashboardEnv(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	database.LogMode(false)
	require.NoError(t, database.AutoMigrate(&models.Lead{}, &models.Deal{}, &models.Task{}).Error)
	t.Cleanup(func() { database.Close() })

	Setup(Deps{})

	r := gin.New()
	r.Use(dbpkg.SetDBtoContext(database))
	r.GET("/api/dashboard/leads-per-day", GetLeadsPerDay)
	r.GET("/api/dashboard/pipeline", GetPipelineOverview)
	return r, database
}

func TestLeadsPerDayDefaultsToThirtyDays(t *testing.T) {
	r, database := newDashboardEnv(t)

	now := time.Now()
	require.NoError(t, database.Create(&models.Lead{Name: "Ana", Stage: "new", CreatedAt: &now}).Error)

	w := doJSON(r, http.MethodGet, "/api/dashboard/leads-per-day", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		From   string           `json:"from"`
		To     string           `json:"to"`
		Series []leadsPerDayRow `json:"series"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// janela default: 30 dias corridos terminando hoje
	require.Len(t, resp.Series, 30)
	from, err := time.ParseInLocation("2006-01-02", resp.From, time.Local)
	require.NoError(t, err)
	assert.Equal(t, resp.To, from.AddDate(0, 0, 29).Format("2006-01-02"))
	assert.Equal(t, resp.From, resp.Series[0].Day)
	assert.Equal(t, resp.To, resp.Series[29].Day)

	var total int64
	for _, row := range resp.Series {
		total += row.Count
	}
	assert.Equal(t, int64(1), total)
}

func TestLeadsPerDayExplicitRange(t *testing.T) {
	r, database := newDashboardEnv(t)

	now := time.Now()
	require.NoError(t, database.Create(&models.Lead{Name: "Bia", Stage: "new", CreatedAt: &now}).Error)

	day := now.Format("2006-01-02")
	w := doJSON(r, http.MethodGet, "/api/dashboard/leads-per-day?from="+day+"&to="+day, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Series []leadsPerDayRow `json:"series"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Series, 1)
	assert.Equal(t, day, resp.Series[0].Day)
	assert.Equal(t, int64(1), resp.Series[0].Count)

	// from depois do to é recusado
	w = doJSON(r, http.MethodGet, "/api/dashboard/leads-per-day?from=2026-02-02&to=2026-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPipelineOverviewAggregates(t *testing.T) {
	r, database := newDashboardEnv(t)

	require.NoError(t, database.Create(&models.Lead{Name: "Ana", Stage: "new"}).Error)
	require.NoError(t, database.Create(&models.Lead{Name: "Bia", Stage: "qualified"}).Error)
	require.NoError(t, database.Create(&models.Lead{Name: "Caio", Stage: "qualified"}).Error)
	require.NoError(t, database.Create(&models.Deal{LeadID: 1, Title: "compra apartamento pinheiros", Value: 500000, Status: models.DEAL_STATUS_OPEN}).Error)
	require.NoError(t, database.Create(&models.Deal{LeadID: 2, Title: "venda casa", Value: 300000, Status: models.DEAL_STATUS_WON}).Error)
	require.NoError(t, database.Create(&models.Task{LeadID: 1, Title: "retornar contato", Status: models.TASK_STATUS_OPEN}).Error)
	require.NoError(t, database.Create(&models.Task{LeadID: 2, Title: "enviar proposta", Status: models.TASK_STATUS_DONE}).Error)

	w := doJSON(r, http.MethodGet, "/api/dashboard/pipeline", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Stages        []stageCountRow `json:"stages"`
		OpenDeals     int64           `json:"open_deals"`
		OpenDealValue int64           `json:"open_deal_value"`
		OpenTasks     int64           `json:"open_tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	counts := map[string]int64{}
	for _, s := range resp.Stages {
		counts[s.Stage] = s.Count
	}
	assert.Equal(t, int64(1), counts["new"])
	assert.Equal(t, int64(2), counts["qualified"])
	assert.Equal(t, int64(1), resp.OpenDeals)
	assert.Equal(t, int64(500000), resp.OpenDealValue)
	assert.Equal(t, int64(1), resp.OpenTasks)
}
