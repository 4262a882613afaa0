package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	dbpkg "imobot/db"
	"imobot/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChannelsEnv(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	database.LogMode(false)
	require.NoError(t, database.AutoMigrate(&models.ChannelConfig{}).Error)
	t.Cleanup(func() { database.Close() })

	Setup(Deps{})

	r := gin.New()
	r.Use(dbpkg.SetDBtoContext(database))
	r.GET("/api/channels", GetChannels)
	r.PUT("/api/channels/:channel", UpsertChannelConfig)
	return r, database
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	raw := []byte(nil)
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChannelListNeverExposesSecrets(t *testing.T) {
	r, _ := newChannelsEnv(t)

	w := doJSON(r, http.MethodPut, "/api/channels/vendas", map[string]any{
		"base_url":       "http://gateway.local",
		"api_key":        "chave-super-secreta",
		"instance":       "vendas",
		"webhook_secret": "segredo-do-hook",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/channels", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "chave-super-secreta")
	assert.NotContains(t, w.Body.String(), "segredo-do-hook")

	var resp struct {
		Channels []map[string]any `json:"channels"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Channels, 1)
	row := resp.Channels[0]
	assert.Equal(t, "vendas", row["channel"])
	assert.Equal(t, "http://gateway.local", row["base_url"])
	assert.NotContains(t, row, "api_key")
	assert.NotContains(t, row, "webhook_secret")
}

func TestUpsertChannelReturnsGeneratedSecretOnce(t *testing.T) {
	r, database := newChannelsEnv(t)

	// sem segredo no corpo: o servidor gera um e devolve no campo próprio
	w := doJSON(r, http.MethodPut, "/api/channels/vendas", map[string]any{
		"base_url": "http://gateway.local",
		"api_key":  "chave-super-secreta",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Channel       map[string]any `json:"channel"`
		WebhookSecret string         `json:"webhook_secret"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.WebhookSecret, 32)
	assert.NotContains(t, resp.Channel, "api_key")
	assert.NotContains(t, resp.Channel, "webhook_secret")
	assert.NotContains(t, w.Body.String(), "chave-super-secreta")

	// reconfigurar sem segredo preserva o já gerado
	w = doJSON(r, http.MethodPut, "/api/channels/vendas", map[string]any{
		"base_url": "http://gateway.local:8080",
		"api_key":  "outra-chave",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var again struct {
		WebhookSecret string `json:"webhook_secret"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &again))
	assert.Equal(t, resp.WebhookSecret, again.WebhookSecret)

	// a linha continua com os segredos de verdade
	var stored models.ChannelConfig
	require.NoError(t, database.Where("channel = ?", "vendas").First(&stored).Error)
	assert.Equal(t, "outra-chave", stored.APIKey)
	assert.Equal(t, resp.WebhookSecret, stored.WebhookSecret)
}
