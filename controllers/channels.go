package controllers

import (
	"net/http"
	"strings"

	dbpkg "imobot/db"
	"imobot/gateway"
	"imobot/models"
	"imobot/store"
	"imobot/tools"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type upsertChannelReq struct {
	BaseURL       string `json:"base_url"`
	APIKey        string `json:"api_key"`
	Instance      string `json:"instance"`
	WebhookSecret string `json:"webhook_secret"`
}

func requireChannelConfig(c *gin.Context) (string, *models.ChannelConfig, bool) {
	channel := strings.TrimSpace(c.Param("channel"))
	if channel == "" {
		RespondError(c, "channel é obrigatório", http.StatusBadRequest)
		return "", nil, false
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return "", nil, false
	}

	cfg, err := (store.Channels{DB: db}).Get(channel)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	if cfg == nil {
		RespondError(c, "canal não configurado", http.StatusNotFound)
		return "", nil, false
	}
	return channel, cfg, true
}

// GET /api/channels
func GetChannels(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	rows, err := (store.Channels{DB: db}).All()
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"channels": rows})
}

// PUT /api/channels/:channel
// Upsert das credenciais do gateway do canal. Gera um segredo de webhook na
// primeira configuração se nenhum for informado, e garante o poller do canal.
func UpsertChannelConfig(c *gin.Context) {
	channel := strings.TrimSpace(c.Param("channel"))
	if channel == "" {
		RespondError(c, "channel é obrigatório", http.StatusBadRequest)
		return
	}

	var req upsertChannelReq
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	req.BaseURL = strings.TrimSpace(req.BaseURL)
	req.APIKey = strings.TrimSpace(req.APIKey)
	req.Instance = strings.TrimSpace(req.Instance)
	req.WebhookSecret = strings.TrimSpace(req.WebhookSecret)

	if req.BaseURL == "" {
		RespondError(c, "base_url é obrigatório", http.StatusBadRequest)
		return
	}
	if req.APIKey == "" {
		RespondError(c, "api_key é obrigatório", http.StatusBadRequest)
		return
	}
	if req.Instance == "" {
		req.Instance = channel
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}
	channels := store.Channels{DB: db}

	existing, err := channels.Get(channel)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	secret := req.WebhookSecret
	status := models.CHANNEL_STATUS_DISCONNECTED
	if existing != nil {
		if secret == "" {
			secret = existing.WebhookSecret
		}
		status = existing.Status
	}
	if secret == "" {
		secret = tools.RandomString(32)
	}

	cfg := models.ChannelConfig{
		Channel:       channel,
		BaseURL:       req.BaseURL,
		APIKey:        req.APIKey,
		Instance:      req.Instance,
		WebhookSecret: secret,
		Status:        status,
	}
	if err := channels.Upsert(&cfg); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	if deps.Pollers != nil {
		deps.Pollers.Ensure(channel)
	}

	// único lugar que devolve o segredo: o operador precisa dele pra
	// configurar o webhook no provedor
	RespondSuccess(c, gin.H{"channel": cfg, "webhook_secret": cfg.WebhookSecret})
}

// DELETE /api/channels/:channel
// Desconfigura o canal: derruba o poller primeiro pra não sobrar loop órfão.
func DeleteChannelConfig(c *gin.Context) {
	channel, _, ok := requireChannelConfig(c)
	if !ok {
		return
	}

	if deps.Pollers != nil {
		deps.Pollers.Stop(channel)
	}

	db := dbpkg.DBInstance(c)
	if err := (store.Channels{DB: db}).Delete(channel); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, true)
}

// GET /api/channels/:channel/state
// Consulta o estado da conexão no provedor e atualiza o cache local.
func GetChannelState(c *gin.Context) {
	channel, cfg, ok := requireChannelConfig(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	state, err := deps.Gateway.ConnectionState(ctx, gateway.Config{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey}, cfg.Instance)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadGateway)
		return
	}

	status := models.CHANNEL_STATUS_CONNECTING
	if gateway.IsConnected(state) {
		status = models.CHANNEL_STATUS_CONNECTED
	}

	db := dbpkg.DBInstance(c)
	if err := (store.Channels{DB: db}).UpdateStatus(channel, status); err != nil {
		deps.Log.Warn("falha ao atualizar status do canal", zap.String("channel", channel), zap.Error(err))
	}

	RespondSuccess(c, gin.H{
		"state":     state,
		"connected": gateway.IsConnected(state),
		"status":    status,
	})
}

// GET /api/channels/:channel/qr
func GetChannelQR(c *gin.Context) {
	_, cfg, ok := requireChannelConfig(c)
	if !ok {
		return
	}

	qr, err := deps.Gateway.FetchQR(c.Request.Context(), gateway.Config{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey}, cfg.Instance)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadGateway)
		return
	}
	if qr == "" {
		RespondError(c, "provedor não devolveu QR", http.StatusNotFound)
		return
	}

	RespondSuccess(c, gin.H{"qr": qr})
}

// POST /api/channels/:channel/session
// Registra a instância no provedor (primeiro passo do pareamento).
func CreateChannelSession(c *gin.Context) {
	channel, cfg, ok := requireChannelConfig(c)
	if !ok {
		return
	}

	res, err := deps.Gateway.CreateSession(c.Request.Context(), gateway.Config{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey}, cfg.Instance)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadGateway)
		return
	}

	db := dbpkg.DBInstance(c)
	if err := (store.Channels{DB: db}).UpdateStatus(channel, models.CHANNEL_STATUS_CONNECTING); err != nil {
		deps.Log.Warn("falha ao atualizar status do canal", zap.String("channel", channel), zap.Error(err))
	}

	RespondSuccess(c, gin.H{"result": res.JSON, "path": res.Path})
}

type sendMessageReq struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// POST /api/channels/:channel/send
// Envio manual de texto pelo gateway do canal.
func SendChannelMessage(c *gin.Context) {
	channel, _, ok := requireChannelConfig(c)
	if !ok {
		return
	}

	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	req.To = strings.TrimSpace(req.To)
	req.Text = strings.TrimSpace(req.Text)
	if req.To == "" {
		RespondError(c, "to é obrigatório", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		RespondError(c, "text é obrigatório", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	sender := store.ChannelGateway{Channels: store.Channels{DB: db}, Client: deps.Gateway}
	if err := sender.SendText(c.Request.Context(), channel, req.To, req.Text); err != nil {
		RespondError(c, err.Error(), http.StatusBadGateway)
		return
	}

	RespondSuccess(c, true)
}
