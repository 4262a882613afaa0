package controllers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	dbpkg "imobot/db"
	"imobot/eventlog"
	"imobot/gateway"
	"imobot/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Formatos de corpo aceitos, em ordem de preferência. Provedores diferentes
// aninham o texto em lugares diferentes; o primeiro presente vence.
var webhookTextShapes = []gateway.ShapeRule{
	{Name: "text", Path: []string{"text"}},
	{Name: "conversation", Path: []string{"message", "conversation"}},
	{Name: "extendedText", Path: []string{"message", "extendedTextMessage", "text"}},
	{Name: "imageCaption", Path: []string{"message", "imageMessage", "caption"}},
	{Name: "videoCaption", Path: []string{"message", "videoMessage", "caption"}},
	{Name: "documentCaption", Path: []string{"message", "documentMessage", "caption"}},
	{Name: "buttonReply", Path: []string{"message", "buttonsResponseMessage", "selectedDisplayText"}},
	{Name: "listReply", Path: []string{"message", "listResponseMessage", "title"}},
	{Name: "templateReply", Path: []string{"message", "templateButtonReplyMessage", "selectedDisplayText"}},
}

var webhookSenderShapes = []gateway.ShapeRule{
	{Name: "key.remoteJid", Path: []string{"key", "remoteJid"}},
	{Name: "remoteJid", Path: []string{"remoteJid"}},
	{Name: "sender", Path: []string{"sender"}},
	{Name: "from", Path: []string{"from"}},
}

// messageNode acha o nó da mensagem: pode vir na raiz, dentro de "data" ou
// como primeiro elemento de um array em "data".
func messageNode(body map[string]any) map[string]any {
	switch data := body["data"].(type) {
	case map[string]any:
		return data
	case []any:
		if len(data) > 0 {
			if m, ok := data[0].(map[string]any); ok {
				return m
			}
		}
	}
	return body
}

func nodeFromMe(node map[string]any) bool {
	if key, ok := node["key"].(map[string]any); ok {
		if v, ok := key["fromMe"].(bool); ok {
			return v
		}
	}
	v, _ := node["fromMe"].(bool)
	return v
}

// checkWebhookSecret valida o segredo compartilhado do canal, quando
// configurado. Aceita query ?apikey= ou header apikey; comparação em tempo
// constante.
func checkWebhookSecret(c *gin.Context, channel string) bool {
	dbc := dbpkg.DBInstance(c)
	if dbc == nil {
		return true
	}
	cfg, err := (store.Channels{DB: dbc}).Get(channel)
	if err != nil {
		deps.Log.Warn("falha ao consultar segredo do canal", zap.String("channel", channel), zap.Error(err))
		return true
	}
	if cfg == nil || cfg.WebhookSecret == "" {
		return true
	}

	provided := strings.TrimSpace(c.Query("apikey"))
	if provided == "" {
		provided = strings.TrimSpace(c.GetHeader("apikey"))
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.WebhookSecret)) == 1
}

// POST /api/webhook/:channel
func WebhookReceive(c *gin.Context) {
	channel := strings.TrimSpace(c.Param("channel"))
	if channel == "" {
		RespondError(c, "channel é obrigatório", http.StatusBadRequest)
		return
	}

	if !checkWebhookSecret(c, channel) {
		RespondError(c, "não autorizado", http.StatusUnauthorized)
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		RespondError(c, "failed to read body", http.StatusBadRequest)
		return
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		RespondError(c, "invalid json", http.StatusBadRequest)
		return
	}

	node := messageNode(body)
	text := gateway.FirstShape(webhookTextShapes, node)
	sender := gateway.FirstShape(webhookSenderShapes, node)
	author, _ := node["pushName"].(string)

	seq, accepted := deps.Events.Admit(eventlog.Event{
		Channel:    channel,
		Sender:     sender,
		Text:       text,
		Author:     strings.TrimSpace(author),
		FromMe:     nodeFromMe(node),
		ReceivedAt: time.Now(),
	})
	if !accepted {
		// eco ou payload sem texto/remetente: ignora sem consumir seq
		RespondSuccess(c, gin.H{"status": "IGNORED"})
		return
	}

	deps.Log.Debug("evento admitido",
		zap.String("channel", channel),
		zap.String("sender", sender),
		zap.Int64("seq", seq))

	RespondSuccess(c, gin.H{"status": "EVENT_RECEIVED", "seq": seq})
}
