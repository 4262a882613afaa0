package controllers

import (
	"net/http"
	"strings"

	"imobot/pipeline"

	"github.com/gin-gonic/gin"
)

type TestMessageInput struct {
	Channel string `json:"channel"`
	Peer    string `json:"peer"`
	Text    string `json:"text"`
	Author  string `json:"author"`
}

// POST /api/messages/test
// Injeta uma mensagem no pipeline como se tivesse chegado do canal, mas sem
// resposta automática de volta pro gateway. Útil pra testar a extração e o
// fluxo de CRM sem telefone na mão.
func SendTestMessage(c *gin.Context) {
	var in TestMessageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, "invalid json", http.StatusBadRequest)
		return
	}

	in.Channel = strings.TrimSpace(in.Channel)
	in.Peer = strings.TrimSpace(in.Peer)
	if in.Channel == "" || in.Peer == "" {
		RespondError(c, "channel e peer são obrigatórios", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		RespondError(c, "text é obrigatório", http.StatusBadRequest)
		return
	}

	outcome, err := deps.Pipeline.Process(c.Request.Context(), pipeline.Inbound{
		Channel:   in.Channel,
		Peer:      in.Peer,
		Text:      in.Text,
		Author:    strings.TrimSpace(in.Author),
		Source:    pipeline.SOURCE_MANUAL,
		AutoReply: false,
	})
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, outcome)
}
