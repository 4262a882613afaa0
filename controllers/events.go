package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"imobot/eventlog"

	"github.com/gin-gonic/gin"
)

func parseAfter(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

// GET /api/events?after=N
// Endpoint de drenagem: devolve os eventos com seq > after e o maior seq já
// atribuído, para o consumidor avançar mesmo em leitura vazia. Usado pelo
// poller e por monitores externos.
func ReadEvents(c *gin.Context) {
	after, err := parseAfter(c.Query("after"))
	if err != nil || after < 0 {
		RespondError(c, "after inválido", http.StatusBadRequest)
		return
	}

	events, next := deps.Events.ReadAfter(after)
	if events == nil {
		events = []eventlog.Event{}
	}

	RespondSuccess(c, gin.H{
		"events":     events,
		"nextCursor": next,
	})
}
