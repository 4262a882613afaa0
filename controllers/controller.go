package controllers

import (
	"imobot/eventlog"
	"imobot/gateway"
	"imobot/pipeline"
	"imobot/workers"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps reúne o que os handlers usam além do *gorm.DB injetado no contexto.
// Preenchido uma vez no boot, via Setup.
type Deps struct {
	Log      *zap.Logger
	Events   *eventlog.Log
	Pipeline *pipeline.Orchestrator
	Gateway  gateway.Client
	Pollers  *workers.PollerManager
}

var deps Deps

func Setup(d Deps) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	deps = d
}

func RespondError(c *gin.Context, msg string, code int) {
	c.JSON(code, gin.H{"error": msg})
}

func RespondSuccess(c *gin.Context, payload any) {
	c.JSON(200, payload)
}
