package router

import (
	"imobot/controllers"
	"imobot/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Initialize wires all routes and middlewares.
func Initialize(r *gin.Engine, log *zap.Logger) {
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Webhook do gateway (sem Logger: tráfego alto, segredo na query)
	api.POST("/webhook/:channel", controllers.WebhookReceive)

	// Drenagem do log de eventos (poller remoto e monitores)
	api.GET("/events", controllers.ReadEvents)

	// Entrada manual de mensagens (teste do pipeline sem telefone)
	api.POST("/messages/test", Logger(log), controllers.SendTestMessage)

	// Canais (credenciais do gateway + pareamento)
	api.GET("/channels", Logger(log), controllers.GetChannels)
	api.PUT("/channels/:channel", Logger(log), controllers.UpsertChannelConfig)
	api.DELETE("/channels/:channel", Logger(log), controllers.DeleteChannelConfig)
	api.GET("/channels/:channel/state", Logger(log), controllers.GetChannelState)
	api.GET("/channels/:channel/qr", Logger(log), controllers.GetChannelQR)
	api.POST("/channels/:channel/session", Logger(log), controllers.CreateChannelSession)
	api.POST("/channels/:channel/send", Logger(log), controllers.SendChannelMessage)

	// CRM (leitura + tarefas + automações)
	api.GET("/leads", Logger(log), controllers.GetLeads)
	api.GET("/leads/:id", Logger(log), controllers.GetLeadByID)
	api.GET("/deals", Logger(log), controllers.GetDeals)
	api.GET("/tasks", Logger(log), controllers.GetTasks)
	api.PUT("/tasks/:id/done", Logger(log), controllers.CompleteTask)
	api.GET("/automations", Logger(log), controllers.GetAutomations)
	api.POST("/automations", Logger(log), controllers.CreateAutomation)
	api.PUT("/automations/:id", Logger(log), controllers.UpdateAutomation)
	api.DELETE("/automations/:id", Logger(log), controllers.DeleteAutomation)
	api.GET("/conversations", Logger(log), controllers.GetConversation)

	// Dashboard
	api.GET("/dashboard/leads-per-day", Logger(log), controllers.GetLeadsPerDay)
	api.GET("/dashboard/pipeline", Logger(log), controllers.GetPipelineOverview)

	log.Info("rotas inicializadas")
}
