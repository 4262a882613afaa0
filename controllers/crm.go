package controllers

import (
	"net/http"
	"strconv"
	"strings"

	dbpkg "imobot/db"
	"imobot/models"
	"imobot/store"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

func requireDB(c *gin.Context) (*gorm.DB, bool) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return nil, false
	}
	return db, true
}

// GET /api/leads?stage=
func GetLeads(c *gin.Context) {
	db, ok := requireDB(c)
	if !ok {
		return
	}

	query := db.Order("id desc").Limit(200)
	if stage := strings.TrimSpace(c.Query("stage")); stage != "" {
		query = query.Where("stage = ?", stage)
	}

	var leads []models.Lead
	if err := query.Find(&leads).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"leads": leads})
}

// GET /api/leads/:id
func GetLeadByID(c *gin.Context) {
	db, ok := requireDB(c)
	if !ok {
		return
	}
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	var lead models.Lead
	if err := db.First(&lead, id).Error; err != nil {
		RespondError(c, "lead não encontrado", http.StatusNotFound)
		return
	}
	RespondSuccess(c, gin.H{"lead": lead})
}

// GET /api/deals?status=
func GetDeals(c *gin.Context) {
	db, ok := requireDB(c)
	if !ok {
		return
	}

	query := db.Order("id desc").Limit(200)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}

	var deals []models.Deal
	if err := query.Find(&deals).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"deals": deals})
}

// GET /api/tasks?status=
func GetTasks(c *gin.Context) {
	db, ok := requireDB(c)
	if !ok {
		return
	}

	query := db.Order("id desc").Limit(200)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}

	var tasks []models.Task
	if err := query.Find(&tasks).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"tasks": tasks})
}

// PUT /api/tasks/:id/done
func CompleteTask(c *gin.Context) {
	db, ok := requireDB(c)
	if !ok {
		return
	}
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	var task models.Task
	if err := db.First(&task, id).Error; err != nil {
		RespondError(c, "task não encontrada", http.StatusNotFound)
		return
	}

	if err := db.Model(&models.Task{}).Where("id = ?", id).
		Update("status", models.TASK_STATUS_DONE).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, true)
}

// GET /api/automations
func GetAutomations(c *gin.Context) {
	db, ok := requireDB(c)
	if !ok {
		return
	}

	var defs []models.AutomationDefinition
	if err := db.Order("id desc").Find(&defs).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	for i := range defs {
		_ = defs[i].DecodeSteps()
	}
	RespondSuccess(c, gin.H{"automations": defs})
}

type automationReq struct {
	Name    string                  `json:"name"`
	Trigger string                  `json:"trigger"`
	Active  *bool                   `json:"active"`
	Steps   []models.AutomationStep `json:"steps"`
}

// POST /api/automations
func CreateAutomation(c *gin.Context) {
	db, ok := requireDB(c)
	if !ok {
		return
	}

	var req automationReq
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		RespondError(c, "name é obrigatório", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Trigger) == "" {
		req.Trigger = models.AUTOMATION_TRIGGER_NEW_LEAD
	}

	def := models.AutomationDefinition{
		Name:    req.Name,
		Trigger: strings.TrimSpace(req.Trigger),
		Active:  req.Active == nil || *req.Active,
		Steps:   req.Steps,
	}
	if err := def.EncodeSteps(); err != nil {
		RespondError(c, "steps inválidos", http.StatusBadRequest)
		return
	}

	if err := db.Create(&def).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"automation": def})
}

// PUT /api/automations/:id
func UpdateAutomation(c *gin.Context) {
	db, ok := requireDB(c)
	if !ok {
		return
	}
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	var def models.AutomationDefinition
	if err := db.First(&def, id).Error; err != nil {
		RespondError(c, "automação não encontrada", http.StatusNotFound)
		return
	}
	// update parcial sem "steps" responde os passos já gravados
	_ = def.DecodeSteps()

	var req automationReq
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		def.Name = name
	}
	if trigger := strings.TrimSpace(req.Trigger); trigger != "" {
		def.Trigger = trigger
	}
	if req.Active != nil {
		def.Active = *req.Active
	}
	if req.Steps != nil {
		def.Steps = req.Steps
		if err := def.EncodeSteps(); err != nil {
			RespondError(c, "steps inválidos", http.StatusBadRequest)
			return
		}
	}

	if err := db.Save(&def).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"automation": def})
}

// DELETE /api/automations/:id
func DeleteAutomation(c *gin.Context) {
	db, ok := requireDB(c)
	if !ok {
		return
	}
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	if err := db.Where("id = ?", id).Delete(&models.AutomationDefinition{}).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, true)
}

// GET /api/conversations?channel=&peer=&limit=
// Feed do atendimento: mensagens do cliente, respostas do agente e eventos
// de auditoria, na ordem em que aconteceram.
func GetConversation(c *gin.Context) {
	db, ok := requireDB(c)
	if !ok {
		return
	}

	channel := strings.TrimSpace(c.Query("channel"))
	peer := strings.TrimSpace(c.Query("peer"))
	if channel == "" || peer == "" {
		RespondError(c, "channel e peer são obrigatórios", http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, "limit inválido", http.StatusBadRequest)
			return
		}
		limit = n
	}

	messages, err := (store.Conversations{DB: db}).History(channel, peer, limit)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"messages": messages})
}
