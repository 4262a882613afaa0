package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"imobot/models"

	"github.com/gin-gonic/gin"
)

type leadsPerDayRow struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// GET /api/dashboard/leads-per-day
// Query params:
// - from=YYYY-MM-DD (opcional, default: hoje-29)
// - to=YYYY-MM-DD   (opcional, default: hoje)
// Retorna uma série diária de leads criados (inclui dias com 0).
func GetLeadsPerDay(c *gin.Context) {
	db, ok := requireDB(c)
	if !ok {
		return
	}

	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	// Normaliza para início do dia e usa "to exclusivo" (dia seguinte 00:00).
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.Local)
	toInclusive := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.Local)
	toExclusive := toInclusive.AddDate(0, 0, 1)

	// Expressão de "dia" depende do dialeto.
	dialect := strings.ToLower(db.Dialect().GetName())
	dayExpr := "date(created_at)"
	if strings.Contains(dialect, "sqlite") {
		dayExpr = "strftime('%Y-%m-%d', created_at, 'localtime')"
	} else if strings.Contains(dialect, "postgres") {
		dayExpr = "to_char(date_trunc('day', created_at), 'YYYY-MM-DD')"
	}

	var rows []leadsPerDayRow
	q := db.Table("leads").
		Select(fmt.Sprintf("%s as day, count(*) as count", dayExpr)).
		Where("created_at >= ? AND created_at < ?", from, toExclusive).
		Group("day").
		Order("day asc")

	if err := q.Scan(&rows).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	series := fillDailySeries(from, to, rows)
	RespondSuccess(c, gin.H{
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
		"series": series,
	})
}

type stageCountRow struct {
	Stage string `json:"stage"`
	Count int64  `json:"count"`
}

// GET /api/dashboard/pipeline
// Visão geral do funil: leads por estágio, negócios abertos (quantidade e
// valor somado) e tarefas pendentes.
func GetPipelineOverview(c *gin.Context) {
	db, ok := requireDB(c)
	if !ok {
		return
	}

	var stages []stageCountRow
	if err := db.Table("leads").
		Select("stage, count(*) as count").
		Group("stage").
		Scan(&stages).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var openDeals int64
	var dealValue struct {
		Total int64 `json:"total"`
	}
	if err := db.Model(&models.Deal{}).
		Where("status = ?", models.DEAL_STATUS_OPEN).
		Count(&openDeals).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := db.Table("deals").
		Select("coalesce(sum(value), 0) as total").
		Where("status = ?", models.DEAL_STATUS_OPEN).
		Scan(&dealValue).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var openTasks int64
	if err := db.Model(&models.Task{}).
		Where("status = ?", models.TASK_STATUS_OPEN).
		Count(&openTasks).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{
		"stages":          stages,
		"open_deals":      openDeals,
		"open_deal_value": dealValue.Total,
		"open_tasks":      openTasks,
	})
}

// ------------------------------
// Helpers
// ------------------------------

func parseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	// defaults: últimos 30 dias
	now := time.Now()
	defTo := now
	defFrom := now.AddDate(0, 0, -29)

	fromStr := strings.TrimSpace(c.Query("from"))
	toStr := strings.TrimSpace(c.Query("to"))

	from := defFrom
	to := defTo
	var err error

	if fromStr != "" {
		from, err = time.ParseInLocation("2006-01-02", fromStr, time.Local)
		if err != nil {
			RespondError(c, "from inválido (use YYYY-MM-DD)", http.StatusBadRequest)
			return time.Time{}, time.Time{}, false
		}
	}
	if toStr != "" {
		to, err = time.ParseInLocation("2006-01-02", toStr, time.Local)
		if err != nil {
			RespondError(c, "to inválido (use YYYY-MM-DD)", http.StatusBadRequest)
			return time.Time{}, time.Time{}, false
		}
	}
	if from.After(to) {
		RespondError(c, "from não pode ser maior que to", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func fillDailySeries(from time.Time, to time.Time, rows []leadsPerDayRow) []leadsPerDayRow {
	m := map[string]int64{}
	for _, r := range rows {
		if r.Day == "" {
			continue
		}
		m[r.Day] = r.Count
	}

	var out []leadsPerDayRow
	cur := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.Local)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.Local)
	for !cur.After(end) {
		key := cur.Format("2006-01-02")
		out = append(out, leadsPerDayRow{Day: key, Count: m[key]})
		cur = cur.AddDate(0, 0, 1)
	}
	return out
}
