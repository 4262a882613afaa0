package models

import "time"

/************************************************
/**** MARK: TASK ****/
/************************************************/
const TASK_STATUS_OPEN = "open"
const TASK_STATUS_DONE = "done"

// Task é uma pendência de atendimento: o follow-up criado junto com o lead
// ou um passo de automação disparado.
type Task struct {
	ID          int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	LeadID      int64      `gorm:"not null;default:0;index" json:"lead_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	DueLabel    string     `gorm:"column:due_label;default:''" json:"due_label"`
	Channel     string     `gorm:"default:''" json:"channel"`
	Origin      string     `gorm:"not null;default:'followup';index" json:"origin"`
	Status      string     `gorm:"not null;default:'open';index" json:"status"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}
