package models

import "time"

const (
	DEAL_STATUS_OPEN = "open"
	DEAL_STATUS_WON  = "won"
	DEAL_STATUS_LOST = "lost"
)

// Deal é a oportunidade aberta quando o lead demonstra intenção e orçamento.
// No máximo uma por sessão de conversa.
type Deal struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	LeadID    int64      `gorm:"not null;index" json:"lead_id"`
	Title     string     `gorm:"not null" json:"title"`
	Value     int64      `gorm:"default:0" json:"value"`
	Status    string     `gorm:"not null;default:'open';index" json:"status"`
	Channel   string     `gorm:"default:''" json:"channel"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
