package models

import "time"

const (
	CHANNEL_STATUS_DISCONNECTED = "disconnected"
	CHANNEL_STATUS_CONNECTING   = "connecting"
	CHANNEL_STATUS_CONNECTED    = "connected"
)

// ChannelConfig guarda as credenciais do gateway de um canal de entrada.
// Uma linha por canal; apagar a linha desconfigura o canal e derruba o
// poller correspondente. Os dois segredos ficam fora do JSON; só o upsert
// devolve o segredo do webhook, num campo próprio.
type ChannelConfig struct {
	ID            int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Channel       string     `gorm:"not null;unique_index" json:"channel"`
	BaseURL       string     `gorm:"column:base_url;not null" json:"base_url"`
	APIKey        string     `gorm:"column:api_key;not null" json:"-"`
	Instance      string     `gorm:"not null" json:"instance"`
	WebhookSecret string     `gorm:"column:webhook_secret;default:''" json:"-"`
	Status        string     `gorm:"not null;default:'disconnected'" json:"status"`
	CreatedAt     *time.Time `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}
