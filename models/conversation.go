package models

import "time"

// ConversationMessage é uma linha do histórico de uma conversa: a mensagem
// do usuário, a resposta do agente ou um evento de auditoria (lead criado,
// falha de store, etc). EntryID é um uuid estável para consumidores externos.
type ConversationMessage struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	EntryID   string     `gorm:"column:entry_id;not null;unique_index" json:"entry_id"`
	Channel   string     `gorm:"not null;index" json:"channel"`
	Peer      string     `gorm:"not null;index" json:"peer"`
	Role      string     `gorm:"not null;index" json:"role"`
	Kind      string     `gorm:"default:''" json:"kind,omitempty"`
	Text      string     `gorm:"type:text" json:"text"`
	CreatedAt *time.Time `json:"created_at"`
}
