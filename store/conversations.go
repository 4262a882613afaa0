package store

import (
	"context"

	"github.com/jinzhu/gorm"

	"imobot/models"
	"imobot/pipeline"
)

type Conversations struct {
	DB *gorm.DB
}

// Append grava o lote do turno (mensagem do usuário, resposta e auditoria)
// numa transação só: ou o turno inteiro entra no histórico, ou nada entra.
func (s Conversations) Append(ctx context.Context, channel, peer string, entries []pipeline.ConversationEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx := s.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	for _, entry := range entries {
		row := models.ConversationMessage{
			EntryID: entry.EntryID,
			Channel: channel,
			Peer:    peer,
			Role:    entry.Role,
			Kind:    entry.Kind,
			Text:    entry.Text,
		}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}

// History devolve o histórico de uma conversa em ordem cronológica.
func (s Conversations) History(channel, peer string, limit int) ([]models.ConversationMessage, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows []models.ConversationMessage
	err := s.DB.Where("channel = ? AND peer = ?", channel, peer).
		Order("id asc").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
