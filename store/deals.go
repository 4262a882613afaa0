package store

import (
	"context"

	"github.com/jinzhu/gorm"

	"imobot/models"
	"imobot/pipeline"
)

type Deals struct {
	DB *gorm.DB
}

func (s Deals) Create(ctx context.Context, f pipeline.DealFields) (int64, error) {
	deal := models.Deal{
		LeadID:  f.LeadID,
		Title:   f.Title,
		Value:   f.Value,
		Channel: f.Channel,
		Status:  models.DEAL_STATUS_OPEN,
	}
	if err := s.DB.Create(&deal).Error; err != nil {
		return 0, err
	}
	return deal.ID, nil
}
