package store

import (
	"context"

	"github.com/jinzhu/gorm"

	"imobot/models"
	"imobot/pipeline"
)

type Tasks struct {
	DB *gorm.DB
}

func (s Tasks) Create(ctx context.Context, f pipeline.TaskFields) (int64, error) {
	task := models.Task{
		LeadID:      f.LeadID,
		Title:       f.Title,
		Description: f.Description,
		DueLabel:    f.DueLabel,
		Channel:     f.Channel,
		Origin:      f.Origin,
		Status:      models.TASK_STATUS_OPEN,
	}
	if err := s.DB.Create(&task).Error; err != nil {
		return 0, err
	}
	return task.ID, nil
}
