package store

import (
	"context"

	"github.com/jinzhu/gorm"

	"imobot/models"
	"imobot/pipeline"
)

type Automations struct {
	DB *gorm.DB
}

// ListActive traduz as definições ativas do trigger pedido para o formato
// do pipeline, já com os passos decodificados da coluna JSON.
func (s Automations) ListActive(ctx context.Context, trigger string) ([]pipeline.AutomationDef, error) {
	var rows []models.AutomationDefinition
	if err := s.DB.Where("active = ? AND trigger_type = ?", true, trigger).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]pipeline.AutomationDef, 0, len(rows))
	for _, row := range rows {
		if err := row.DecodeSteps(); err != nil {
			// passo corrompido não derruba as outras campanhas
			continue
		}
		def := pipeline.AutomationDef{ID: row.ID, Name: row.Name}
		for _, step := range row.Steps {
			def.Steps = append(def.Steps, pipeline.AutomationStep{
				Title:       step.Title,
				Channel:     step.Channel,
				WaitMinutes: step.WaitMinutes,
			})
		}
		out = append(out, def)
	}
	return out, nil
}
