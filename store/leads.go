package store

import (
	"context"
	"strings"

	"github.com/jinzhu/gorm"

	"imobot/models"
	"imobot/pipeline"
)

// Leads implementa o contrato de leads do pipeline em cima do gorm.
type Leads struct {
	DB *gorm.DB
}

func (s Leads) Upsert(ctx context.Context, id *int64, f pipeline.LeadFields) (int64, error) {
	if id == nil {
		lead := models.Lead{}
		applyLeadFields(&lead, f)
		if err := s.DB.Create(&lead).Error; err != nil {
			return 0, err
		}
		return lead.ID, nil
	}

	var lead models.Lead
	if err := s.DB.First(&lead, *id).Error; err != nil {
		return 0, err
	}
	applyLeadFields(&lead, f)
	if err := s.DB.Save(&lead).Error; err != nil {
		return 0, err
	}
	return lead.ID, nil
}

func (s Leads) FindByEmail(ctx context.Context, email string) (*pipeline.LeadRef, error) {
	var lead models.Lead
	err := s.DB.Where("LOWER(email) = ?", strings.ToLower(email)).First(&lead).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pipeline.LeadRef{ID: lead.ID, Name: lead.Name}, nil
}

func (s Leads) FindByPhone(ctx context.Context, digits string) (*pipeline.LeadRef, error) {
	var lead models.Lead
	err := s.DB.Where("phone = ?", digits).First(&lead).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pipeline.LeadRef{ID: lead.ID, Name: lead.Name}, nil
}

// applyLeadFields segue a mesma regra do rascunho: valor ausente nunca
// apaga o que o registro já tem (um lead casado por dedup pode saber mais
// que a sessão atual).
func applyLeadFields(lead *models.Lead, f pipeline.LeadFields) {
	if f.Name != "" {
		lead.Name = f.Name
	}
	if f.Email != "" {
		lead.Email = f.Email
	}
	if f.Phone != "" {
		lead.Phone = f.Phone
	}
	if f.Company != "" {
		lead.Company = f.Company
	}
	if f.Intent != "" {
		lead.Intent = f.Intent
	}
	if f.PropertyType != "" {
		lead.PropertyType = f.PropertyType
	}
	if f.Bedrooms != nil {
		lead.Bedrooms = f.Bedrooms
	}
	if f.Location != "" {
		lead.Location = f.Location
	}
	if f.Budget > 0 {
		lead.Budget = f.Budget
	}
	lead.Score = f.Score
	if f.Stage != "" {
		lead.Stage = f.Stage
	}
	if f.Channel != "" {
		lead.Channel = f.Channel
	}
	if f.Peer != "" {
		lead.Peer = f.Peer
	}
}
