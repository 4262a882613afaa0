package models

import (
	"encoding/json"
	"time"
)

const AUTOMATION_TRIGGER_NEW_LEAD = "new_lead"

// AutomationStep é um passo de campanha: vira uma task com o canal e o
// rótulo de espera configurados.
type AutomationStep struct {
	Title       string `json:"title"`
	Channel     string `json:"channel"`
	WaitMinutes int    `json:"wait_minutes"`
}

// AutomationDefinition descreve uma campanha disparável. Os passos ficam
// serializados em StepsJSON; Steps é o espelho decodificado para a API.
type AutomationDefinition struct {
	ID        int64            `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Name      string           `gorm:"not null" json:"name"`
	Trigger   string           `gorm:"column:trigger_type;not null;default:'new_lead';index" json:"trigger"`
	Active    bool             `gorm:"not null;default:false;index" json:"active"`
	StepsJSON string           `gorm:"column:steps_json;type:json" json:"-"`
	Steps     []AutomationStep `gorm:"-" json:"steps"`
	CreatedAt *time.Time       `json:"created_at"`
	UpdatedAt *time.Time       `json:"updated_at"`
}

// DecodeSteps preenche Steps a partir da coluna serializada.
func (a *AutomationDefinition) DecodeSteps() error {
	if a.StepsJSON == "" {
		a.Steps = nil
		return nil
	}
	return json.Unmarshal([]byte(a.StepsJSON), &a.Steps)
}

// EncodeSteps serializa Steps para a coluna antes de salvar.
func (a *AutomationDefinition) EncodeSteps() error {
	if a.Steps == nil {
		a.StepsJSON = "[]"
		return nil
	}
	raw, err := json.Marshal(a.Steps)
	if err != nil {
		return err
	}
	a.StepsJSON = string(raw)
	return nil
}
