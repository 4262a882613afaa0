package models

import "time"

// Lead é o registro de contato do funil. Phone fica na forma canônica
// (só dígitos, sem DDI) porque o dedup compara por igualdade exata.
type Lead struct {
	ID           int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Name         string     `gorm:"default:''" json:"name"`
	Email        string     `gorm:"default:'';index" json:"email"`
	Phone        string     `gorm:"default:'';index" json:"phone"`
	Company      string     `gorm:"default:''" json:"company"`
	Intent       string     `gorm:"default:''" json:"intent"`
	PropertyType string     `gorm:"column:property_type;default:''" json:"property_type"`
	Bedrooms     *int       `json:"bedrooms"`
	Location     string     `gorm:"default:''" json:"location"`
	Budget       int64      `gorm:"default:0" json:"budget"`
	Score        int        `gorm:"default:0" json:"score"`
	Stage        string     `gorm:"not null;default:'new';index" json:"stage"`
	Channel      string     `gorm:"default:'';index" json:"channel"`
	Peer         string     `gorm:"default:''" json:"peer"`
	CreatedAt    *time.Time `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}
