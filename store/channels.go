package store

import (
	"context"
	"strings"

	"github.com/jinzhu/gorm"

	"imobot/gateway"
	"imobot/models"
	"imobot/pipeline"
	"imobot/tools"
)

type Channels struct {
	DB *gorm.DB
}

// Get devolve a configuração do canal; nil,nil quando o canal não existe.
func (s Channels) Get(channel string) (*models.ChannelConfig, error) {
	var cfg models.ChannelConfig
	err := s.DB.Where("channel = ?", channel).First(&cfg).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s Channels) All() ([]models.ChannelConfig, error) {
	var rows []models.ChannelConfig
	err := s.DB.Find(&rows).Error
	return rows, err
}

// Upsert cria ou atualiza a linha do canal (chave única por channel).
func (s Channels) Upsert(cfg *models.ChannelConfig) error {
	existing, err := s.Get(cfg.Channel)
	if err != nil {
		return err
	}
	if existing == nil {
		return s.DB.Create(cfg).Error
	}
	cfg.ID = existing.ID
	cfg.CreatedAt = existing.CreatedAt
	return s.DB.Save(cfg).Error
}

func (s Channels) Delete(channel string) error {
	return s.DB.Where("channel = ?", channel).Delete(&models.ChannelConfig{}).Error
}

func (s Channels) UpdateStatus(channel, status string) error {
	return s.DB.Model(&models.ChannelConfig{}).
		Where("channel = ?", channel).
		Update("status", status).Error
}

var _ pipeline.ChannelStatus = ChannelGateway{}
var _ pipeline.ReplySender = ChannelGateway{}

// ChannelGateway liga o pipeline ao gateway do canal: informa o estado de
// conexão (cacheado na linha do canal) e entrega as respostas automáticas.
type ChannelGateway struct {
	Channels Channels
	Client   gateway.Client
}

func (g ChannelGateway) Connected(ctx context.Context, channel string) (bool, error) {
	cfg, err := g.Channels.Get(channel)
	if err != nil {
		return false, err
	}
	if cfg == nil {
		return false, nil
	}
	return cfg.Status == models.CHANNEL_STATUS_CONNECTED, nil
}

func (g ChannelGateway) SendText(ctx context.Context, channel, to, text string) error {
	cfg, err := g.Channels.Get(channel)
	if err != nil {
		return err
	}
	if cfg == nil {
		return gateway.ErrInvalidConfig
	}

	// peer pode vir como jid (5511...@s.whatsapp.net); fica só o número
	number := to
	if i := strings.Index(number, "@"); i >= 0 {
		number = number[:i]
	}
	normalized, err := tools.NormalizeGatewayTo(number)
	if err != nil {
		return err
	}

	_, err = g.Client.SendText(ctx, gateway.Config{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey}, cfg.Instance, normalized, text)
	return err
}
