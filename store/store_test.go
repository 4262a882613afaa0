package store

import (
	"context"
	"testing"

	"imobot/models"
	"imobot/pipeline"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.LogMode(false)
	require.NoError(t, db.AutoMigrate(
		&models.Lead{},
		&models.Deal{},
		&models.Task{},
		&models.AutomationDefinition{},
		&models.ConversationMessage{},
		&models.ChannelConfig{},
	).Error)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLeadsUpsertCreateAndUpdate(t *testing.T) {
	db := newTestDB(t)
	leads := Leads{DB: db}
	ctx := context.Background()

	id, err := leads.Upsert(ctx, nil, pipeline.LeadFields{
		Name:    "Ana",
		Email:   "ana@example.com",
		Intent:  "buy",
		Budget:  500000,
		Score:   75,
		Stage:   "qualified",
		Channel: "vendas",
		Peer:    "5511999990000",
	})
	require.NoError(t, err)
	assert.True(t, id > 0)

	// update preserva o id e troca os campos
	bedrooms := 3
	id2, err := leads.Upsert(ctx, &id, pipeline.LeadFields{
		Name:     "Ana Souza",
		Email:    "ana@example.com",
		Phone:    "11999990000",
		Bedrooms: &bedrooms,
		Budget:   550000,
		Score:    90,
		Stage:    "qualified",
	})
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	var row models.Lead
	require.NoError(t, db.First(&row, id).Error)
	assert.Equal(t, "Ana Souza", row.Name)
	assert.Equal(t, "11999990000", row.Phone)
	assert.Equal(t, int64(550000), row.Budget)
	if assert.NotNil(t, row.Bedrooms) {
		assert.Equal(t, 3, *row.Bedrooms)
	}
	// campo ausente no update não apaga o que o registro já tinha
	assert.Equal(t, "vendas", row.Channel)
	assert.Equal(t, "ana@example.com", row.Email)
}

func TestLeadsUpsertMissingIDFails(t *testing.T) {
	db := newTestDB(t)
	missing := int64(9999)
	_, err := (Leads{DB: db}).Upsert(context.Background(), &missing, pipeline.LeadFields{Name: "X"})
	assert.Error(t, err)
}

func TestLeadsFindByEmailCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	leads := Leads{DB: db}
	ctx := context.Background()

	id, err := leads.Upsert(ctx, nil, pipeline.LeadFields{Name: "Bruno", Email: "bruno@imob.com"})
	require.NoError(t, err)

	ref, err := leads.FindByEmail(ctx, "BRUNO@imob.com")
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, id, ref.ID)
	assert.Equal(t, "Bruno", ref.Name)

	// sem registro: nil, nil (ausência não é erro)
	ref, err = leads.FindByEmail(ctx, "ninguem@imob.com")
	require.NoError(t, err)
	assert.Nil(t, ref)
}

func TestLeadsFindByPhone(t *testing.T) {
	db := newTestDB(t)
	leads := Leads{DB: db}
	ctx := context.Background()

	id, err := leads.Upsert(ctx, nil, pipeline.LeadFields{Name: "Carla", Phone: "11988887777"})
	require.NoError(t, err)

	ref, err := leads.FindByPhone(ctx, "11988887777")
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, id, ref.ID)

	ref, err = leads.FindByPhone(ctx, "11900000000")
	require.NoError(t, err)
	assert.Nil(t, ref)
}

func TestTasksAndDealsCreate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	taskID, err := (Tasks{DB: db}).Create(ctx, pipeline.TaskFields{
		LeadID:   7,
		Title:    "Fazer primeiro contato com Ana",
		DueLabel: "hoje",
		Channel:  "vendas",
		Origin:   pipeline.ORIGIN_FOLLOWUP,
	})
	require.NoError(t, err)
	assert.True(t, taskID > 0)

	var task models.Task
	require.NoError(t, db.First(&task, taskID).Error)
	assert.Equal(t, models.TASK_STATUS_OPEN, task.Status)

	dealID, err := (Deals{DB: db}).Create(ctx, pipeline.DealFields{
		LeadID:  7,
		Title:   "Compra de apartamento em Pinheiros",
		Value:   500000,
		Channel: "vendas",
	})
	require.NoError(t, err)

	var deal models.Deal
	require.NoError(t, db.First(&deal, dealID).Error)
	assert.Equal(t, models.DEAL_STATUS_OPEN, deal.Status)
	assert.Equal(t, int64(500000), deal.Value)
}

func TestAutomationsListActive(t *testing.T) {
	db := newTestDB(t)

	active := models.AutomationDefinition{
		Name:    "Boas-vindas",
		Trigger: models.AUTOMATION_TRIGGER_NEW_LEAD,
		Active:  true,
		Steps: []models.AutomationStep{
			{Title: "Enviar apresentação", Channel: "vendas", WaitMinutes: 0},
			{Title: "Ligar para o lead", Channel: "vendas", WaitMinutes: 120},
		},
	}
	require.NoError(t, active.EncodeSteps())
	require.NoError(t, db.Create(&active).Error)

	inactive := models.AutomationDefinition{Name: "Pausada", Trigger: models.AUTOMATION_TRIGGER_NEW_LEAD, Active: false}
	require.NoError(t, inactive.EncodeSteps())
	require.NoError(t, db.Create(&inactive).Error)

	otherTrigger := models.AutomationDefinition{Name: "Outro gatilho", Trigger: "deal_won", Active: true}
	require.NoError(t, otherTrigger.EncodeSteps())
	require.NoError(t, db.Create(&otherTrigger).Error)

	defs, err := (Automations{DB: db}).ListActive(context.Background(), models.AUTOMATION_TRIGGER_NEW_LEAD)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "Boas-vindas", defs[0].Name)
	require.Len(t, defs[0].Steps, 2)
	assert.Equal(t, 120, defs[0].Steps[1].WaitMinutes)
}

func TestAutomationsSkipCorruptedSteps(t *testing.T) {
	db := newTestDB(t)

	bad := models.AutomationDefinition{
		Name:      "Quebrada",
		Trigger:   models.AUTOMATION_TRIGGER_NEW_LEAD,
		Active:    true,
		StepsJSON: "{not json",
	}
	require.NoError(t, db.Create(&bad).Error)

	good := models.AutomationDefinition{Name: "Sã", Trigger: models.AUTOMATION_TRIGGER_NEW_LEAD, Active: true}
	require.NoError(t, good.EncodeSteps())
	require.NoError(t, db.Create(&good).Error)

	defs, err := (Automations{DB: db}).ListActive(context.Background(), models.AUTOMATION_TRIGGER_NEW_LEAD)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "Sã", defs[0].Name)
}

func TestConversationsAppendAndHistory(t *testing.T) {
	db := newTestDB(t)
	conv := Conversations{DB: db}
	ctx := context.Background()

	err := conv.Append(ctx, "vendas", "5511999990000", []pipeline.ConversationEntry{
		{EntryID: "e1", Role: pipeline.ENTRY_ROLE_USER, Text: "Oi, quero comprar"},
		{EntryID: "e2", Role: pipeline.ENTRY_ROLE_AGENT, Text: "Olá!"},
		{EntryID: "e3", Role: pipeline.ENTRY_ROLE_AUDIT, Kind: pipeline.AUDIT_LEAD_CREATED, Text: "Lead #1 criado"},
	})
	require.NoError(t, err)

	// lote vazio é no-op
	require.NoError(t, conv.Append(ctx, "vendas", "5511999990000", nil))

	rows, err := conv.History("vendas", "5511999990000", 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, pipeline.ENTRY_ROLE_USER, rows[0].Role)
	assert.Equal(t, pipeline.AUDIT_LEAD_CREATED, rows[2].Kind)

	// outra conversa não aparece
	rows, err = conv.History("vendas", "5511888880000", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestChannelsUpsertGetDelete(t *testing.T) {
	db := newTestDB(t)
	channels := Channels{DB: db}

	cfg, err := channels.Get("vendas")
	require.NoError(t, err)
	assert.Nil(t, cfg)

	require.NoError(t, channels.Upsert(&models.ChannelConfig{
		Channel:       "vendas",
		BaseURL:       "http://gateway.local",
		APIKey:        "k1",
		Instance:      "vendas",
		WebhookSecret: "s1",
		Status:        models.CHANNEL_STATUS_DISCONNECTED,
	}))

	cfg, err = channels.Get("vendas")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	firstID := cfg.ID

	// upsert de novo troca credenciais mantendo a linha
	require.NoError(t, channels.Upsert(&models.ChannelConfig{
		Channel:       "vendas",
		BaseURL:       "http://gateway.local",
		APIKey:        "k2",
		Instance:      "vendas",
		WebhookSecret: "s1",
		Status:        models.CHANNEL_STATUS_DISCONNECTED,
	}))
	cfg, err = channels.Get("vendas")
	require.NoError(t, err)
	assert.Equal(t, firstID, cfg.ID)
	assert.Equal(t, "k2", cfg.APIKey)

	require.NoError(t, channels.UpdateStatus("vendas", models.CHANNEL_STATUS_CONNECTED))
	cfg, _ = channels.Get("vendas")
	assert.Equal(t, models.CHANNEL_STATUS_CONNECTED, cfg.Status)

	rows, err := channels.All()
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	require.NoError(t, channels.Delete("vendas"))
	cfg, err = channels.Get("vendas")
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestChannelGatewayConnectedUsesCachedStatus(t *testing.T) {
	db := newTestDB(t)
	channels := Channels{DB: db}

	require.NoError(t, channels.Upsert(&models.ChannelConfig{
		Channel:  "vendas",
		BaseURL:  "http://gateway.local",
		APIKey:   "k",
		Instance: "vendas",
		Status:   models.CHANNEL_STATUS_CONNECTED,
	}))

	gw := ChannelGateway{Channels: channels}
	ok, err := gw.Connected(context.Background(), "vendas")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gw.Connected(context.Background(), "suporte")
	require.NoError(t, err)
	assert.False(t, ok)
}
