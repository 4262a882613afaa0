package config

import (
	"encoding/json"
	"log"
	"os"

	"github.com/kelseyhightower/envconfig"
)

type Configuration struct {
	ApiPort     string `json:"api_port" envconfig:"API_PORT"`
	LogPath     string `json:"log_path" envconfig:"LOG_PATH"`
	Environment string `json:"environment" envconfig:"ENVIRONMENT"` // "development" ou "production"

	Database string `json:"database" envconfig:"DATABASE"` // "sqlite3" ou "postgres"
	DbHost   string `json:"db_host" envconfig:"DB_HOST"`
	DbPort   string `json:"db_port" envconfig:"DB_PORT"`
	DbUser   string `json:"db_user" envconfig:"DB_USER"`
	DbName   string `json:"db_name" envconfig:"DB_NAME"`
	DbPass   string `json:"db_pass" envconfig:"DB_PASS"`

	// efeitos colaterais do pipeline; desligado só atualiza rascunho/score
	CreateLeads bool `json:"create_leads" envconfig:"CREATE_LEADS"`
	CreateTasks bool `json:"create_tasks" envconfig:"CREATE_TASKS"`
	CreateDeals bool `json:"create_deals" envconfig:"CREATE_DEALS"`

	PollIntervalMs   int `json:"poll_interval_ms" envconfig:"POLL_INTERVAL_MS"`
	EventLogCapacity int `json:"event_log_capacity" envconfig:"EVENT_LOG_CAPACITY"`

	// quando preenchido, o poller drena o /api/events de outra instância em
	// vez do log local
	RelayURL    string `json:"relay_url" envconfig:"RELAY_URL"`
	RelayAPIKey string `json:"relay_api_key" envconfig:"RELAY_API_KEY"`
}

func Get(path string) Configuration {
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	var c Configuration
	if err := json.Unmarshal(b, &c); err != nil {
		log.Fatal(err)
	}

	// defaults (pra evitar nil/zero chato)
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/server.log"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.PollIntervalMs <= 0 {
		c.PollIntervalMs = 1500
	}
	if c.EventLogCapacity <= 0 {
		c.EventLogCapacity = 500
	}

	// variáveis IMOBOT_* sobrescrevem o arquivo (troca sem rebuild)
	if err := envconfig.Process("imobot", &c); err != nil {
		log.Fatal(err)
	}

	return c
}
