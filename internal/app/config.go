package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	Auth struct {
		RedisURL        string `toml:"redis_url"`
		TokenHeader     string `toml:"token_header"`
		SessionTTLHours int    `toml:"session_ttl_hours"`
	} `toml:"auth"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Roster struct {
		DefaultPassword string `toml:"default_password"`
	} `toml:"roster"`

	Scoring struct {
		DefaultMaxScore     float64 `toml:"default_max_score"`
		AwardThreshold      float64 `toml:"award_threshold"`
		OfficialLabelMarker string  `toml:"official_label_marker"`
		TopRankingSize      int     `toml:"top_ranking_size"`
	} `toml:"scoring"`

	Dashboard struct {
		NationalExamDate string `toml:"national_exam_date"`
	} `toml:"dashboard"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}

	if config.Auth.TokenHeader == "" {
		config.Auth.TokenHeader = "Authorization"
	}
	if config.Auth.SessionTTLHours == 0 {
		config.Auth.SessionTTLHours = 24
	}
	if config.Roster.DefaultPassword == "" {
		config.Roster.DefaultPassword = "123456"
	}
	if config.Scoring.DefaultMaxScore == 0 {
		config.Scoring.DefaultMaxScore = 10
	}
	if config.Scoring.AwardThreshold == 0 {
		config.Scoring.AwardThreshold = 8.0
	}
	if config.Scoring.TopRankingSize == 0 {
		config.Scoring.TopRankingSize = 10
	}

	return &config, nil
}
