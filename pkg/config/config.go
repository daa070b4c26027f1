package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Reqs struct {
		CreateSurveyRequestType   string `yaml:"create_survey_req_type"`
		AddQuestionRequestType    string `yaml:"add_question_req_type"`
		RemoveQuestionRequestType string `yaml:"remove_question_req_type"`
		ReorderRequestType        string `yaml:"reorder_req_type"`
		TransitionRequestType     string `yaml:"transition_req_type"`
		DeleteSurveyRequestType   string `yaml:"delete_survey_req_type"`
		SubmitResponseRequestType string `yaml:"submit_response_req_type"`
	} `yaml:"reqs"`
	Urls struct {
		Redis    string `yaml:"redis" env:"REDIS_URL"`
		Rabbitmq string `yaml:"rabbitmq" env:"RABBITMQ_URL"`
	} `yaml:"urls"`
	Exchange struct {
		Request string `yaml:"request"`
		Output  string `yaml:"output"`
	} `yaml:"exchange"`
	Queue struct {
		Request string `yaml:"request"`
		Output  string `yaml:"output"`
	} `yaml:"queue"`
	Database struct {
		Driver string `yaml:"driver" env:"DB_DRIVER"` // sqlite or mysql
		DSN    string `yaml:"dsn" env:"DB_DSN"`
	} `yaml:"database"`
	HealthPort         string `yaml:"health_port" env:"HEALTH_PORT"`
	CashTimeoutSeconds uint   `yaml:"cash_timeout_seconds"`
}

// Init reads the YAML config file, then lets environment variables override
// the connection settings.
func Init(path string) (*Config, error) {
	var cfg Config

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error open file: %v", err)
	}

	defer file.Close()

	if err = yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode error: %v", err)
	}

	if err = env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("env override error: %v", err)
	}

	if cfg.HealthPort == "" {
		cfg.HealthPort = ":8081"
	}
	if cfg.CashTimeoutSeconds == 0 {
		cfg.CashTimeoutSeconds = 5
	}

	return &cfg, nil
}
