package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// TaskConfig drives the runner: which symbols to report on and
// whether to keep streaming price updates after the snapshot.
type TaskConfig struct {
	Symbols []string `yaml:"symbols"`
	Watch   bool     `yaml:"watch"`
}

func LoadTaskConfig(path string) (*TaskConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config TaskConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if len(config.Symbols) == 0 {
		config.Symbols = []string{"BTC", "ETH"}
	}
	return &config, nil
}
