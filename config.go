package main

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the service configuration, decoded from config.yaml.
type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Http struct {
		Port int `yaml:"port"`
	} `yaml:"http"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Learning struct {
		Seed        int64   `yaml:"seed"`
		Oracle      string  `yaml:"oracle"`
		OracleWords int     `yaml:"oracle_words"`
		OracleSteps int     `yaml:"oracle_steps"`
		MaxWordLen  int     `yaml:"max_word_len"`
		ResetProb   float64 `yaml:"reset_prob"`
		CacheSize   int     `yaml:"cache_size"`
		Reference   string  `yaml:"reference"`
		OutputDir   string  `yaml:"output_dir"`
	} `yaml:"learning"`
	Models struct {
		Dir   string `yaml:"dir"`
		Watch bool   `yaml:"watch"`
	} `yaml:"models"`
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
