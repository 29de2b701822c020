// Package config loads traktor2rekordbox settings from YAML
package config

import (
	"log/slog"
	"os"

	"github.com/james-see/traktor2rekordbox/pkg/converter"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// slog level: -4 debug, 0 info, 4 warn, 8 error
	LogLevel int `yaml:"log_level"`

	Server     ServerConfig     `yaml:"server"`
	Conversion ConversionConfig `yaml:"conversion"`
	Batch      BatchConfig      `yaml:"batch"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type ConversionConfig struct {
	// Name of the single playlist written to NML output
	PlaylistName string `yaml:"playlist_name"`

	// PROGRAM attribute of the NML HEAD
	Program string `yaml:"program"`

	InferCueTypeFromColor bool `yaml:"infer_cue_type_from_color"`
}

type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// Default returns a config with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Conversion.PlaylistName == "" {
		c.Conversion.PlaylistName = converter.DefaultPlaylistName
	}
	if c.Conversion.Program == "" {
		c.Conversion.Program = converter.DefaultProgram
	}
	if c.Batch.Workers < 1 {
		c.Batch.Workers = 4
	}
}

// ConverterOptions builds converter options from the conversion section
func (c *Config) ConverterOptions(logger *slog.Logger) converter.Options {
	return converter.Options{
		PlaylistName:          c.Conversion.PlaylistName,
		Program:               c.Conversion.Program,
		InferCueTypeFromColor: c.Conversion.InferCueTypeFromColor,
		Logger:                logger,
	}
}

// Level returns the configured slog level
func (c *Config) Level() slog.Level {
	return slog.Level(c.LogLevel)
}
