package logger

import (
	"strings"

	"github.com/rs/zerolog"
)

type contextKey string

const RequestIdKey contextKey = "request_id"

type LoggerConfigJson struct {
	LogLevel string `json:"log_level"`
}

type LoggerConfig struct {
	LogLevel zerolog.Level
}

func (lcj LoggerConfigJson) ConvertToDomain() LoggerConfig {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(lcj.LogLevel)))
	if err != nil || lcj.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	return LoggerConfig{
		LogLevel: level,
	}
}
