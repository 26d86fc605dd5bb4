package main

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

// InitializeLogger configures the global logger from config.
func InitializeLogger(config *Config) {
	level, err := log.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if config.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}
}
