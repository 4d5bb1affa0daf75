// Package config provides configuration management for the bot.
// It loads environment variables and makes them available throughout the application.
package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken   string
	DevGuildID string

	// MongoDB
	MongoDBURL string
	DBName     string

	// Warnings engine
	AnnouncerID     string // user id of the third-party moderation bot whose announcements we parse
	WarnedRoleName  string
	WarningLifetime int    // hours a warning stays active
	SweepInterval   int    // seconds between full reconciliation sweeps
	EscalationTable string // "count=duration" pairs, e.g. "2=4h,3=24h"
	WarnedColorR    int
	WarnedColorG    int
	WarnedColorB    int
	JSONStorePath   string // fallback store used when MongoDB is not configured
	UseJSONStore    bool

	// MQTT event feed
	MQTTHost     string
	MQTTPort     string
	MQTTUser     string
	MQTTPassword string
	MQTTEnabled  bool

	// Web Server
	Port string

	// Environment
	Environment string

	// Webhooks
	ErrorWebhook string
	LogsWebhook  string
}

var (
	Version   = "Dev-Local"
	BuildTime = "Today"
)

// cfg holds the global configuration instance
var (
	cfg     *Config
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgOnce = sync.Once{}
}

// loadConfig performs the actual configuration loading
func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	cfg = &Config{
		// Discord
		BotToken:   getEnv("botToken", ""),
		DevGuildID: getEnv("devGuildId", ""),

		// MongoDB
		MongoDBURL: getEnv("mongodbUrl", "mongodb://localhost:27017"),
		DBName:     getEnv("dbName", "Referee"),

		// Warnings engine
		AnnouncerID:     getEnv("announcerId", ""),
		WarnedRoleName:  getEnv("warnedRoleName", "Warned"),
		WarningLifetime: getEnvInt("warningLifetime", 24),
		SweepInterval:   getEnvInt("sweepInterval", 120),
		EscalationTable: getEnv("escalationTable", "2=4h,3=24h"),
		WarnedColorR:    getEnvInt("warnedColorR", 120),
		WarnedColorG:    getEnvInt("warnedColorG", 100),
		WarnedColorB:    getEnvInt("warnedColorB", 100),
		JSONStorePath:   getEnv("jsonStorePath", "warnings.json"),
		UseJSONStore:    getEnvBool("useJsonStore", false),

		// MQTT
		MQTTHost:     getEnv("MQTT_Host", "localhost"),
		MQTTPort:     getEnv("MQTT_Port", "1883"),
		MQTTUser:     getEnv("MQTT_User", ""),
		MQTTPassword: getEnv("MQTT_Password", ""),
		MQTTEnabled:  getEnvBool("MQTT_Enabled", false),

		// Web Server
		Port: getEnv("PORT", "3000"),

		// Environment
		Environment: getEnv("enviroment", "dev"),

		// Webhooks
		ErrorWebhook: getEnv("errorWebhook", ""),
		LogsWebhook:  getEnv("logsWebhook", ""),
	}
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, nil
}

// Get returns the current configuration
func Get() *Config {
	// Use sync.Once to ensure thread-safe initialization if Load wasn't called
	cfgOnce.Do(loadConfig)
	return cfg
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}
