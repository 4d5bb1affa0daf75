// Package main is the entry point for the Referee application.
// It initializes all systems and starts the Discord bot.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sumezulike/Referee/internal/commands"
	"github.com/sumezulike/Referee/internal/events"
	"github.com/sumezulike/Referee/pkg/config"
	"github.com/sumezulike/Referee/pkg/database"
	"github.com/sumezulike/Referee/pkg/discord"
	"github.com/sumezulike/Referee/pkg/errors"
	"github.com/sumezulike/Referee/pkg/logger"
	"github.com/sumezulike/Referee/pkg/mqtt"
	"github.com/sumezulike/Referee/pkg/warnings"
	"github.com/sumezulike/Referee/pkg/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Starting Referee...", "Main")
	logger.Info(fmt.Sprintf("Working directory: %s", getCurrentDir()), "Main")

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			if err := discordClient.Stop(); err != nil {
				return
			}
		}
	})

	// Initialize the warning store. MongoDB is the default; the JSON file
	// store serves deployments without a database.
	var store warnings.Store
	if cfg.UseJSONStore {
		jsonStore, err := warnings.OpenJSONStore(cfg.JSONStorePath)
		if err != nil {
			logger.Critical(fmt.Sprintf("Error opening warning store %s: %v", cfg.JSONStorePath, err), "Main")
			os.Exit(1)
		}
		store = jsonStore
		logger.Success(fmt.Sprintf("Using JSON warning store at %s", cfg.JSONStorePath), "Main")
	} else {
		db, err := database.Init(cfg.MongoDBURL, cfg.DBName)
		if err != nil {
			logger.Error(fmt.Sprintf("Error connecting to database: %v", err), "Main")
			// Continue without database - it will attempt to reconnect
		}
		defer func() {
			if db != nil {
				if err := db.Disconnect(); err != nil {
					return
				}
			}
		}()
		store = warnings.NewMongoStore(db)
	}

	// Initialize the MQTT event feed
	var feed warnings.EventFeed
	var mqttClient *mqtt.MqttCommunicator
	if cfg.MQTTEnabled {
		mqttClientID := "referee"
		if !cfg.IsProd() {
			mqttClientID = "referee_canary"
		}

		mqttClient = mqtt.Init(
			cfg.MQTTHost,
			cfg.MQTTPort,
			cfg.MQTTUser,
			cfg.MQTTPassword,
			mqttClientID,
		)
		defer mqttClient.Destroy()

		feed = mqtt.NewEventPublisher(mqttClient)
	}

	// Initialize Discord client
	discordClient, err = discord.Init(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	// Assemble the warning engine around the Discord bridge
	policy, err := warnings.ParsePolicy(cfg.EscalationTable)
	if err != nil {
		logger.Critical(fmt.Sprintf("Invalid escalation table %q: %v", cfg.EscalationTable, err), "Main")
		os.Exit(1)
	}

	lifetime := time.Duration(cfg.WarningLifetime) * time.Hour
	bridge := discord.NewBridge(discordClient)
	classifier := warnings.NewClassifier(cfg.AnnouncerID, lifetime, bridge)
	reconciler := warnings.NewReconciler(
		bridge,
		cfg.WarnedRoleName,
		warnings.RGB(cfg.WarnedColorR, cfg.WarnedColorG, cfg.WarnedColorB),
	)
	reconciler.SetFeed(feed)
	scheduler := warnings.NewScheduler(
		store,
		reconciler,
		bridge,
		time.Duration(cfg.SweepInterval)*time.Second,
	)
	engine := warnings.NewEngine(
		store,
		classifier,
		policy,
		scheduler,
		discord.NewChannelNotifier(discordClient),
		feed,
		lifetime,
	)

	// Answer warning lookups arriving over the broker
	if mqttClient != nil {
		mqtt.RegisterWarningQueries(mqttClient, engine)
	}

	// Initialize web server
	webServer := web.Init()
	web.SetupAPIRoutes(webServer, engine)
	webServer.StartAsync(cfg.Port)

	// Register commands and events
	commands.RegisterAll(discordClient, engine)
	events.RegisterAll(discordClient, engine)

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}
	defer func(discordClient *discord.ExtendedClient) {
		if err := discordClient.Stop(); err != nil {
			return
		}
	}(discordClient)

	// Start the reconciliation sweep once the gateway connection is up
	scheduler.Start()
	defer scheduler.Stop()

	logger.Success("Referee started!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Shutting down Referee...", "Main")
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
