// Package web provides API routes for the web server.
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sumezulike/Referee/pkg/database"
	"github.com/sumezulike/Referee/pkg/discord"
	"github.com/sumezulike/Referee/pkg/warnings"
)

// engine backs the warning lookup routes
var engine *warnings.Engine

// SetupAPIRoutes sets up the API routes
func SetupAPIRoutes(s *Server, eng *warnings.Engine) {
	engine = eng

	api := s.Group("/api")
	{
		api.GET("/status", statusHandler)
		api.GET("/health", healthHandler)
		api.GET("/bot", botInfoHandler)
		api.GET("/warnings", warningsHandler)
		api.GET("/warnings/:user", userWarningsHandler)
	}
}

// statusHandler returns the bot and database status
func statusHandler(c *gin.Context) {
	client := discord.Get()

	dbStatus := "Not configured"
	dbOnline := false
	if db := database.Get(); db != nil {
		dbStatus, dbOnline = db.GetStatus()
	}

	botOnline := false
	if client != nil {
		botOnline = client.IsReady()
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"database": gin.H{
			"status":   dbStatus,
			"isOnline": dbOnline,
		},
		"bot": gin.H{
			"isOnline": botOnline,
		},
	})
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Referee is running",
	})
}

// botInfoHandler returns information about the bot
func botInfoHandler(c *gin.Context) {
	client := discord.Get()

	if client == nil || !client.IsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Bot Offline",
			"message": "The bot is not available right now.",
		})
		return
	}

	user := client.Session.State.User

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"avatar":   user.Avatar,
		"guilds":   client.GuildCount(),
		"isReady":  client.IsReady(),
	})
}

// warningsHandler returns all users with active warnings
func warningsHandler(c *gin.Context) {
	active, err := engine.ActiveWarnings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list active warnings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":    len(active),
		"warnings": active,
	})
}

// userWarningsHandler returns the warning history of a single user
func userWarningsHandler(c *gin.Context) {
	userID := c.Param("user")

	all, active, err := engine.Warnings(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to look up warnings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId": userID,
		"total":  len(all),
		"active": len(active),
		"history": gin.H{
			"all":    all,
			"active": active,
		},
	})
}
