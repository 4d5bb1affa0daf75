package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/sumezulike/Referee/pkg/models"
)

// WarningSource answers warning lookups for broker clients
type WarningSource interface {
	ActiveWarnings(ctx context.Context) (map[string][]*models.Warning, error)
	Warnings(ctx context.Context, userID string) (all, active []*models.Warning, err error)
}

// queryTimeout caps how long a single broker request may hold the store
const queryTimeout = 10 * time.Second

// RegisterWarningQueries exposes read-only warning lookups over the broker,
// mirroring the HTTP API: warnings/active lists all users with active
// warnings, warnings/user returns one user's history.
func RegisterWarningQueries(mc *MqttCommunicator, src WarningSource) {
	mc.On("warnings/active", func(_ map[string]interface{}) (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		return activeWarningsResponse(ctx, src)
	})

	mc.On("warnings/user", func(payload map[string]interface{}) (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		return userWarningsResponse(ctx, src, payload)
	})
}

// activeWarningsResponse builds the response for a warnings/active request
func activeWarningsResponse(ctx context.Context, src WarningSource) (interface{}, error) {
	active, err := src.ActiveWarnings(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active warnings: %w", err)
	}

	return map[string]interface{}{
		"users":    len(active),
		"warnings": active,
	}, nil
}

// userWarningsResponse builds the response for a warnings/user request
func userWarningsResponse(ctx context.Context, src WarningSource, payload map[string]interface{}) (interface{}, error) {
	userID, _ := payload["userId"].(string)
	if userID == "" {
		return nil, fmt.Errorf("missing userId")
	}

	all, active, err := src.Warnings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("looking up warnings of %s: %w", userID, err)
	}

	return map[string]interface{}{
		"userId": userID,
		"total":  len(all),
		"active": len(active),
		"history": map[string]interface{}{
			"all":    all,
			"active": active,
		},
	}, nil
}
