package mqtt

import (
	"fmt"

	"github.com/sumezulike/Referee/pkg/logger"
)

// EventPublisher fans warning lifecycle events out to the broker under
// referee/events/<event>. Publishing is best-effort; a dead broker never
// blocks the warning pipeline.
type EventPublisher struct {
	mc *MqttCommunicator
}

// NewEventPublisher creates an EventPublisher over the given communicator
func NewEventPublisher(mc *MqttCommunicator) *EventPublisher {
	return &EventPublisher{mc: mc}
}

// Publish sends an event to the broker
func (p *EventPublisher) Publish(event string, payload interface{}) error {
	if p.mc == nil || !p.mc.IsConnected() {
		logger.Debug(fmt.Sprintf("Dropping event %q: broker not connected", event), "MQTT")
		return nil
	}
	return p.mc.Publish("referee/events/"+event, payload)
}
