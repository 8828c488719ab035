package mq

import (
	"context"
	"encoding/json"
	"log"

	"tripmate/models"
	"tripmate/rdx"
)

const eventChannel = "domain-events"

// Notify is a placeholder for pushing user-facing notifications (a request
// arrived, a request was answered). Delivery is out of scope here; the log
// line keeps the event flow observable.
func Notify(eventName string, content models.Index) error {
	log.Printf("[Notify] %s %+v", eventName, content)
	return nil
}

// Emit publishes a domain event to Redis instead of handling it inline.
// Callers fire it from a goroutine after the response is written, so the
// publish deliberately does not inherit the request context.
func Emit(eventName string, content models.Index) {
	data, err := json.Marshal(content)
	if err != nil {
		log.Printf("[Emit] failed to marshal %s: %v", eventName, err)
		return
	}
	if err := rdx.Conn.Publish(context.Background(), eventChannel, data).Err(); err != nil {
		log.Printf("[Emit] failed to publish %s: %v", eventName, err)
	}
}

// StartEventWorker consumes the domain event stream. Subscribers are
// best-effort; a dropped event never affects the request that emitted it.
func StartEventWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, eventChannel)
	ch := sub.Channel()

	log.Println("[EventWorker] listening for domain events")

	for msg := range ch {
		var event models.Index
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[EventWorker] bad payload: %v", err)
			continue
		}
		log.Printf("[EventWorker] %s %s %s", event.Method, event.EntityType, event.EntityId)
	}
}
