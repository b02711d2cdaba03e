package common

import (
	"log"

	"pbs/src/lib"

	"github.com/tidwall/gjson"
)

// NotificationConsumers drains the domain-event topics so an external
// notifier can be attached without the core waiting on delivery.
func NotificationConsumers() {
	topics := []string{
		"bookings-created",
		"bookings-confirmed",
		"shifts-assigned",
		"payments-resolved",
		"shops-approved",
	}
	lib.KafkaConsume("pbs_notifications", topics, func(topic string, payload string) {
		if !gjson.Valid(payload) {
			log.Printf("[%s]: Received invalid json body. Aborting", topic)
			return
		}
		id := gjson.Get(payload, "id")
		log.Printf("[%s] event received: %s (id=%d)", topic, payload, id.Uint())
	})
}
