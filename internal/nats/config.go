package nats

import (
	"log"

	"github.com/nats-io/nats.go"
)

// Route binds a durable consumer to a subject.
type Route struct {
	Subject string
	Durable string
	Handler nats.MsgHandler
}

// Subscriber creates durable consumers; services.SubscribeEvent in production.
type Subscriber func(subject, durable string, handler nats.MsgHandler) (*nats.Subscription, error)

// SubscribeAll loads all routes once during startup.
func SubscribeAll(subscribe Subscriber, routes []Route) ([]*nats.Subscription, error) {
	subs := make([]*nats.Subscription, 0, len(routes))
	for _, route := range routes {
		sub, err := subscribe(route.Subject, route.Durable, route.Handler)
		if err != nil {
			for _, s := range subs {
				_ = s.Unsubscribe()
			}
			return nil, err
		}
		log.Printf("[NATS] Subscribed to: %s", route.Subject)
		subs = append(subs, sub)
	}
	return subs, nil
}
