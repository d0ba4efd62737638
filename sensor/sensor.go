// Package sensor implements cold, subscribable async mutation streams: a
// source of state -> state' functions the runtime applies under its own
// state lock.
package sensor

import "github.com/google/uuid"

// MutateFunc transforms a state snapshot into its successor. Sensors close
// over their own path/lens so the mutation only ever touches the subtree
// they own.
type MutateFunc func(state any) (any, error)

// Subscription detaches a subscriber from a Sensor. Unsubscribe must allow
// the underlying source to terminate and must be safe to call more than
// once. ID identifies this particular subscription, for correlating trace
// events across a sensor's lifetime.
type Subscription interface {
	Unsubscribe()
	ID() string
}

// Sensor is a factory producing a subscribable stream of state mutations.
// The underlying source (a goroutine polling a ticker, an HTTP endpoint,
// …) is not started until the first call to Subscribe; each subsequent
// mutation is delivered to onUpdate until the returned Subscription is
// unsubscribed.
type Sensor interface {
	Subscribe(onUpdate func(MutateFunc)) Subscription
}

// funcSubscription adapts a plain stop function into a Subscription,
// guarding against a double-close via sync.Once in each concrete sensor.
type funcSubscription struct {
	id   string
	stop func()
}

// newSubscription builds a funcSubscription with a fresh random ID.
func newSubscription(stop func()) *funcSubscription {
	return &funcSubscription{id: uuid.NewString(), stop: stop}
}

func (s *funcSubscription) Unsubscribe() { s.stop() }
func (s *funcSubscription) ID() string   { return s.id }
