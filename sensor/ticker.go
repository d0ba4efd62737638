package sensor

import (
	"sync"
	"time"

	"github.com/voocel/recon/pointer"
)

// TickerSensor samples a value on a fixed interval and writes it at a
// concrete path: useful for polling a local counter, a clock, or any
// synchronous in-process source.
type TickerSensor struct {
	Interval time.Duration
	Path     string
	Sample   func() (any, error)
}

// NewTickerSensor builds a TickerSensor writing Sample()'s result to path
// every interval.
func NewTickerSensor(path string, interval time.Duration, sample func() (any, error)) *TickerSensor {
	return &TickerSensor{Interval: interval, Path: path, Sample: sample}
}

func (s *TickerSensor) Subscribe(onUpdate func(MutateFunc)) Subscription {
	path, err := pointer.Parse(s.Path)
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		if err != nil || s.Sample == nil {
			return
		}
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				v, sampleErr := s.Sample()
				if sampleErr != nil {
					continue
				}
				onUpdate(func(state any) (any, error) {
					return pointer.Set(state, path, v)
				})
			}
		}
	}()

	return newSubscription(func() { once.Do(func() { close(stop) }) })
}

var _ Sensor = (*TickerSensor)(nil)
