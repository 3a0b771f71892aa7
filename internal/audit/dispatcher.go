// internal/audit/dispatcher.go
package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"stayfront/internal/metrics"
)

// Dispatcher fans events out to the configured sinks from a single
// background goroutine, so recording an event never blocks a request on
// queue or log I/O. Stop drains whatever is buffered before returning.
type Dispatcher struct {
	sinks  []Sink
	events chan SecurityEvent
	stopCh chan struct{}
	doneCh chan struct{}
	logger zerolog.Logger
}

func NewDispatcher(logger zerolog.Logger, sinks ...Sink) *Dispatcher {
	d := &Dispatcher{
		sinks:  sinks,
		events: make(chan SecurityEvent, 256),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		logger: logger,
	}
	go d.run()
	return d
}

// Record enqueues an event. If the buffer is full the event is dropped
// and counted; audit must not become a denial-of-service lever against
// the request path.
func (d *Dispatcher) Record(_ context.Context, ev SecurityEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	select {
	case d.events <- ev:
	default:
		metrics.AuditDropped.Inc()
		d.logger.Error().Str("event_type", ev.Type).Msg("audit buffer full, event dropped")
	}
}

func (d *Dispatcher) run() {
	defer close(d.doneCh)
	for {
		select {
		case ev := <-d.events:
			d.fanout(ev)
		case <-d.stopCh:
			for {
				select {
				case ev := <-d.events:
					d.fanout(ev)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) fanout(ev SecurityEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, s := range d.sinks {
		s.Record(ctx, ev)
	}
}

// Stop shuts the dispatcher down after draining buffered events.
func (d *Dispatcher) Stop() {
	close(d.stopCh)
	<-d.doneCh
}
