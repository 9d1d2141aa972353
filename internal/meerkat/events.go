package meerkat

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/r3labs/sse/v2"
	backoff "gopkg.in/cenkalti/backoff.v1"

	"github.com/tonhe/meerkat/internal/metrics"
)

// Event streams published by the Meerkat service.
const (
	UpdatesStream = "updates"
	IcingaStream  = "icinga"
)

// Payloads of the updates stream. Any other payload is the slug of a
// dashboard that changed.
const (
	UpdateAll     = "update"
	IcingaError   = "icinga-error"
	IcingaSuccess = "icinga-success"
	Heartbeat     = "heartbeat"
)

// EventKind classifies a received event.
type EventKind int

const (
	KindReloadAll EventKind = iota
	KindReloadDashboard
	KindIcingaError
	KindIcingaSuccess
	KindHeartbeat
	// KindObject is an Icinga check result or state change; Data names the
	// object, e.g. "web01!http".
	KindObject
)

// Event is one message received from a stream.
type Event struct {
	Stream string
	// Type is the SSE event name: "CheckResult" or "StateChange" on the
	// icinga stream, empty on the updates stream.
	Type string
	Data string
}

// Kind classifies the event.
func (e Event) Kind() EventKind {
	if e.Stream == IcingaStream {
		return KindObject
	}
	switch e.Data {
	case UpdateAll:
		return KindReloadAll
	case IcingaError:
		return KindIcingaError
	case IcingaSuccess:
		return KindIcingaSuccess
	case Heartbeat:
		return KindHeartbeat
	}
	return KindReloadDashboard
}

// Events subscribes to stream and calls fn for each message until ctx is
// cancelled or the connection fails for good. The subscription reconnects
// on its own after transient failures.
func (c *Client) Events(ctx context.Context, stream string, fn func(Event)) error {
	client := sse.NewClient(c.endpoint("events"))
	// streams stay open, so no overall request timeout
	client.Connection = &http.Client{Transport: c.http.Transport}
	// stop reconnecting once ctx is done
	client.ReconnectStrategy = backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	client.OnDisconnect(func(*sse.Client) {
		c.log.Warn().Str("stream", stream).Msg("event stream disconnected")
	})

	err := client.SubscribeWithContext(ctx, stream, func(msg *sse.Event) {
		// heartbeats and keep-alives arrive as empty messages too
		if len(msg.Data) == 0 {
			return
		}
		metrics.Events.WithLabelValues(stream).Inc()
		fn(Event{Stream: stream, Type: string(msg.Event), Data: string(msg.Data)})
	})
	if err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return fmt.Errorf("subscribe %s: %w", stream, err)
	}
	return nil
}
