package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"tessnode/internal/events"
)

// registerSSERoutes registers the native Huma SSE endpoint for training
// telemetry.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of training lifecycle, progress, phase, and raw output events",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"training-started":  events.TrainingStartedEvent{},
		"training-progress": events.TrainingProgressEvent{},
		"training-exited":   events.TrainingExitedEvent{},
		"phase-changed":     events.PhaseChangedEvent{},
		"raw-line":          events.RawLineEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 100)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.TrainingStartedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.TrainingProgressEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.TrainingExitedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.PhaseChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.RawLineEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Initial snapshot so subscribers don't wait for the next tick.
		if err := send.Data(events.NewProgressEvent(s.supervisor.Status())); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					// Connection failed, clean up and exit.
					return
				}
			}
		}
	})
}
