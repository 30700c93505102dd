package metrics

import (
	"sync"

	"tessnode/internal/events"
)

// SubscribeBus wires the training gauges to the event bus: run starts
// flag the model active, progress snapshots update the gauges, exits
// clear the active flag. Returns an unsubscribe function.
func SubscribeBus(bus *events.Bus) func() {
	var mu sync.Mutex
	var model string

	unsubStarted := bus.Subscribe(func(ev events.TrainingStartedEvent) {
		mu.Lock()
		model = ev.ModelName
		mu.Unlock()

		SetActive(ev.ModelName, true)
		SetIteration(ev.ModelName, 0)
		SetProcessedSamples(ev.ModelName, 0)
	})

	unsubProgress := bus.Subscribe(func(ev events.TrainingProgressEvent) {
		mu.Lock()
		current := model
		mu.Unlock()
		if current == "" {
			return
		}

		SetIteration(current, float64(ev.Progress.CurrentIteration))
		SetProcessedSamples(current, float64(ev.Progress.ProcessedSamples))
		if ev.Progress.CurrentErrorRate != nil {
			SetErrorRate(current, *ev.Progress.CurrentErrorRate)
		}
		if ev.Progress.BestErrorRate != nil {
			SetBestErrorRate(current, *ev.Progress.BestErrorRate)
		}
	})

	unsubExited := bus.Subscribe(func(events.TrainingExitedEvent) {
		mu.Lock()
		current := model
		mu.Unlock()
		if current != "" {
			SetActive(current, false)
		}
	})

	return func() {
		unsubStarted()
		unsubProgress()
		unsubExited()
	}
}
