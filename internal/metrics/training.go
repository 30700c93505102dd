// Package metrics provides Prometheus metrics for training runs.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	trainingIteration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tessnode",
		Subsystem: "training",
		Name:      "iteration",
		Help:      "Last reported training iteration",
	}, []string{"model"})

	trainingErrorRate = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tessnode",
		Subsystem: "training",
		Name:      "bcer_percent",
		Help:      "Last reported BCER training error percentage",
	}, []string{"model"})

	trainingBestErrorRate = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tessnode",
		Subsystem: "training",
		Name:      "best_bcer_percent",
		Help:      "Best checkpoint BCER percentage",
	}, []string{"model"})

	trainingProcessedSamples = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tessnode",
		Subsystem: "training",
		Name:      "processed_samples",
		Help:      "Ground-truth samples processed so far",
	}, []string{"model"})

	trainingActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tessnode",
		Subsystem: "training",
		Name:      "active",
		Help:      "1 while a training run is active, 0 otherwise",
	}, []string{"model"})

	// Local cache for the API's non-Prometheus consumers.
	trainingCache   = make(map[string]*TrainingMetrics)
	trainingCacheMu sync.RWMutex
)

// TrainingMetrics holds current metric values for a model.
type TrainingMetrics struct {
	Iteration        float64
	ErrorRate        float64
	BestErrorRate    float64
	ProcessedSamples float64
	Active           bool
}

// SetIteration records the last reported iteration for a model.
func SetIteration(model string, iteration float64) {
	trainingIteration.WithLabelValues(model).Set(iteration)
	updateCache(model, func(m *TrainingMetrics) { m.Iteration = iteration })
}

// SetErrorRate records the last reported BCER percentage for a model.
func SetErrorRate(model string, rate float64) {
	trainingErrorRate.WithLabelValues(model).Set(rate)
	updateCache(model, func(m *TrainingMetrics) { m.ErrorRate = rate })
}

// SetBestErrorRate records the best checkpoint BCER for a model.
func SetBestErrorRate(model string, rate float64) {
	trainingBestErrorRate.WithLabelValues(model).Set(rate)
	updateCache(model, func(m *TrainingMetrics) { m.BestErrorRate = rate })
}

// SetProcessedSamples records the processed sample count for a model.
func SetProcessedSamples(model string, count float64) {
	trainingProcessedSamples.WithLabelValues(model).Set(count)
	updateCache(model, func(m *TrainingMetrics) { m.ProcessedSamples = count })
}

// SetActive flags whether a run is currently active for a model.
func SetActive(model string, active bool) {
	value := 0.0
	if active {
		value = 1.0
	}
	trainingActive.WithLabelValues(model).Set(value)
	updateCache(model, func(m *TrainingMetrics) { m.Active = active })
}

// DeleteTrainingMetrics removes all metrics for a model.
func DeleteTrainingMetrics(model string) {
	trainingIteration.DeleteLabelValues(model)
	trainingErrorRate.DeleteLabelValues(model)
	trainingBestErrorRate.DeleteLabelValues(model)
	trainingProcessedSamples.DeleteLabelValues(model)
	trainingActive.DeleteLabelValues(model)

	trainingCacheMu.Lock()
	delete(trainingCache, model)
	trainingCacheMu.Unlock()
}

// GetTrainingMetrics returns current metric values for a model.
func GetTrainingMetrics(model string) *TrainingMetrics {
	trainingCacheMu.RLock()
	defer trainingCacheMu.RUnlock()
	if m, ok := trainingCache[model]; ok {
		dup := *m
		return &dup
	}
	return nil
}

func updateCache(model string, update func(*TrainingMetrics)) {
	trainingCacheMu.Lock()
	defer trainingCacheMu.Unlock()
	m, ok := trainingCache[model]
	if !ok {
		m = &TrainingMetrics{}
		trainingCache[model] = m
	}
	update(m)
}
