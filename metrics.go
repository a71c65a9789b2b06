package verimatch

import (
	"sync/atomic"
	"time"

	"github.com/verimatch/verimatch/model"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordEnroll is called after each enrollment attempt.
	RecordEnroll(m model.Modality, duration time.Duration, err error)

	// RecordVerify is called after each verification attempt. accepted is
	// meaningful only when err is nil.
	RecordVerify(m model.Modality, accepted bool, duration time.Duration, err error)

	// RecordFuse is called after each fusion.
	RecordFuse(duration time.Duration, err error)

	// RecordOptimize is called after each feature optimization run.
	RecordOptimize(method string, duration time.Duration, err error)

	// RecordTrain is called after each classifier training run.
	RecordTrain(kind string, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordEnroll(model.Modality, time.Duration, error)       {}
func (NoopMetricsCollector) RecordVerify(model.Modality, bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordFuse(time.Duration, error)                         {}
func (NoopMetricsCollector) RecordOptimize(string, time.Duration, error)             {}
func (NoopMetricsCollector) RecordTrain(string, time.Duration, error)                {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	EnrollCount      atomic.Int64
	EnrollErrors     atomic.Int64
	VerifyCount      atomic.Int64
	VerifyErrors     atomic.Int64
	VerifyAccepted   atomic.Int64
	VerifyTotalNanos atomic.Int64
	FuseCount        atomic.Int64
	FuseErrors       atomic.Int64
	OptimizeCount    atomic.Int64
	OptimizeErrors   atomic.Int64
	TrainCount       atomic.Int64
	TrainErrors      atomic.Int64
	TrainTotalNanos  atomic.Int64
}

// RecordEnroll implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEnroll(_ model.Modality, _ time.Duration, err error) {
	b.EnrollCount.Add(1)
	if err != nil {
		b.EnrollErrors.Add(1)
	}
}

// RecordVerify implements MetricsCollector.
func (b *BasicMetricsCollector) RecordVerify(_ model.Modality, accepted bool, duration time.Duration, err error) {
	b.VerifyCount.Add(1)
	b.VerifyTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.VerifyErrors.Add(1)
		return
	}
	if accepted {
		b.VerifyAccepted.Add(1)
	}
}

// RecordFuse implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFuse(_ time.Duration, err error) {
	b.FuseCount.Add(1)
	if err != nil {
		b.FuseErrors.Add(1)
	}
}

// RecordOptimize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOptimize(_ string, _ time.Duration, err error) {
	b.OptimizeCount.Add(1)
	if err != nil {
		b.OptimizeErrors.Add(1)
	}
}

// RecordTrain implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrain(_ string, duration time.Duration, err error) {
	b.TrainCount.Add(1)
	b.TrainTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TrainErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		EnrollCount:     b.EnrollCount.Load(),
		EnrollErrors:    b.EnrollErrors.Load(),
		VerifyCount:     b.VerifyCount.Load(),
		VerifyErrors:    b.VerifyErrors.Load(),
		VerifyAccepted:  b.VerifyAccepted.Load(),
		VerifyAvgNanos:  b.avgVerifyNanos(),
		FuseCount:       b.FuseCount.Load(),
		FuseErrors:      b.FuseErrors.Load(),
		OptimizeCount:   b.OptimizeCount.Load(),
		OptimizeErrors:  b.OptimizeErrors.Load(),
		TrainCount:      b.TrainCount.Load(),
		TrainErrors:     b.TrainErrors.Load(),
		TrainTotalNanos: b.TrainTotalNanos.Load(),
	}
}

func (b *BasicMetricsCollector) avgVerifyNanos() int64 {
	count := b.VerifyCount.Load()
	if count == 0 {
		return 0
	}
	return b.VerifyTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	EnrollCount     int64
	EnrollErrors    int64
	VerifyCount     int64
	VerifyErrors    int64
	VerifyAccepted  int64
	VerifyAvgNanos  int64
	FuseCount       int64
	FuseErrors      int64
	OptimizeCount   int64
	OptimizeErrors  int64
	TrainCount      int64
	TrainErrors     int64
	TrainTotalNanos int64
}
