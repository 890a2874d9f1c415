// Package metrics keeps lightweight local gauges in an embedded time-series
// store under the application workdir. Values are best-effort operational
// telemetry (fetch latency, heartbeat counts, sweep sizes), never part of
// the synchronized document.
package metrics

import (
	"path"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"go.uber.org/zap"
)

var (
	storage tstorage.Storage
	mu      sync.RWMutex
)

func InitMetrics(workdir string) error {
	mu.Lock()
	defer mu.Unlock()
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(path.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(7*24*time.Hour),
	)
	if err != nil {
		return err
	}
	storage = s
	return nil
}

// SetGauge records a point for the named metric at the current time.
// Failures are logged and swallowed, metrics never break the caller.
func SetGauge(name string, value int64) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return
	}
	err := storage.InsertRows([]tstorage.Row{
		{
			Metric:    name,
			DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: float64(value)},
		},
	})
	if err != nil {
		zap.S().Debugf("metrics insert failed: %s", err.Error())
	}
}

// IncrCounter is a convenience for event counts; stored as value-1 points.
func IncrCounter(name string) {
	SetGauge(name, 1)
}

// Query returns raw points for a metric between start and end (unix seconds).
func Query(name string, start, end int64) ([]*tstorage.DataPoint, error) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return nil, nil
	}
	return storage.Select(name, nil, start, end)
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
