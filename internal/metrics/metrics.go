package metrics

import (
	"strconv"

	"wordlewatch/internal/pipeline"
	"wordlewatch/internal/types"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wordlewatch"

// Collector метрики одного прогона в отдельном реестре
type Collector struct {
	registry *prometheus.Registry

	framesRead       prometheus.Counter
	framesSkipped    prometheus.Counter
	framesNotVisible prometheus.Counter
	rowChanges       *prometheus.CounterVec
	solved           prometheus.Gauge
	solveSeconds     prometheus.Gauge
	videoSeconds     prometheus.Gauge
}

// NewCollector создает новый экземпляр Collector
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		framesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "frames_read_total",
			Help: "Frames decoded from the video.",
		}),
		framesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "frames_skipped_total",
			Help: "Frames skipped before the start delay.",
		}),
		framesNotVisible: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "frames_grid_not_visible_total",
			Help: "Frames where the full grid was not located or classified.",
		}),
		rowChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "row_changes_total",
			Help: "Row state changes by row number.",
		}, []string{"row"}),
		solved: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "solved",
			Help: "1 if a fully green row was detected.",
		}),
		solveSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "solve_timestamp_seconds",
			Help: "In-video time of the solve.",
		}),
		videoSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "video_duration_seconds",
			Help: "Video duration from container metadata.",
		}),
	}
	c.registry.MustRegister(c.framesRead, c.framesSkipped, c.framesNotVisible,
		c.rowChanges, c.solved, c.solveSeconds, c.videoSeconds)
	return c
}

// Registry реестр для экспорта
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) OnChange(ev types.ChangeEvent) error {
	c.rowChanges.WithLabelValues(strconv.Itoa(ev.Row + 1)).Inc()
	return nil
}

func (c *Collector) OnSolved(res types.SolveResult, _ *types.Frame) error {
	c.solved.Set(1)
	c.solveSeconds.Set(res.Timestamp)
	return nil
}

// ObserveResult переносит счетчики кадров из итога прогона
func (c *Collector) ObserveResult(res *pipeline.Result) {
	if res == nil {
		return
	}
	c.framesRead.Add(float64(res.FramesRead))
	c.framesSkipped.Add(float64(res.FramesSkipped))
	c.framesNotVisible.Add(float64(res.FramesNotVisible))
	c.videoSeconds.Set(res.Info.Duration())
}

// WriteTextfile пишет метрики в формате textfile collector node_exporter
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
