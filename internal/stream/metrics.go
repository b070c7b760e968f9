package stream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики конвейера стриминга. Регистрируются один раз на процесс,
// чтобы параллельные тесты не падали на повторной регистрации.
var (
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "voxel",
		Subsystem: "stream",
		Name:      "queue_depth",
		Help:      "Текущая глубина очереди заявок на загрузку",
	})

	loadedRegions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "voxel",
		Subsystem: "stream",
		Name:      "loaded_regions",
		Help:      "Число загруженных регионов",
	})

	generationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "voxel",
		Subsystem: "stream",
		Name:      "generation_duration_seconds",
		Help:      "Длительность генерации региона",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	meshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "voxel",
		Subsystem: "stream",
		Name:      "mesh_duration_seconds",
		Help:      "Длительность построения меша региона",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	discardedResults = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "voxel",
		Subsystem: "stream",
		Name:      "discarded_results_total",
		Help:      "Результаты, отброшенные из-за отмены заявки",
	})

	workerPanics = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "voxel",
		Subsystem: "stream",
		Name:      "worker_panics_total",
		Help:      "Паники фоновых воркеров, погашенные пулом",
	})
)
